package preinteraction

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/vecmath"
)

func uniformLine1D(n int, spacing float64) []particle.Particle {
	out := make([]particle.Particle, n)
	for i := 0; i < n; i++ {
		out[i] = particle.NewReal(i, vecmath.New(1, float64(i)*spacing, 0, 0), vecmath.Zero(1), spacing)
		out[i].Sml = 2 * spacing
		out[i].Dens = 1.0
		out[i].Pres = 1.0
		out[i].Ene = 1.0
	}
	return out
}

func buildTree(particles []particle.Particle) *spatial.Tree {
	tr := spatial.New(1, 20, 8)
	if err := tr.Make(particles); err != nil {
		panic(err)
	}
	return tr
}

func TestRunComputesPositiveDensityAndSoundSpeed(t *testing.T) {
	reals := uniformLine1D(21, 0.05)
	tr := buildTree(reals)
	st := &Stage{
		Kernel:         kernel.CubicSpline{},
		Tree:           tr,
		Gamma:          1.4,
		NeighborTarget: 4,
		Policy:         params.SmoothingLengthPolicy{Kind: params.NoMin},
	}
	out := st.Run(reals, len(reals))
	mid := out[10]
	if mid.Density <= 0 {
		t.Errorf("expected positive density, got %v", mid.Density)
	}
	if mid.Sound <= 0 {
		t.Errorf("expected positive sound speed, got %v", mid.Sound)
	}
	if mid.Pressure <= 0 {
		t.Errorf("expected positive pressure, got %v", mid.Pressure)
	}
	if mid.Balsara != 1.0 {
		t.Errorf("Balsara switch disabled should default to 1, got %v", mid.Balsara)
	}
}

func TestBalsaraSwitchIsOneForPureDivergence(t *testing.T) {
	// A field with divergence but no curl (radial expansion in 1D) should
	// drive the switch toward 1 (shock-like, pure compression). The velocity
	// gradient (dv/dx = 20) is steep enough that |div v| dominates eps*c/h.
	reals := uniformLine1D(21, 0.05)
	for i := range reals {
		reals[i].Vel = vecmath.New(1, float64(i)*1.0, 0, 0)
	}
	tr := buildTree(reals)
	st := &Stage{
		Kernel:           kernel.CubicSpline{},
		Tree:             tr,
		Gamma:            1.4,
		NeighborTarget:   4,
		Policy:           params.SmoothingLengthPolicy{Kind: params.NoMin},
		UseBalsaraSwitch: true,
		Epsilon:          0.2,
	}
	out := st.Run(reals, len(reals))
	mid := out[10]
	if mid.Balsara < 0.9 {
		t.Errorf("expected Balsara switch near 1 for a pure-divergence field (no curl, no tangential motion), got %v", mid.Balsara)
	}
}

func TestSecondOrderGradientsComputedWhenEnabled(t *testing.T) {
	reals := uniformLine1D(21, 0.05)
	for i := range reals {
		reals[i].Dens = 1.0 + float64(i)*0.01
		reals[i].Pres = 1.0 + float64(i)*0.02
	}
	tr := buildTree(reals)
	st := &Stage{
		Kernel:         kernel.CubicSpline{},
		Tree:           tr,
		Gamma:          1.4,
		NeighborTarget: 4,
		Policy:         params.SmoothingLengthPolicy{Kind: params.NoMin},
		SecondOrder:    true,
	}
	out := st.Run(reals, len(reals))
	mid := out[10]
	if math.Abs(mid.Gradients.DRho.C[0]) < 1e-9 {
		t.Errorf("expected a nonzero density gradient along an increasing-density line, got %v", mid.Gradients.DRho.C[0])
	}
}

func TestSecondOrderGradientsZeroWhenDisabled(t *testing.T) {
	reals := uniformLine1D(11, 0.05)
	tr := buildTree(reals)
	st := &Stage{
		Kernel:         kernel.CubicSpline{},
		Tree:           tr,
		Gamma:          1.4,
		NeighborTarget: 4,
		Policy:         params.SmoothingLengthPolicy{Kind: params.NoMin},
	}
	out := st.Run(reals, len(reals))
	if out[5].Gradients.DRho.Dim != 0 {
		t.Errorf("disabled second-order stage should leave Gradients zero-valued, got dim=%d", out[5].Gradients.DRho.Dim)
	}
}

func TestDISPHVariantComputesPositivePressure(t *testing.T) {
	reals := uniformLine1D(21, 0.05)
	tr := buildTree(reals)
	st := &Stage{
		Kernel:         kernel.CubicSpline{},
		Tree:           tr,
		Variant:        params.DISPH,
		Gamma:          1.4,
		NeighborTarget: 4,
		Policy:         params.SmoothingLengthPolicy{Kind: params.NoMin},
	}
	out := st.Run(reals, len(reals))
	mid := out[10]
	if mid.Pressure <= 0 {
		t.Errorf("expected positive DISPH pressure, got %v", mid.Pressure)
	}
	if mid.Density <= 0 {
		t.Errorf("expected positive density backed out of the DISPH EOS inversion, got %v", mid.Density)
	}
}

func TestNeighborOverflowLogsWarningNotError(t *testing.T) {
	reals := uniformLine1D(50, 0.01)
	tr := buildTree(reals)
	st := &Stage{
		Kernel:         kernel.CubicSpline{},
		Tree:           tr,
		Gamma:          1.4,
		NeighborTarget: 4,
		Policy:         params.SmoothingLengthPolicy{Kind: params.NoMin},
		MaxNeighbors:   1, // force overflow
	}
	out := st.Run(reals, len(reals))
	if len(out) != len(reals) {
		t.Fatalf("overflow must not abort the stage: expected %d outputs, got %d", len(reals), len(out))
	}
}
