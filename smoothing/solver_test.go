package smoothing

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/simlog"
)

func uniformNeighbors1D(n int, spacing, mass float64) []Neighbor {
	out := make([]Neighbor, 0, 2*n)
	for i := 1; i <= n; i++ {
		out = append(out, Neighbor{Mass: mass, R: float64(i) * spacing})
		out = append(out, Neighbor{Mass: mass, R: float64(i) * spacing})
	}
	return out
}

func TestSolveConvergesUniformField(t *testing.T) {
	neighbors := uniformNeighbors1D(20, 0.01, 1.0)
	res := Solve(1, kernel.CubicSpline{}, 1.0, 0.05, 4, neighbors, params.SmoothingLengthPolicy{Kind: params.NoMin})
	if !res.Converged {
		t.Errorf("expected convergence on a smooth uniform field, got %d iterations", res.Iterations)
	}
	if res.H <= 0 {
		t.Errorf("expected positive h, got %v", res.H)
	}
	if res.Density <= 0 {
		t.Errorf("expected positive density, got %v", res.Density)
	}
}

func TestSolveConstantMinEnforced(t *testing.T) {
	neighbors := []Neighbor{{Mass: 1e-9, R: 10.0}} // starves the density estimate
	policy := params.SmoothingLengthPolicy{Kind: params.ConstantMin, HMinConstant: 0.5}
	res := Solve(1, kernel.CubicSpline{}, 1.0, 0.01, 4, neighbors, policy)
	if res.H < 0.5-1e-12 {
		t.Errorf("expected h clamped to at least h_min_constant=0.5, got %v", res.H)
	}
}

func TestSolvePhysicsBasedMinEnforced(t *testing.T) {
	neighbors := []Neighbor{{Mass: 1e-9, R: 10.0}}
	policy := params.SmoothingLengthPolicy{Kind: params.PhysicsBased, RhoExpectedMax: 250, Alpha: 2.0}
	res := Solve(3, kernel.CubicSpline{}, 1.0, 0.01, 4, neighbors, policy)
	dMin := math.Pow(1.0/250.0, 1.0/3.0)
	floor := 2.0 * dMin
	if res.H < floor-1e-9 {
		t.Errorf("expected h >= physics-based floor %v, got %v", floor, res.H)
	}
}

func TestSolveNonConvergenceLogsWarning(t *testing.T) {
	simlog.ResetCounts()
	// A pathological neighbor set (all at r=0, zero mass gradient contribution)
	// drives the Newton step toward df==0 quickly, forcing early exit without
	// convergence.
	neighbors := []Neighbor{{Mass: 0, R: 0}}
	Solve(2, kernel.CubicSpline{}, 1.0, 0.1, 4, neighbors, params.SmoothingLengthPolicy{})
	if simlog.WarnCount("smoothing.nonconvergence") == 0 {
		t.Errorf("expected a logged non-convergence warning for a degenerate neighbor set")
	}
}
