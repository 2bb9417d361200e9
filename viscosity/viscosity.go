// Package viscosity implements artificial viscosity schemes for the fluid
// force stage: a dissipative pairwise term pi_ij added to the pressure
// gradient for approaching particles, needed to capture shocks and prevent
// particle interpenetration in the absence of a Riemann solver.
package viscosity

import "github.com/pthm-cable/sph-core/vecmath"

// State is the pairwise information an artificial viscosity needs.
type State struct {
	VelI, VelJ     vecmath.Vec
	SoundI, SoundJ float64
	DensI, DensJ   float64
	AlphaI, AlphaJ float64
	BalsaraI       float64
	BalsaraJ       float64
	RIJ            vecmath.Vec // r_i - r_j
	R              float64     // |r_ij|
}

// ArtificialViscosity computes the dissipative pairwise term pi_ij.
type ArtificialViscosity interface {
	Compute(s State) float64
	Name() string
}

// Monaghan is the Monaghan (1997) artificial viscosity with an optional
// Balsara (Morris & Monaghan 1997) switch to suppress it in pure shear.
type Monaghan struct {
	UseBalsaraSwitch bool
}

func (m Monaghan) Name() string {
	if m.UseBalsaraSwitch {
		return "Monaghan (1997) with Balsara switch"
	}
	return "Monaghan (1997) standard"
}

// Compute returns pi_ij = -f_ij * alpha_ij * v_sig * w_ij / (2 rho_ij),
// where w_ij = v_ij . r_ij / |r_ij| is the relative velocity along the line
// of centers (negative for approaching pairs, so pi_ij > 0) and v_sig the
// Monaghan (1997) signal velocity c_i + c_j - 3 w_ij. Zero for receding
// pairs (v_ij . r_ij >= 0).
func (m Monaghan) Compute(s State) float64 {
	vij := s.VelI.Sub(s.VelJ)
	vr := vij.Dot(s.RIJ)
	if vr >= 0 {
		return 0
	}

	alpha := 0.5 * (s.AlphaI + s.AlphaJ)

	balsara := 1.0
	if m.UseBalsaraSwitch {
		balsara = 0.5 * (s.BalsaraI + s.BalsaraJ)
	}

	wij := vr / s.R
	vsig := s.SoundI + s.SoundJ - 3*wij
	rhoIJInv := 2.0 / (s.DensI + s.DensJ)

	return -0.5 * balsara * alpha * vsig * wij * rhoIJInv
}
