// Package particle defines the per-particle record shared by every stage of
// the engine and the real/ghost classification used throughout the search
// array (see simcache).
package particle

import "github.com/pthm-cable/sph-core/vecmath"

// Kind classifies a slot in the search array.
type Kind uint8

const (
	// Real is an actual simulated fluid element.
	Real Kind = iota
	// Ghost is a boundary-image copy generated by the ghost package; it
	// never owns independent state and is rebuilt every step.
	Ghost
)

func (k Kind) String() string {
	if k == Ghost {
		return "ghost"
	}
	return "real"
}

// Particle is one SPH element: kinematic, thermodynamic and SPH-specific
// state plus the bookkeeping fields the tree and cache need.
type Particle struct {
	// Kinematics.
	Pos  vecmath.Vec
	Vel  vecmath.Vec
	VelP vecmath.Vec // predictor-step velocity
	Acc  vecmath.Vec

	// Thermodynamics.
	Mass  float64
	Dens  float64
	Pres  float64
	Ene   float64 // specific internal energy
	EneP  float64 // predictor-step energy
	DEne  float64 // energy time derivative
	Sound float64 // sound speed

	// SPH state.
	Sml     float64 // smoothing length
	GradH   float64 // grad-h correction factor
	Balsara float64
	Alpha   float64 // artificial viscosity coefficient

	// Gravity.
	Phi float64 // potential

	// Bookkeeping.
	ID       int
	Neighbor int // neighbor count found on the last tree pass
	Kind     Kind
	Next     int // intrusive next-in-leaf slot, -1 terminates; spatial.Tree keeps leaf membership in its own permutation array and does not read it
	GhostOf  int // for Kind==Ghost, the real particle id this mirrors; -1 otherwise
}

// NewReal builds a real particle with sane zero defaults and Next/GhostOf
// unset.
func NewReal(id int, pos, vel vecmath.Vec, mass float64) Particle {
	return Particle{
		Pos:     pos,
		Vel:     vel,
		Mass:    mass,
		Alpha:   1.0,
		Balsara: 1.0,
		ID:      id,
		Kind:    Real,
		Next:    -1,
		GhostOf: -1,
	}
}
