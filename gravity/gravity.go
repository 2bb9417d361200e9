// Package gravity runs the self-gravity stage: a tagged NoGravity |
// NewtonianGravity variant that, when enabled, walks the Barnes-Hut tree
// for each real particle to accumulate acceleration and potential.
package gravity

import (
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/vecmath"
)

// Output is the per-particle gravitational contribution the caller adds
// onto its running acceleration (hydro-then-gravity: gravity is always
// additive, never a replacement).
type Output struct {
	Acc vecmath.Vec
	Phi float64
}

// Stage runs the gravity tree-walk over every real particle in parallel.
// A NoGravity configuration (Enabled == false) makes Run a no-op returning
// zero contributions, so callers can unconditionally add its output onto
// their accumulated acceleration.
type Stage struct {
	Config params.Gravity
	Tree   *spatial.Tree
}

// Run computes Output for every real particle index [0, nReal) in s.
func (st *Stage) Run(s []particle.Particle, nReal int) []Output {
	out := make([]Output, nReal)
	if !st.Config.Enabled {
		for i := range out {
			out[i] = Output{Acc: vecmath.Zero(s[i].Pos.Dim)}
		}
		return out
	}
	parallelFor(nReal, func(i int) {
		acc, phi := st.Tree.TreeForce(i, st.Config.Constant, st.Config.Theta)
		out[i] = Output{Acc: acc, Phi: phi}
	})
	return out
}
