// Package timestep computes the CFL-limited adaptive time step: the
// minimum, over all real particles, of the sound-speed, force, and
// (optional) signal-velocity CFL conditions.
package timestep

import (
	"math"

	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
)

// Compute returns dt = min_i min(dt_sound_i, dt_force_i, dt_visc_i), clamped
// so it never exceeds the time remaining until tEnd. vSigMax, when
// non-nil, supplies the optional signal-velocity CFL condition per
// particle (index-aligned with real); pass nil to skip it.
func Compute(real []particle.Particle, cfl params.CFLParams, tNow, tEnd float64, vSigMax []float64) float64 {
	dt := math.Inf(1)
	for i := range real {
		p := &real[i]
		speed := p.Vel.Norm()

		dtSound := cfl.Sound * p.Sml / (p.Sound + speed)
		if dtSound < dt {
			dt = dtSound
		}

		accNorm := p.Acc.Norm()
		if accNorm > 0 {
			dtForce := cfl.Force * math.Sqrt(p.Sml/accNorm)
			if dtForce < dt {
				dt = dtForce
			}
		}

		if vSigMax != nil && vSigMax[i] > 0 {
			dtVisc := cfl.Sound * p.Sml / vSigMax[i]
			if dtVisc < dt {
				dt = dtVisc
			}
		}
	}

	if remaining := tEnd - tNow; remaining > 0 && remaining < dt {
		dt = remaining
	}
	return dt
}
