// Package integrator drives the leapfrog predictor-corrector loop: compute
// timestep, predict, regenerate ghosts, rebuild the tree, run
// pre-interaction, sync the cache, run fluid force and gravity, then
// correct and advance time. The stage order and the "sync cache after
// pre-interaction, before force" rule are load-bearing: fluid force reads
// neighbor densities that pre-interaction just wrote.
package integrator

import (
	"math"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/force"
	"github.com/pthm-cable/sph-core/ghost"
	"github.com/pthm-cable/sph-core/gravity"
	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/preinteraction"
	"github.com/pthm-cable/sph-core/simcache"
	"github.com/pthm-cable/sph-core/simlog"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/timestep"
)

// Driver owns every stage and the mutable run state (real particles, time,
// dt) needed to advance one step at a time.
type Driver struct {
	Params params.Parameters
	Kernel kernel.Kernel

	Cache       *simcache.Cache
	Tree        *spatial.Tree
	Coordinator *simcache.Coordinator
	Ghosts      *ghost.Manager
	Periodic    *boundary.Periodic

	PreInteraction preinteraction.Stage
	Force          force.Stage
	Gravity        gravity.Stage

	Real []particle.Particle
	Time float64
	Dt   float64
}

// hasGhostBoundary reports whether a boundary configuration was applied to
// the ghost manager (Initialize sets Dim > 0; the zero value never does).
func (d *Driver) hasGhostBoundary() bool {
	return d.Ghosts != nil && d.Ghosts.Config().Dim > 0
}

func soundSpeedConst(gamma float64) float64 {
	return gamma * (gamma - 1.0)
}

// InitialSound sets p.Sound = sqrt(gamma*(gamma-1)*ene) for every particle,
// the bootstrap the original performs right after plugin particles load and
// before the first tree build.
func InitialSound(real []particle.Particle, gamma float64) {
	c := soundSpeedConst(gamma)
	for i := range real {
		real[i].Sound = math.Sqrt(c * real[i].Ene)
	}
}

// Initialize runs the one-time bootstrap: build the tree over real
// particles only, compute initial pre-interaction/force/gravity, generate
// ghosts from the resulting smoothing lengths, rebuild the tree with
// ghosts included, and compute the first timestep.
func (d *Driver) Initialize() error {
	d.Cache.Init(d.Real)
	if err := d.Coordinator.RebuildForNeighborSearch(); err != nil {
		return err
	}

	d.runPreInteractionAndForce()

	if d.hasGhostBoundary() {
		maxSml := 0.0
		for i := range d.Real {
			if d.Real[i].Sml > maxSml {
				maxSml = d.Real[i].Sml
			}
		}
		if err := d.Ghosts.SetKernelSupportRadius(d.Kernel.SupportFactor() * maxSml); err != nil {
			return err
		}
		if err := d.Ghosts.Generate(d.Real); err != nil {
			return err
		}
		if err := d.extendCacheWithGhosts(); err != nil {
			return err
		}
		if err := d.Coordinator.RebuildForNeighborSearch(); err != nil {
			return err
		}
	}

	d.Dt = d.computeTimestep()
	return nil
}

// Step advances the simulation by one predictor-corrector cycle and
// returns the dt it used.
func (d *Driver) Step() (float64, error) {
	d.Dt = d.computeTimestep()

	d.predict()

	if d.hasGhostBoundary() {
		if err := d.Ghosts.Regenerate(d.Real); err != nil {
			return 0, err
		}
		if err := d.extendCacheWithGhosts(); err != nil {
			return 0, err
		}
	}

	if err := d.Coordinator.RebuildForNeighborSearch(); err != nil {
		return 0, err
	}

	d.runPreInteractionAndForce()

	d.correct()

	d.Time += d.Dt
	return d.Dt, nil
}

func (d *Driver) extendCacheWithGhosts() error {
	if err := d.Cache.SyncReal(d.Real); err != nil {
		return err
	}
	return d.Cache.IncludeGhosts(d.Ghosts.GhostParticles())
}

// runPreInteractionAndForce runs pre-interaction, syncs the cache with the
// freshly-computed thermodynamics (and refreshed ghost copies), then runs
// fluid force and gravity. This order is the one place the original's
// "sync cache after pre_interaction" comment is load-bearing: force reads
// neighbor densities pre-interaction just wrote.
func (d *Driver) runPreInteractionAndForce() {
	s := d.Cache.SearchParticles()
	nReal := d.Cache.RealCount()

	pre := d.PreInteraction.Run(s, nReal)
	for i := 0; i < nReal; i++ {
		d.Real[i].Sml = pre[i].H
		d.Real[i].Dens = pre[i].Density
		d.Real[i].Pres = pre[i].Pressure
		d.Real[i].Sound = pre[i].Sound
		d.Real[i].GradH = pre[i].GradH
		d.Real[i].Balsara = pre[i].Balsara
		d.Real[i].Neighbor = pre[i].NeighborCount
	}

	if d.Ghosts != nil && d.Ghosts.HasGhosts() {
		d.Ghosts.RefreshProperties(d.Real)
		_ = d.extendCacheWithGhosts()
	} else {
		_ = d.Cache.SyncReal(d.Real)
	}

	s = d.Cache.SearchParticles()
	fout := d.Force.Run(s, nReal, pre)
	gout := d.Gravity.Run(s, nReal)
	for i := 0; i < nReal; i++ {
		d.Real[i].Acc = fout[i].Acc.Add(gout[i].Acc)
		d.Real[i].DEne = fout[i].DEne
		d.Real[i].Phi = gout[i].Phi
	}
}

func (d *Driver) computeTimestep() float64 {
	return timestep.Compute(d.Real, d.Params.CFL, d.Time, d.Params.Time.End, nil)
}

// predict applies the leapfrog half/full step, advancing position with the
// half-step velocity, then wraps real particle positions back into a
// periodic domain. Ghost copies are not moved here.
func (d *Driver) predict() {
	c := soundSpeedConst(d.Params.Physics.Gamma)
	dt := d.Dt
	for i := range d.Real {
		p := &d.Real[i]
		p.VelP = p.Vel.Add(p.Acc.Scale(0.5 * dt))
		p.EneP = p.Ene + p.DEne*0.5*dt

		p.Pos = p.Pos.Add(p.VelP.Scale(dt))
		p.Vel = p.Vel.Add(p.Acc.Scale(dt))
		p.Ene += p.DEne * dt
		p.Sound = math.Sqrt(c * p.Ene)

		if d.Periodic != nil {
			p.Pos = d.Periodic.Wrap(p.Pos)
		}
	}
	if d.Ghosts != nil {
		d.Ghosts.ApplyPeriodicWrapping(d.Real)
	}
}

// correct recombines the half-step predictor with the full-step
// acceleration/energy-derivative to complete the leapfrog update.
func (d *Driver) correct() {
	c := soundSpeedConst(d.Params.Physics.Gamma)
	dt := d.Dt
	for i := range d.Real {
		p := &d.Real[i]
		p.Vel = p.VelP.Add(p.Acc.Scale(0.5 * dt))
		p.Ene = p.EneP + p.DEne*0.5*dt
		p.Sound = math.Sqrt(c * p.Ene)
	}
}

// nonconvergenceKey is the simlog.Warnf key the Newton-Raphson solver uses;
// NonconvergenceCount exposes its count so callers (e.g. a CLI's progress
// reporter) can surface it without importing the smoothing package directly.
const nonconvergenceKey = "smoothing.nonconvergence"

// NonconvergenceCount returns how many times the smoothing-length solver
// has failed to converge across the run so far.
func NonconvergenceCount() int {
	return simlog.WarnCount(nonconvergenceKey)
}
