// Package preinteraction computes, for each real particle after the tree is
// rebuilt: the converged smoothing length/density via the Newton solver,
// pressure and sound speed from the ideal-gas EOS, the Balsara switch, and
// (GSPH, 2nd order) gradients of density/pressure/velocity for MUSCL
// reconstruction.
package preinteraction

import (
	"math"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/simlog"
	"github.com/pthm-cable/sph-core/smoothing"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/vecmath"
)

// Gradients holds the optional GSPH 2nd-order reconstruction gradients for
// one particle: D-dimensional gradients of density and each velocity
// component, plus the pressure gradient.
type Gradients struct {
	DRho vecmath.Vec
	DP   vecmath.Vec
	DVel [3]vecmath.Vec // gradient of each velocity component, index by component
}

// Stage runs the pre-interaction computation over every real particle in
// parallel (§5: per-particle writes only to its own record).
type Stage struct {
	Kernel         kernel.Kernel
	Tree           *spatial.Tree
	Periodic       *boundary.Periodic
	Variant        params.Variant
	Gamma          float64
	NeighborTarget float64
	Policy         params.SmoothingLengthPolicy

	UseBalsaraSwitch bool
	Epsilon          float64 // Balsara epsilon term, c/h scale factor

	SecondOrder bool // GSPH only: compute gradients

	MaxNeighbors int
}

// Output is the per-particle result the caller writes back into the real
// particle record.
type Output struct {
	H, Density, Pressure, Sound, GradH, Balsara float64
	NeighborCount                               int
	Gradients                                   Gradients
}

// Run computes Output for every real particle index [0, nReal) in s (the
// search array), reading neighbors from the tree built over s. Real
// particles are indices [0,nReal); callers write results back onto their
// own real array afterward (the search array is read-only here).
func (st *Stage) Run(s []particle.Particle, nReal int) []Output {
	out := make([]Output, nReal)
	parallelFor(nReal, func(i int) {
		out[i] = st.runOne(s, i)
	})
	return out
}

func (st *Stage) runOne(s []particle.Particle, i int) Output {
	p := &s[i]
	buf := make([]int, st.maxNeighbors())
	idxs, ok := st.Tree.NeighborSearch(i, st.Kernel.SupportFactor(), true, buf)
	if !ok {
		simlog.Warnf("preinteraction.neighbor_overflow", "neighbor buffer overflowed for particle %d", p.ID)
	}

	var res smoothing.Result
	var pressure float64

	if st.Variant == params.DISPH {
		dn := make([]disphNeighbor, 0, len(idxs))
		for _, j := range idxs {
			r := st.separation(p.Pos, s[j].Pos).Norm()
			dn = append(dn, disphNeighbor{Mass: s[j].Mass, Ene: s[j].Ene, R: r})
		}
		h, y, converged := disphSolve(p.Pos.Dim, st.Kernel, st.Gamma, p.Sml, st.NeighborTarget, dn)
		pressure = (st.Gamma - 1) * y
		density := pressure / ((st.Gamma - 1) * p.Ene)
		res = smoothing.Result{H: h, Density: density, GradH: 1, Converged: converged}
	} else {
		neighbors := make([]smoothing.Neighbor, 0, len(idxs))
		for _, j := range idxs {
			r := st.separation(p.Pos, s[j].Pos).Norm()
			neighbors = append(neighbors, smoothing.Neighbor{Mass: s[j].Mass, R: r})
		}
		res = smoothing.Solve(p.Pos.Dim, st.Kernel, p.Mass, p.Sml, st.NeighborTarget, neighbors, st.Policy)
		pressure = (st.Gamma - 1) * res.Density * p.Ene
	}

	sound := math.Sqrt(st.Gamma * pressure / res.Density)

	balsara := 1.0
	if st.UseBalsaraSwitch {
		balsara = st.balsaraSwitch(s, i, idxs, res.H, sound)
	}

	var grads Gradients
	if st.SecondOrder {
		grads = st.computeGradients(s, i, idxs, res.H)
	}

	return Output{
		H:             res.H,
		Density:       res.Density,
		Pressure:      pressure,
		Sound:         sound,
		GradH:         res.GradH,
		Balsara:       balsara,
		NeighborCount: len(idxs),
		Gradients:     grads,
	}
}

func (st *Stage) maxNeighbors() int {
	if st.MaxNeighbors > 0 {
		return st.MaxNeighbors
	}
	return 256
}

func (st *Stage) separation(a, b vecmath.Vec) vecmath.Vec {
	if st.Periodic != nil {
		return st.Periodic.MinimumImage(a, b)
	}
	return a.Sub(b)
}

// balsaraSwitch computes f_i = |div v| / (|div v| + |curl v| + eps*c/h)
// (§4.7 step 5), using SPH estimators of divergence and (2D scalar) curl
// over the same neighbor list used for density.
func (st *Stage) balsaraSwitch(s []particle.Particle, i int, neighborIdx []int, h, c float64) float64 {
	p := &s[i]
	divV := 0.0
	curlZ := 0.0
	for _, j := range neighborIdx {
		q := &s[j]
		rij := st.separation(p.Pos, q.Pos)
		r := rij.Norm()
		if r <= 0 {
			continue
		}
		dw := st.Kernel.DW(r, h, p.Pos.Dim)
		gradW := rij.Scale(dw / r)
		vij := p.Vel.Sub(q.Vel)
		volJ := q.Mass / q.Dens
		divV -= volJ * vij.Dot(gradW)
		if p.Pos.Dim == 2 {
			curlZ -= volJ * vij.Cross2(gradW)
		}
	}
	absDiv := math.Abs(divV)
	absCurl := math.Abs(curlZ)
	eps := st.Epsilon
	if eps <= 0 {
		eps = 0.2
	}
	denom := absDiv + absCurl + eps*c/h
	if denom <= 0 {
		return 1
	}
	return absDiv / denom
}

// computeGradients computes GSPH 2nd-order MUSCL gradients of density,
// pressure, and each velocity component via the standard SPH gradient
// estimator sum_j (q_j - q_i) * V_j * gradW_ij.
func (st *Stage) computeGradients(s []particle.Particle, i int, neighborIdx []int, h float64) Gradients {
	p := &s[i]
	var g Gradients
	g.DRho = vecmath.Zero(p.Pos.Dim)
	g.DP = vecmath.Zero(p.Pos.Dim)
	for c := 0; c < 3; c++ {
		g.DVel[c] = vecmath.Zero(p.Pos.Dim)
	}
	for _, j := range neighborIdx {
		q := &s[j]
		rij := st.separation(p.Pos, q.Pos)
		r := rij.Norm()
		if r <= 0 {
			continue
		}
		dw := st.Kernel.DW(r, h, p.Pos.Dim)
		gradW := rij.Scale(dw / r)
		volJ := q.Mass / q.Dens

		g.DRho = g.DRho.Add(gradW.Scale(volJ * (q.Dens - p.Dens)))
		g.DP = g.DP.Add(gradW.Scale(volJ * (q.Pres - p.Pres)))
		for c := 0; c < p.Pos.Dim; c++ {
			g.DVel[c] = g.DVel[c].Add(gradW.Scale(volJ * (q.Vel.C[c] - p.Vel.C[c])))
		}
	}
	return g
}
