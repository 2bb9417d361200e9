// Package force implements the fluid-force stage: the per-pair momentum and
// energy time-derivative accumulation shared by SSPH, DISPH, and GSPH. SSPH
// and DISPH use the same P/rho^2 pair term with artificial viscosity (DISPH
// differs only in the pressure and density its pre-interaction stage forms);
// GSPH uses a Riemann-solved interface state.
package force

import (
	"math"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/preinteraction"
	"github.com/pthm-cable/sph-core/riemann"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/vecmath"
	"github.com/pthm-cable/sph-core/viscosity"
)

// Output is the per-particle accumulated time-derivative the caller writes
// back onto the real particle record.
type Output struct {
	Acc  vecmath.Vec
	DEne float64
}

// Stage runs the fluid-force pair sum over every real particle in parallel.
type Stage struct {
	Kernel   kernel.Kernel
	Tree     *spatial.Tree
	Periodic *boundary.Periodic
	Variant  params.Variant

	Viscosity viscosity.ArtificialViscosity // nil for GSPH

	Riemann     riemann.Solver // GSPH only
	SecondOrder bool           // GSPH 2nd-order MUSCL reconstruction
	Limiter     riemann.SlopeLimiter

	UseArtificialConductivity bool
	ConductivityAlpha         float64

	MaxNeighbors int
}

func (st *Stage) maxNeighbors() int {
	if st.MaxNeighbors > 0 {
		return st.MaxNeighbors
	}
	return 256
}

// Run computes Output for every real particle index [0, nReal) in s, given
// the per-particle pre-interaction outputs pre (indexed the same way as the
// real particles, i.e. pre[i] corresponds to s[i]).
func (st *Stage) Run(s []particle.Particle, nReal int, pre []preinteraction.Output) []Output {
	out := make([]Output, nReal)
	parallelFor(nReal, func(i int) {
		out[i] = st.runOne(s, i, pre)
	})
	return out
}

func (st *Stage) runOne(s []particle.Particle, i int, pre []preinteraction.Output) Output {
	p := &s[i]
	buf := make([]int, st.maxNeighbors())
	idxs, _ := st.Tree.NeighborSearch(i, st.Kernel.SupportFactor(), true, buf)

	acc := vecmath.Zero(p.Pos.Dim)
	dene := 0.0

	for _, j := range idxs {
		if j == i {
			continue
		}
		q := &s[j]
		rij := st.separation(p.Pos, q.Pos)
		r := rij.Norm()
		if r <= 0 {
			continue
		}
		n := rij.Scale(1 / r)

		gradW := st.symmetrizedGradW(r, p.Sml, q.Sml, n)

		switch st.Variant {
		case params.GSPH:
			acc, dene = st.accumulateGSPH(p, q, pre, i, j, r, n, gradW, acc, dene)
		default:
			acc, dene = st.accumulateSSPHLike(p, q, rij, r, n, gradW, acc, dene)
		}

		if st.UseArtificialConductivity {
			dene += st.artificialConductivity(p, q, n, gradW)
		}
	}

	return Output{Acc: acc, DEne: dene}
}

func (st *Stage) separation(a, b vecmath.Vec) vecmath.Vec {
	if st.Periodic != nil {
		return st.Periodic.MinimumImage(a, b)
	}
	return a.Sub(b)
}

// symmetrizedGradW returns the Gather-Scatter symmetrized kernel gradient
// ½(∇W(h_i) + ∇W(h_j)) along the pair normal n.
func (st *Stage) symmetrizedGradW(r, hi, hj float64, n vecmath.Vec) vecmath.Vec {
	dwI := st.Kernel.DW(r, hi, n.Dim)
	dwJ := st.Kernel.DW(r, hj, n.Dim)
	return n.Scale(0.5 * (dwI + dwJ))
}

// accumulateSSPHLike implements both SSPH and DISPH with the same pair term,
// P_i/rho_i^2 + P_j/rho_j^2 plus the Monaghan viscosity pi_ij. No
// pressure-volume weighting is applied here: DISPH differs from SSPH only in
// the pressure and density the pre-interaction stage supplies.
func (st *Stage) accumulateSSPHLike(p, q *particle.Particle, rij vecmath.Vec, r float64, n, gradW vecmath.Vec, acc vecmath.Vec, dene float64) (vecmath.Vec, float64) {
	termI := p.Pres / (p.Dens * p.Dens)
	termJ := q.Pres / (q.Dens * q.Dens)

	pi := 0.0
	if st.Viscosity != nil {
		pi = st.Viscosity.Compute(viscosity.State{
			VelI: p.Vel, VelJ: q.Vel,
			SoundI: p.Sound, SoundJ: q.Sound,
			DensI: p.Dens, DensJ: q.Dens,
			AlphaI: p.Alpha, AlphaJ: q.Alpha,
			BalsaraI: p.Balsara, BalsaraJ: q.Balsara,
			RIJ: rij, R: r,
		})
	}

	coef := q.Mass * (termI + termJ + pi)
	acc = acc.Sub(gradW.Scale(coef))

	vij := p.Vel.Sub(q.Vel)
	dene += q.Mass * (termI + 0.5*pi) * vij.Dot(gradW)

	return acc, dene
}

// accumulateGSPH replaces the symmetric pressure term with a Riemann-solved
// interface state (P*, u*), optionally MUSCL-reconstructing the left/right
// states with the slope limiter before the solve.
func (st *Stage) accumulateGSPH(p, q *particle.Particle, pre []preinteraction.Output, i, j int, r float64, n, gradW vecmath.Vec, acc vecmath.Vec, dene float64) (vecmath.Vec, float64) {
	left := riemann.State{Velocity: p.Vel.Dot(n), Density: p.Dens, Pressure: p.Pres, SoundSpeed: p.Sound}
	right := riemann.State{Velocity: q.Vel.Dot(n), Density: q.Dens, Pressure: q.Pres, SoundSpeed: q.Sound}

	if st.SecondOrder && pre != nil {
		left, right = st.reconstruct(p, q, pre, i, j, r, n, left, right)
	}

	sol := st.Riemann.Solve(left, right)

	coef := 2 * q.Mass * sol.Pressure / (p.Dens * q.Dens)
	acc = acc.Sub(gradW.Scale(coef))

	vn := p.Vel.Dot(n)
	dene += q.Mass * 2 * sol.Pressure * (sol.Velocity - vn) * gradW.Norm() / (p.Dens * q.Dens)

	return acc, dene
}

// reconstruct applies a MUSCL half-step extrapolation of density and
// pressure to the interface using the precomputed gradients from the
// pre-interaction stage, limited by the configured slope limiter.
func (st *Stage) reconstruct(p, q *particle.Particle, pre []preinteraction.Output, i, j int, r float64, n vecmath.Vec, left, right riemann.State) (riemann.State, riemann.State) {
	halfR := 0.5 * r
	gi := pre[i].Gradients
	gj := pre[j].Gradients

	dPi := gi.DP.Dot(n)
	dPj := gj.DP.Dot(n)
	limP := 0.0
	if st.Limiter != nil {
		limP = st.Limiter.Limit(dPi, dPj)
	} else {
		limP = 0.5 * (dPi + dPj)
	}
	left.Pressure = math.Max(p.Pres+limP*halfR, 1e-12)
	right.Pressure = math.Max(q.Pres-limP*halfR, 1e-12)

	dRhoI := gi.DRho.Dot(n)
	dRhoJ := gj.DRho.Dot(n)
	limRho := 0.0
	if st.Limiter != nil {
		limRho = st.Limiter.Limit(dRhoI, dRhoJ)
	} else {
		limRho = 0.5 * (dRhoI + dRhoJ)
	}
	left.Density = math.Max(p.Dens+limRho*halfR, 1e-12)
	right.Density = math.Max(q.Dens-limRho*halfR, 1e-12)

	return left, right
}

// artificialConductivity smooths energy discontinuities independent of the
// viscosity term: de_i/dt += alpha_c * m_j * v_sig_u * (e_i - e_j) * n.gradW / rho_bar_ij.
func (st *Stage) artificialConductivity(p, q *particle.Particle, n, gradW vecmath.Vec) float64 {
	rhoBar := 0.5 * (p.Dens + q.Dens)
	vSigU := math.Sqrt(math.Abs(p.Pres-q.Pres) / rhoBar)
	return st.ConductivityAlpha * q.Mass * vSigU * (p.Ene - q.Ene) * n.Dot(gradW) / rhoBar
}
