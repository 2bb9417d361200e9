package preinteraction

import (
	"math"

	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/simlog"
)

// Newton loop settings; the same values smoothing.Solve uses.
const (
	defaultEpsilonSml = 1e-4
	defaultMaxIter    = 50
	trustRegionClamp  = 0.20
)

// unitVolume is the support-volume coefficient of the residual: 2 in 1D, pi
// in 2D, 4pi/3 in 3D.
func unitVolume(dim int) float64 {
	return [3]float64{2, math.Pi, 4 * math.Pi / 3}[dim-1]
}

// disphNeighbor is the DISPH residual's per-neighbor input: its mass,
// specific internal energy from the previous step, and separation.
type disphNeighbor struct {
	Mass, Ene, R float64
}

// disphSolve is the pressure-entropy counterpart of smoothing.Solve: the
// Newton loop structure (trust-region clamp, convergence tolerance, max
// iterations) is identical to the density-based solver, but the residual
// replaces the density sum with the energy-weighted sum
// Y(h) = sum_j m_j u_j W(r_ij, h), consistent with DISPH's pressure-volume
// formulation (spec: "the invariant relates a pressure-volume quantity to a
// target; the solver variant overrides only the residual"). Pressure
// follows directly as P = (gamma-1) * Y, without requiring density as an
// intermediate, and an equivalent density is backed out of the ideal-gas EOS
// for use by the force/viscosity stages that still expect a density field.
func disphSolve(dim int, k kernel.Kernel, gamma, h0, targetNeighborNum float64, neighbors []disphNeighbor) (h, y float64, converged bool) {
	h = h0
	if h <= 0 {
		h = 1e-6
	}
	uv := unitVolume(dim)

	iter := 0
	for ; iter < defaultMaxIter; iter++ {
		yv := disphY(dim, k, h, neighbors)
		f := uv*math.Pow(h, float64(dim))*yv - targetNeighborNum*avgMassEnergy(neighbors)

		const eps = 1e-6
		hPlus := h * (1 + eps)
		hMinus := h * (1 - eps)
		fPlus := uv * math.Pow(hPlus, float64(dim)) * disphY(dim, k, hPlus, neighbors)
		fMinus := uv * math.Pow(hMinus, float64(dim)) * disphY(dim, k, hMinus, neighbors)
		df := (fPlus - fMinus) / (hPlus - hMinus)
		if df == 0 {
			break
		}

		deltaH := -f / df
		maxStep := trustRegionClamp * h
		if deltaH > maxStep {
			deltaH = maxStep
		} else if deltaH < -maxStep {
			deltaH = -maxStep
		}
		hNew := h + deltaH
		if hNew <= 0 {
			hNew = h / 2
		}
		relChange := math.Abs(hNew-h) / h
		h = hNew
		if relChange < defaultEpsilonSml {
			converged = true
			iter++
			break
		}
	}

	y = disphY(dim, k, h, neighbors)
	if !converged {
		simlog.Warnf("preinteraction.disph_nonconvergence", "DISPH pressure-volume solve did not converge after %d iterations (h=%v)", iter, h)
	}
	return h, y, converged
}

func disphY(dim int, k kernel.Kernel, h float64, neighbors []disphNeighbor) float64 {
	y := 0.0
	for _, n := range neighbors {
		y += n.Mass * n.Ene * k.W(n.R, h, dim)
	}
	return y
}

func avgMassEnergy(neighbors []disphNeighbor) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range neighbors {
		sum += n.Mass * n.Ene
	}
	return sum / float64(len(neighbors))
}
