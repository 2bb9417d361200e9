// Package smoothing implements the adaptive smoothing-length Newton-Raphson
// solver that the SSPH and GSPH pre-interaction stages use (DISPH runs its
// own residual in package preinteraction): it iterates h toward an
// equal-mass-in-support condition, with a trust-region clamp, a convergence
// tolerance, and a configurable minimum-enforcement policy.
package smoothing

import (
	"math"

	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/simlog"
)

const (
	defaultEpsilonSml = 1e-4
	defaultMaxIter    = 50
	trustRegionClamp  = 0.20
)

// unitVolume is the dimension-dependent support-volume coefficient in
// spec.md §4.6's f(h): 4pi/3 in 3D, pi in 2D, 2 in 1D.
func unitVolume(dim int) float64 {
	switch dim {
	case 1:
		return 2
	case 2:
		return math.Pi
	default:
		return 4 * math.Pi / 3
	}
}

// Neighbor is the minimal per-neighbor input the solver needs: its mass and
// its separation distance from the probe particle (periodic minimum image
// already applied by the caller).
type Neighbor struct {
	Mass float64
	R    float64
}

// Result is the outcome of one particle's smoothing-length solve.
type Result struct {
	H          float64
	Density    float64
	GradH      float64 // Omega, grad-h correction factor
	Iterations int
	Converged  bool
}

// Solve runs Newton-Raphson for one real particle of mass m, current
// smoothing length h0, and its neighbor list (which may include ghosts —
// the residual sums over every neighbor, real or ghost, per §4.6's "include
// every neighbor in the density sum"). Safe to call concurrently across
// particles: all state is local to the call.
func Solve(dim int, k kernel.Kernel, m, h0, targetNeighborNum float64, neighbors []Neighbor, policy params.SmoothingLengthPolicy) Result {
	h := h0
	if h <= 0 {
		h = 1e-6
	}
	uv := unitVolume(dim)

	converged := false
	iter := 0
	for ; iter < defaultMaxIter; iter++ {
		rho := densityAt(dim, k, h, neighbors)
		f := uv*math.Pow(h, float64(dim))*rho - targetNeighborNum*m

		const eps = 1e-6
		hPlus := h * (1 + eps)
		hMinus := h * (1 - eps)
		fPlus := uv * math.Pow(hPlus, float64(dim)) * densityAt(dim, k, hPlus, neighbors)
		fMinus := uv * math.Pow(hMinus, float64(dim)) * densityAt(dim, k, hMinus, neighbors)
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

	rho, omega := densityAndGradH(dim, k, h, neighbors)

	if !converged {
		simlog.Warnf("smoothing.nonconvergence", "Newton-Raphson did not converge after %d iterations (h=%v)", iter, h)
	}

	h = enforceMinimum(h, m, dim, policy)

	return Result{H: h, Density: rho, GradH: omega, Iterations: iter, Converged: converged}
}

// densityAt computes rho = sum_j m_j W(r_ij, h).
func densityAt(dim int, k kernel.Kernel, h float64, neighbors []Neighbor) float64 {
	rho := 0.0
	for _, n := range neighbors {
		rho += n.Mass * k.W(n.R, h, dim)
	}
	return rho
}

// densityAndGradH computes rho together with the grad-h correction
// Omega = 1 / (1 + (h / (D*rho)) * sum_j m_j dW/dh), via a centered finite
// difference for dW/dh. The original project differentiates the closed-form
// kernel directly; a finite difference is adequate since Omega only enters
// as a second-order correction term downstream.
func densityAndGradH(dim int, k kernel.Kernel, h float64, neighbors []Neighbor) (rho, omega float64) {
	const eps = 1e-6
	rho = densityAt(dim, k, h, neighbors)
	if rho <= 0 {
		return rho, 1
	}
	dWdhSum := 0.0
	for _, n := range neighbors {
		wPlus := k.W(n.R, h+eps*h, dim)
		wMinus := k.W(n.R, h-eps*h, dim)
		dWdhSum += n.Mass * (wPlus - wMinus) / (2 * eps * h)
	}
	omega = 1.0 / (1.0 + (h/(float64(dim)*rho))*dWdhSum)
	return rho, omega
}

func enforceMinimum(h, m float64, dim int, policy params.SmoothingLengthPolicy) float64 {
	switch policy.Kind {
	case params.ConstantMin:
		if h < policy.HMinConstant {
			return policy.HMinConstant
		}
	case params.PhysicsBased:
		dMin := math.Pow(m/policy.RhoExpectedMax, 1.0/float64(dim))
		floor := policy.Alpha * dMin
		if h < floor {
			return floor
		}
	}
	return h
}
