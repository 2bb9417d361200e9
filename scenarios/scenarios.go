// Package scenarios builds plugin.InitialCondition values for the
// standard SPH test problems: the Sod shock tube, the Gresho-Chan vortex,
// and the Evrard collapse. Each constructor mirrors the constants and
// particle layout of the corresponding reference workflow, expressed as a
// pure function returning data rather than a dynamically-loaded plugin.
package scenarios

import (
	"math"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/plugin"
	"github.com/pthm-cable/sph-core/vecmath"
)

// SodShockTube builds the standard 1D Sod shock tube: a left state
// (ρ=1, P=1) and a right state (ρ=0.125, P=0.1) separated at x=0.5 in a
// periodic domain [-0.5, 1.5], with an 8:1 spacing ratio so both sides
// carry equal particle mass. nRight sets the right-side particle count;
// the left side is populated at 8x that resolution.
func SodShockTube(nRight int) plugin.InitialCondition {
	const gamma = 1.4
	const kappa = 1.2

	dxRight := 1.0 / float64(nRight)
	dxLeft := dxRight / 8.0
	nLeft := int(1.0 / dxLeft)
	mass := 0.125 * dxRight

	particles := make([]particle.Particle, 0, nLeft+nRight)

	x := -0.5 + dxLeft*0.5
	for i := 0; i < nLeft; i++ {
		p := particle.NewReal(len(particles), vecmath.New(1, x, 0, 0), vecmath.Zero(1), mass)
		p.Dens, p.Pres = 1.0, 1.0
		p.Ene = p.Pres / ((gamma - 1.0) * p.Dens)
		p.Sound = math.Sqrt(gamma * p.Pres / p.Dens)
		p.Sml = kappa * dxLeft
		particles = append(particles, p)
		x += dxLeft
	}

	x = 0.5 + dxRight*0.5
	for i := 0; i < nRight; i++ {
		p := particle.NewReal(len(particles), vecmath.New(1, x, 0, 0), vecmath.Zero(1), mass)
		p.Dens, p.Pres = 0.125, 0.1
		p.Ene = p.Pres / ((gamma - 1.0) * p.Dens)
		p.Sound = math.Sqrt(gamma * p.Pres / p.Dens)
		p.Sml = kappa * dxRight
		particles = append(particles, p)
		x += dxRight
	}

	sphParams, err := params.NewBase(1).
		WithTime(0.0, 0.30, 0.01, 0.01).
		WithCFL(0.3, 0.25).
		WithPhysics(4, gamma).
		WithKernel(params.CubicSplineKernel).
		WithTreeParams(20, 1).
		WithIterativeSmoothingLength(true).
		AsSSPH().
		WithArtificialViscosity(1.0, true, false, 1.0, 0.1, 0.1).
		Build()
	if err != nil {
		panic(err)
	}

	bc := &boundary.Configuration{Dim: 1}
	bc.Types[0] = boundary.PeriodicType
	bc.EnableLower[0], bc.EnableUpper[0] = true, true
	bc.RangeMin[0], bc.RangeMax[0] = -0.5, 1.5

	return plugin.InitialCondition{Particles: particles, Parameters: *sphParams, BoundaryConfig: bc}
}

// greshoVelocity returns the Gresho-Chan azimuthal velocity profile at
// radius r (Gresho & Chan 1990).
func greshoVelocity(r float64) float64 {
	switch {
	case r < 0.2:
		return 5.0 * r
	case r < 0.4:
		return 2.0 - 5.0*r
	default:
		return 0.0
	}
}

// greshoPressure returns the pressure profile that balances centrifugal
// force against the pressure gradient for greshoVelocity.
func greshoPressure(r float64) float64 {
	switch {
	case r < 0.2:
		return 5.0 + 12.5*r*r
	case r < 0.4:
		return 9.0 + 12.5*r*r - 20.0*r + 4.0*math.Log(5.0*r)
	default:
		return 3.0 + 4.0*math.Log(2.0)
	}
}

// GreshoChanVortex builds the 2D Gresho-Chan vortex on an n x n grid over
// [-0.5, 0.5]^2 with periodic boundaries: uniform density, azimuthal
// velocity and pressure in equilibrium with centrifugal force.
func GreshoChanVortex(n int) plugin.InitialCondition {
	const gamma = 5.0 / 3.0
	dx := 1.0 / float64(n)
	num := n * n
	mass := 1.0 / float64(num)

	particles := make([]particle.Particle, 0, num)
	y := -0.5 + dx*0.5
	for j := 0; j < n; j++ {
		x := -0.5 + dx*0.5
		for i := 0; i < n; i++ {
			r := math.Sqrt(x*x + y*y)
			vel := vecmath.Zero(2)
			if r > 0 {
				speed := greshoVelocity(r)
				dirMag := math.Sqrt(y*y + x*x)
				vel = vecmath.New(2, -y*speed/dirMag, x*speed/dirMag, 0)
			}
			p := particle.NewReal(len(particles), vecmath.New(2, x, y, 0), vel, mass)
			p.Dens = 1.0
			p.Pres = greshoPressure(r)
			p.Ene = p.Pres / ((gamma - 1.0) * p.Dens)
			p.Sound = math.Sqrt(gamma * p.Pres / p.Dens)
			p.Sml = 1.5 * dx
			particles = append(particles, p)
			x += dx
		}
		y += dx
	}

	sphParams, err := params.NewBase(2).
		WithTime(0.0, 3.0, 0.1, 0.1).
		WithCFL(0.3, 0.25).
		WithPhysics(50, gamma).
		WithKernel(params.CubicSplineKernel).
		WithTreeParams(20, 1).
		WithIterativeSmoothingLength(true).
		AsSSPH().
		WithArtificialViscosity(1.0, true, false, 1.0, 0.1, 0.1).
		Build()
	if err != nil {
		panic(err)
	}

	bc := &boundary.Configuration{Dim: 2}
	for d := 0; d < 2; d++ {
		bc.Types[d] = boundary.PeriodicType
		bc.EnableLower[d], bc.EnableUpper[d] = true, true
		bc.RangeMin[d], bc.RangeMax[d] = -0.5, 0.5
	}

	return plugin.InitialCondition{Particles: particles, Parameters: *sphParams, BoundaryConfig: bc}
}

// EvrardCollapse builds the 3D Evrard (1988) self-gravitating polytropic
// sphere: M=1, R=1, ρ(r) ∝ 1/r, uniform thermal energy u=0.05*G, at rest,
// sampled on an n^3 grid with a radial r^1.5 distortion for even coverage.
func EvrardCollapse(n int, gravityConstant, theta float64) plugin.InitialCondition {
	const gamma = 5.0 / 3.0
	dx := 2.0 / float64(n)

	type point struct{ x, y, z float64 }
	var points []point
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				x := (float64(i)+0.5)*dx - 1.0
				y := (float64(j)+0.5)*dx - 1.0
				z := (float64(k)+0.5)*dx - 1.0
				r0 := math.Sqrt(x*x + y*y + z*z)
				if r0 > 1.0 {
					continue
				}
				if r0 > 0 {
					scale := math.Pow(r0, 1.5) / r0
					x, y, z = x*scale, y*scale, z*scale
				}
				points = append(points, point{x, y, z})
			}
		}
	}

	mass := 1.0 / float64(len(points))
	u := 0.05 * gravityConstant

	particles := make([]particle.Particle, 0, len(points))
	for _, pt := range points {
		pos := vecmath.New(3, pt.x, pt.y, pt.z)
		p := particle.NewReal(len(particles), pos, vecmath.Zero(3), mass)
		rMag := pos.Norm()
		p.Dens = 1.0 / (2.0 * math.Pi * rMag)
		p.Ene = u
		p.Pres = (gamma - 1.0) * p.Dens * u
		p.Sound = math.Sqrt(gamma * p.Pres / p.Dens)
		p.Sml = 2.0 * dx
		particles = append(particles, p)
	}

	sphParams, err := params.NewBase(3).
		WithTime(0.0, 3.0, 0.1, 0.1).
		WithCFL(0.3, 0.25).
		WithPhysics(50, gamma).
		WithKernel(params.CubicSplineKernel).
		WithTreeParams(20, 1).
		WithIterativeSmoothingLength(true).
		WithGravity(gravityConstant, theta).
		AsSSPH().
		WithArtificialViscosity(1.0, true, false, 1.0, 0.1, 0.1).
		Build()
	if err != nil {
		panic(err)
	}

	return plugin.InitialCondition{Particles: particles, Parameters: *sphParams}
}
