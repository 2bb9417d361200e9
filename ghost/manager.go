// Package ghost implements the ghost-particle boundary method (Lajoie &
// Sills 2010 / Morris 1997): synthetic read-only particles derived from real
// ones, injected near periodic and mirror boundaries so density/force
// kernels see an effectively infinite or reflective domain.
package ghost

import (
	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/simerr"
	"github.com/pthm-cable/sph-core/vecmath"
)

// Manager owns the ghost array G and the boundary configuration it is
// generated from.
type Manager struct {
	config              boundary.Configuration
	ghosts              []particle.Particle
	kernelSupportRadius float64
}

// Initialize sets the boundary configuration. Must be called before
// Generate/Regenerate.
func (m *Manager) Initialize(cfg boundary.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// SetKernelSupportRadius sets r_k, the distance from a boundary within which
// a real particle produces a ghost. Typically 2*max(h) over real particles.
func (m *Manager) SetKernelSupportRadius(r float64) error {
	if r <= 0 {
		return simerr.NewConfigurationError("ghost.kernel_support_radius", "smoothing lengths not initialized")
	}
	m.kernelSupportRadius = r
	return nil
}

// GhostParticles returns the current ghost array G.
func (m *Manager) GhostParticles() []particle.Particle {
	return m.ghosts
}

// HasGhosts reports whether G is non-empty.
func (m *Manager) HasGhosts() bool {
	return len(m.ghosts) > 0
}

// Clear empties G.
func (m *Manager) Clear() {
	m.ghosts = m.ghosts[:0]
}

// Config returns the boundary configuration.
func (m *Manager) Config() *boundary.Configuration {
	return &m.config
}

// Generate builds G from real particles according to the boundary
// configuration: per-dimension periodic and mirror ghosts, then corner/edge
// composites. Positions are fully recomputed; this never mutates real.
func (m *Manager) Generate(real []particle.Particle) error {
	if m.kernelSupportRadius <= 0 {
		return simerr.NewConfigurationError("ghost.kernel_support_radius", "smoothing lengths not initialized")
	}
	m.ghosts = m.ghosts[:0]

	dim := m.config.Dim
	for d := 0; d < dim; d++ {
		switch m.config.Types[d] {
		case boundary.PeriodicType:
			m.generatePeriodicGhosts(real, d)
		case boundary.MirrorType:
			if m.config.EnableLower[d] {
				m.generateMirrorGhosts(real, d, false)
			}
			if m.config.EnableUpper[d] {
				m.generateMirrorGhosts(real, d, true)
			}
		}
	}
	m.generateCornerGhosts(real)
	return nil
}

// Regenerate is the declarative wrapper spec.md §4.4/§12 mandates: clear
// existing ghosts and generate new ones from current real positions. Always
// call this (never update_ghosts alone) whenever real positions have
// changed, e.g. after predict().
func (m *Manager) Regenerate(real []particle.Particle) error {
	return m.Generate(real)
}

// RefreshProperties updates the copied thermodynamic fields (mass, density,
// pressure, energy, sml, sound) on existing ghosts from their source real
// particles, without moving them. This is the documented performance path
// for refreshing thermodynamics between substages (e.g. after density is
// recomputed in pre-interaction) — it must run after Regenerate within the
// same step, never instead of it, since it does not reposition ghosts.
func (m *Manager) RefreshProperties(real []particle.Particle) {
	for i := range m.ghosts {
		src := &real[m.ghosts[i].GhostOf]
		m.ghosts[i].Mass = src.Mass
		m.ghosts[i].Dens = src.Dens
		m.ghosts[i].Pres = src.Pres
		m.ghosts[i].Ene = src.Ene
		m.ghosts[i].Sml = src.Sml
		m.ghosts[i].Sound = src.Sound
		m.ghosts[i].GradH = src.GradH
		m.ghosts[i].Balsara = src.Balsara
		m.ghosts[i].Alpha = src.Alpha
	}
}

// ApplyPeriodicWrapping wraps real particle positions that have drifted
// outside a PERIODIC dimension's range, in place.
func (m *Manager) ApplyPeriodicWrapping(real []particle.Particle) {
	p := boundary.NewPeriodic(&m.config)
	for i := range real {
		real[i].Pos = p.Wrap(real[i].Pos)
	}
}

func (m *Manager) newGhost(src *particle.Particle, pos, vel vecmath.Vec) particle.Particle {
	g := *src
	g.Pos = pos
	g.Vel = vel
	g.VelP = vel
	g.Acc = vecmath.Vec{Dim: src.Pos.Dim}
	g.DEne = 0
	g.Kind = particle.Ghost
	g.GhostOf = src.ID
	g.Next = -1
	return g
}

func (m *Manager) generatePeriodicGhosts(real []particle.Particle, d int) {
	rng := m.config.Range(d)
	rk := m.kernelSupportRadius
	for i := range real {
		p := &real[i]
		if p.Pos.C[d]-m.config.RangeMin[d] < rk {
			shifted := p.Pos
			shifted.C[d] += rng
			m.ghosts = append(m.ghosts, m.newGhost(p, shifted, p.Vel))
		}
		if m.config.RangeMax[d]-p.Pos.C[d] < rk {
			shifted := p.Pos
			shifted.C[d] -= rng
			m.ghosts = append(m.ghosts, m.newGhost(p, shifted, p.Vel))
		}
	}
}

func (m *Manager) mirrorPosition(pos vecmath.Vec, d int, upper bool) vecmath.Vec {
	wall := m.config.WallPosition(d, upper)
	out := pos
	out.C[d] = 2*wall - pos.C[d]
	return out
}

func (m *Manager) reflectVelocity(vel vecmath.Vec, d int) vecmath.Vec {
	out := vel
	switch m.config.MirrorKind[d] {
	case boundary.FreeSlip:
		out.C[d] = -out.C[d]
	default: // NoSlip
		out = out.Scale(-1)
	}
	return out
}

func (m *Manager) isNearBoundary(pos vecmath.Vec, d int, upper bool) bool {
	wall := m.config.WallPosition(d, upper)
	dist := pos.C[d] - wall
	if dist < 0 {
		dist = -dist
	}
	return dist < m.kernelSupportRadius
}

func (m *Manager) generateMirrorGhosts(real []particle.Particle, d int, upper bool) {
	for i := range real {
		p := &real[i]
		if !m.isNearBoundary(p.Pos, d, upper) {
			continue
		}
		pos := m.mirrorPosition(p.Pos, d, upper)
		vel := m.reflectVelocity(p.Vel, d)
		m.ghosts = append(m.ghosts, m.newGhost(p, pos, vel))
	}
}

// generateCornerGhosts composes the single-dimension transforms for
// particles close to two or three boundaries simultaneously (4 corners in
// 2D; 12 edges + 8 corners in 3D for all-periodic domains). It enumerates
// sign combinations over the dimensions a particle is close to and applies
// all relevant transforms to the *source real particle* directly (not to an
// already-generated single-dimension ghost), which avoids double-composing
// a particle that is only close to exactly one boundary.
func (m *Manager) generateCornerGhosts(real []particle.Particle) {
	dim := m.config.Dim
	if dim < 2 {
		return
	}
	for i := range real {
		p := &real[i]
		var closeDims []closeDim
		for d := 0; d < dim; d++ {
			switch m.config.Types[d] {
			case boundary.PeriodicType:
				if p.Pos.C[d]-m.config.RangeMin[d] < m.kernelSupportRadius {
					closeDims = append(closeDims, closeDim{d, periodicLow})
				}
				if m.config.RangeMax[d]-p.Pos.C[d] < m.kernelSupportRadius {
					closeDims = append(closeDims, closeDim{d, periodicHigh})
				}
			case boundary.MirrorType:
				if m.config.EnableLower[d] && m.isNearBoundary(p.Pos, d, false) {
					closeDims = append(closeDims, closeDim{d, mirrorLow})
				}
				if m.config.EnableUpper[d] && m.isNearBoundary(p.Pos, d, true) {
					closeDims = append(closeDims, closeDim{d, mirrorHigh})
				}
			}
		}
		// Group by dimension: a particle can be close to at most one side
		// per dimension in a well-formed domain (range > 2*r_k). Corner
		// ghosts only arise when >= 2 distinct dimensions are close.
		byDim := map[int]closeDim{}
		for _, c := range closeDims {
			byDim[c.dim] = c
		}
		if len(byDim) < 2 {
			continue // exactly one boundary: no corner ghost, avoid duplication
		}
		dims := make([]closeDim, 0, len(byDim))
		for _, c := range byDim {
			dims = append(dims, c)
		}
		m.emitCombinations(p, dims)
	}
}

type boundarySide int

const (
	periodicLow boundarySide = iota
	periodicHigh
	mirrorLow
	mirrorHigh
)

type closeDim struct {
	dim  int
	side boundarySide
}

// emitCombinations enumerates every non-empty subset of size >= 2 of dims
// and applies the composed transform to p, emitting one ghost per subset.
func (m *Manager) emitCombinations(p *particle.Particle, dims []closeDim) {
	n := len(dims)
	for mask := 1; mask < (1 << uint(n)); mask++ {
		if bitCount(mask) < 2 {
			continue
		}
		pos := p.Pos
		vel := p.Vel
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			c := dims[i]
			switch c.side {
			case periodicLow:
				pos.C[c.dim] += m.config.Range(c.dim)
			case periodicHigh:
				pos.C[c.dim] -= m.config.Range(c.dim)
			case mirrorLow:
				pos = m.mirrorPosition(pos, c.dim, false)
				vel = m.reflectVelocity(vel, c.dim)
			case mirrorHigh:
				pos = m.mirrorPosition(pos, c.dim, true)
				vel = m.reflectVelocity(vel, c.dim)
			}
		}
		m.ghosts = append(m.ghosts, m.newGhost(p, pos, vel))
	}
}

func bitCount(mask int) int {
	n := 0
	for mask != 0 {
		n += mask & 1
		mask >>= 1
	}
	return n
}
