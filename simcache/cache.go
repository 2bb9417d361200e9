// Package simcache owns the search array S (the concatenation of real and
// renumbered ghost particles) and the atomic sequence that keeps it, and the
// tree built over it, consistent: sync real particles, append ghosts with a
// reallocation buffer, clear stale tree bookkeeping, validate id==index,
// rebuild.
package simcache

import (
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/simerr"
)

// ReallocationBuffer is the slack added beyond the exact real+ghost count
// when growing the search array, so capacity growth (and the tree-pointer
// invalidation that would follow) is rare rather than happening on every
// ghost-count fluctuation.
const ReallocationBuffer = 100

// Cache owns the backing storage for the search array S.
type Cache struct {
	s            []particle.Particle
	realCount    int
	hasGhosts    bool
	initialized  bool
}

// Init copies real particles into a freshly sized cache and remembers the
// real count.
func (c *Cache) Init(real []particle.Particle) {
	c.realCount = len(real)
	c.s = make([]particle.Particle, len(real), len(real)+ReallocationBuffer)
	copy(c.s, real)
	c.hasGhosts = false
	c.initialized = true
}

// SyncReal copies real particles into S[0:N_real), preserving capacity.
// Precondition: len(real) == N_real (established by Init).
func (c *Cache) SyncReal(real []particle.Particle) error {
	if !c.initialized {
		return simerr.NewInvariantViolation("cache.init", "SyncReal called before Init")
	}
	if len(real) != c.realCount {
		return simerr.NewInvariantViolation("cache.real_count", "real particle count changed between steps")
	}
	copy(c.s[:c.realCount], real)
	return nil
}

// IncludeGhosts grows S to N_real+len(ghosts) (reallocating with
// ReallocationBuffer slack only if current capacity is insufficient), copies
// ghosts into S[N_real:), and renumbers each ghost's id to N_real+k.
func (c *Cache) IncludeGhosts(ghosts []particle.Particle) error {
	if !c.initialized {
		return simerr.NewInvariantViolation("cache.init", "IncludeGhosts called before Init")
	}
	total := c.realCount + len(ghosts)
	if cap(c.s) < total {
		grown := make([]particle.Particle, total, total+ReallocationBuffer)
		copy(grown, c.s[:c.realCount])
		c.s = grown
	} else {
		c.s = c.s[:total]
	}
	for k, g := range ghosts {
		g.ID = c.realCount + k
		c.s[c.realCount+k] = g
	}
	c.hasGhosts = len(ghosts) > 0
	return nil
}

// SearchParticles returns read-only access to S, for neighbor search and
// force kernels.
func (c *Cache) SearchParticles() []particle.Particle {
	return c.s
}

// SearchParticlesMutable returns mutable access to S. Only the tree builder
// should use this (e.g. to zero stale next-pointer bookkeeping); force
// kernels must never mutate through this handle.
func (c *Cache) SearchParticlesMutable() []particle.Particle {
	return c.s
}

// HasGhosts reports whether the last IncludeGhosts call added any ghosts.
func (c *Cache) HasGhosts() bool {
	return c.hasGhosts
}

// Size returns len(S).
func (c *Cache) Size() int {
	return len(c.s)
}

// IsInitialized reports whether Init has been called.
func (c *Cache) IsInitialized() bool {
	return c.initialized
}

// RealCount returns N_real.
func (c *Cache) RealCount() int {
	return c.realCount
}

// Validate checks invariant S1: |S| = |R| + |G|, S[i].id == i for all i.
func (c *Cache) Validate() error {
	if len(c.s) < c.realCount {
		return simerr.NewInvariantViolation("S1", "search array smaller than real count")
	}
	for i, p := range c.s {
		if p.ID != i {
			return simerr.NewInvariantViolation("P2", "search array id does not equal index")
		}
	}
	return nil
}
