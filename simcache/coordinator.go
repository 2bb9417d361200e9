package simcache

import (
	"github.com/pthm-cable/sph-core/spatial"
)

// Coordinator performs the atomic rebuild sequence over a search array the
// caller has already synced: validate id==index, then rebuild the tree. It
// never leaves the tree in a partially-rebuilt state — on any validation
// failure the error is returned before Make is called and the previous tree
// (if any) is left untouched.
type Coordinator struct {
	Cache *Cache
	Tree  *spatial.Tree
}

// NewCoordinator ties a cache to the tree it maintains.
func NewCoordinator(cache *Cache, tree *spatial.Tree) *Coordinator {
	return &Coordinator{Cache: cache, Tree: tree}
}

// RebuildForNeighborSearch validates id==index and rebuilds the tree. It
// does not sync: real and ghost particles must already be current in the
// cache (via SyncReal/IncludeGhosts, which also renumbers ghosts) before
// calling this.
func (c *Coordinator) RebuildForNeighborSearch() error {
	// "Clear next pointers" in the original has no analog here: spatial.Tree
	// stores leaf membership in its own permutation array rather than an
	// intrusive field on particle.Particle, so there is no stale
	// cross-step pointer to clear. Make() rebuilds that array from scratch
	// every call.
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return c.Tree.Make(c.Cache.SearchParticlesMutable())
}

// SearchParticleCount returns the current size of S.
func (c *Coordinator) SearchParticleCount() int {
	return c.Cache.Size()
}

// IsTreeConsistent reports whether the tree was built against the cache's
// current particle count (a cheap proxy for "built with current S").
func (c *Coordinator) IsTreeConsistent() bool {
	return c.Tree.Size() == c.Cache.Size()
}
