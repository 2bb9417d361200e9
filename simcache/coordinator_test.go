package simcache

import (
	"testing"

	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/vecmath"
)

func TestCoordinatorRebuild(t *testing.T) {
	var c Cache
	r := make([]particle.Particle, 10)
	for i := range r {
		r[i] = particle.NewReal(i, vecmath.New(1, float64(i)/10.0, 0, 0), vecmath.Zero(1), 1.0)
		r[i].Sml = 0.1
	}
	c.Init(r)
	if err := c.IncludeGhosts(nil); err != nil {
		t.Fatalf("IncludeGhosts failed: %v", err)
	}

	tr := spatial.New(1, 20, 2)
	coord := NewCoordinator(&c, tr)
	if err := coord.RebuildForNeighborSearch(); err != nil {
		t.Fatalf("RebuildForNeighborSearch failed: %v", err)
	}
	if !coord.IsTreeConsistent() {
		t.Errorf("tree should be consistent with cache right after rebuild")
	}
}

func TestCoordinatorRejectsBrokenInvariant(t *testing.T) {
	var c Cache
	c.Init(reals(3))
	c.s[0].ID = 7 // break P2 directly
	tr := spatial.New(1, 20, 1)
	coord := NewCoordinator(&c, tr)
	if err := coord.RebuildForNeighborSearch(); err == nil {
		t.Errorf("expected invariant violation to propagate before rebuild")
	}
}
