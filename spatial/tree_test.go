package spatial

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/vecmath"
)

func line1D(n int) []particle.Particle {
	s := make([]particle.Particle, n)
	for i := 0; i < n; i++ {
		s[i] = particle.NewReal(i, vecmath.New(1, float64(i)/float64(n), 0, 0), vecmath.Zero(1), 1.0)
		s[i].Sml = 0.5 / float64(n)
		s[i].Dens = 1.0
	}
	return s
}

func TestMakeEmptyIsNoop(t *testing.T) {
	tr := New(1, 20, 1)
	if err := tr.Make(nil); err != nil {
		t.Fatalf("unexpected error on empty Make: %v", err)
	}
	out := make([]int, 8)
	res, ok := tr.NeighborSearch(0, 2, false, out)
	if !ok || len(res) != 0 {
		t.Errorf("expected empty neighbor result on empty tree, got %v", res)
	}
}

func TestMakeRejectsIDIndexMismatch(t *testing.T) {
	tr := New(1, 20, 1)
	s := line1D(3)
	s[1].ID = 99
	if err := tr.Make(s); err == nil {
		t.Fatalf("expected InvariantViolation for id != index")
	}
}

func TestNeighborSearchFindsCloseParticles(t *testing.T) {
	s := line1D(20)
	for i := range s {
		s[i].Sml = 0.1
	}
	tr := New(1, 20, 2)
	if err := tr.Make(s); err != nil {
		t.Fatalf("Make failed: %v", err)
	}
	out := make([]int, 64)
	res, ok := tr.NeighborSearch(10, 2, true, out)
	if !ok {
		t.Fatalf("neighbor buffer overflowed unexpectedly")
	}
	if len(res) == 0 {
		t.Errorf("expected some neighbors near the middle of a dense line")
	}
	for _, j := range res {
		if j == 10 {
			t.Errorf("self should never appear in its own neighbor list")
		}
	}
}

func TestNeighborSearchOverflowTruncates(t *testing.T) {
	s := line1D(50)
	for i := range s {
		s[i].Sml = 1.0 // huge support: everyone is a neighbor of everyone
	}
	tr := New(1, 20, 2)
	if err := tr.Make(s); err != nil {
		t.Fatalf("Make failed: %v", err)
	}
	out := make([]int, 3)
	res, ok := tr.NeighborSearch(25, 2, true, out)
	if ok {
		t.Errorf("expected overflow (ok=false) with a tiny buffer")
	}
	if len(res) > 3 {
		t.Errorf("result must not exceed buffer capacity, got %d", len(res))
	}
}

func TestTreeForceSymmetricTwoBody(t *testing.T) {
	s := []particle.Particle{
		particle.NewReal(0, vecmath.New(1, -0.5, 0, 0), vecmath.Zero(1), 1.0),
		particle.NewReal(1, vecmath.New(1, 0.5, 0, 0), vecmath.Zero(1), 1.0),
	}
	s[0].Sml, s[1].Sml = 0.01, 0.01
	tr := New(1, 20, 1)
	if err := tr.Make(s); err != nil {
		t.Fatalf("Make failed: %v", err)
	}
	acc0, _ := tr.TreeForce(0, 1.0, 0.5)
	acc1, _ := tr.TreeForce(1, 1.0, 0.5)
	if math.Abs(acc0.C[0]+acc1.C[0]) > 1e-9 {
		t.Errorf("accelerations on a symmetric two-body system should be equal and opposite, got %v and %v", acc0, acc1)
	}
	if acc0.C[0] <= 0 {
		t.Errorf("particle 0 (left) should accelerate toward particle 1 (right, positive x), got %v", acc0.C[0])
	}
}

func TestTreeForceZeroWhenAlone(t *testing.T) {
	s := []particle.Particle{particle.NewReal(0, vecmath.Zero(2), vecmath.Zero(2), 1.0)}
	s[0].Sml = 0.1
	tr := New(2, 20, 1)
	if err := tr.Make(s); err != nil {
		t.Fatalf("Make failed: %v", err)
	}
	acc, phi := tr.TreeForce(0, 1.0, 0.5)
	if acc.Norm() != 0 || phi != 0 {
		t.Errorf("a lone particle should feel no force and no potential, got acc=%v phi=%v", acc, phi)
	}
}
