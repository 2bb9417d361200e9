package ghost

import (
	"math"
	"testing"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/vecmath"
)

func TestNoGhostsWhenAllNone(t *testing.T) {
	cfg := boundary.Configuration{Dim: 2, RangeMin: [3]float64{0, 0}, RangeMax: [3]float64{1, 1}}
	var m Manager
	if err := m.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := m.SetKernelSupportRadius(0.05); err != nil {
		t.Fatalf("SetKernelSupportRadius: %v", err)
	}
	real := []particle.Particle{particle.NewReal(0, vecmath.New(2, 0.01, 0.5, 0), vecmath.Zero(2), 1.0)}
	if err := m.Generate(real); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if m.HasGhosts() {
		t.Errorf("expected no ghosts when all boundary types are NONE, got %d", len(m.GhostParticles()))
	}
}

func TestPeriodicGhostPlacement(t *testing.T) {
	cfg := boundary.Configuration{
		Dim:      1,
		Types:    [3]boundary.Type{boundary.PeriodicType},
		RangeMin: [3]float64{0},
		RangeMax: [3]float64{1},
	}
	var m Manager
	m.Initialize(cfg)
	m.SetKernelSupportRadius(0.1)
	real := []particle.Particle{particle.NewReal(0, vecmath.New(1, 0.05, 0, 0), vecmath.Zero(1), 2.0)}
	real[0].Dens = 5
	m.Generate(real)
	gs := m.GhostParticles()
	if len(gs) != 1 {
		t.Fatalf("expected exactly one periodic ghost, got %d", len(gs))
	}
	if math.Abs(gs[0].Pos.C[0]-1.05) > 1e-9 {
		t.Errorf("expected ghost at x+range=1.05, got %v", gs[0].Pos.C[0])
	}
	if gs[0].Mass != 2.0 || gs[0].Dens != 5 {
		t.Errorf("ghost must inherit source mass/density verbatim, got mass=%v dens=%v", gs[0].Mass, gs[0].Dens)
	}
	if gs[0].Kind != particle.Ghost {
		t.Errorf("expected Kind=Ghost")
	}
}

func TestMorrisReflectionNoSlip(t *testing.T) {
	cfg := boundary.Configuration{
		Dim:          1,
		Types:        [3]boundary.Type{boundary.MirrorType},
		EnableLower:  [3]bool{true},
		RangeMin:     [3]float64{0},
		RangeMax:     [3]float64{1},
		SpacingLower: [3]float64{0.1},
		MirrorKind:   [3]boundary.MirrorKind{boundary.NoSlip},
	}
	var m Manager
	m.Initialize(cfg)
	m.SetKernelSupportRadius(0.2)
	real := []particle.Particle{particle.NewReal(0, vecmath.New(1, 0.02, 0, 0), vecmath.New(1, 1.5, 0, 0), 1.0)}
	m.Generate(real)
	gs := m.GhostParticles()
	if len(gs) != 1 {
		t.Fatalf("expected one mirror ghost, got %d", len(gs))
	}
	wall := cfg.WallPosition(0, false)
	xReal := real[0].Pos.C[0]
	xGhost := gs[0].Pos.C[0]
	if math.Abs(math.Abs(xGhost-wall)-math.Abs(xReal-wall)) > 1e-9 {
		t.Errorf("Morris reflection distance mismatch: |x_ghost-wall|=%v |x_real-wall|=%v", math.Abs(xGhost-wall), math.Abs(xReal-wall))
	}
	if (xGhost-wall)+(xReal-wall) > 1e-9 || (xGhost-wall)+(xReal-wall) < -1e-9 {
		t.Errorf("expected (x_ghost-wall) = -(x_real-wall), got %v and %v", xGhost-wall, xReal-wall)
	}
	if gs[0].Vel.C[0] != -1.5 {
		t.Errorf("no-slip should negate entire velocity, got %v", gs[0].Vel.C[0])
	}
}

func TestMorrisReflectionFreeSlipOnlyNormalComponent(t *testing.T) {
	cfg := boundary.Configuration{
		Dim:          2,
		Types:        [3]boundary.Type{boundary.MirrorType, boundary.None},
		EnableLower:  [3]bool{true},
		RangeMin:     [3]float64{0, 0},
		RangeMax:     [3]float64{1, 1},
		SpacingLower: [3]float64{0.1},
		MirrorKind:   [3]boundary.MirrorKind{boundary.FreeSlip},
	}
	var m Manager
	m.Initialize(cfg)
	m.SetKernelSupportRadius(0.2)
	real := []particle.Particle{particle.NewReal(0, vecmath.New(2, 0.02, 0.5, 0), vecmath.New(2, 1.5, 2.0, 0), 1.0)}
	m.Generate(real)
	gs := m.GhostParticles()
	if len(gs) != 1 {
		t.Fatalf("expected one mirror ghost, got %d", len(gs))
	}
	if gs[0].Vel.C[0] != -1.5 {
		t.Errorf("free-slip should negate normal component, got %v", gs[0].Vel.C[0])
	}
	if gs[0].Vel.C[1] != 2.0 {
		t.Errorf("free-slip should preserve tangential component, got %v", gs[0].Vel.C[1])
	}
}

func TestCornerGhostNotDuplicatedForSingleBoundary(t *testing.T) {
	cfg := periodicConfigFull2D()
	var m Manager
	m.Initialize(cfg)
	m.SetKernelSupportRadius(0.05)
	// Close to left edge only, far from top/bottom.
	real := []particle.Particle{particle.NewReal(0, vecmath.New(2, 0.01, 0.5, 0), vecmath.Zero(2), 1.0)}
	m.Generate(real)
	if len(m.GhostParticles()) != 1 {
		t.Errorf("particle close to exactly one boundary should produce exactly one ghost (no corners), got %d", len(m.GhostParticles()))
	}
}

func TestCornerGhostGeneratedNearCorner(t *testing.T) {
	cfg := periodicConfigFull2D()
	var m Manager
	m.Initialize(cfg)
	m.SetKernelSupportRadius(0.05)
	// Close to both left and bottom edges -> should produce 2 edge ghosts + 1 corner ghost = 3.
	real := []particle.Particle{particle.NewReal(0, vecmath.New(2, 0.01, 0.01, 0), vecmath.Zero(2), 1.0)}
	m.Generate(real)
	if len(m.GhostParticles()) != 3 {
		t.Errorf("particle near a 2D corner should produce 2 edge ghosts + 1 corner ghost = 3, got %d", len(m.GhostParticles()))
	}
}

func periodicConfigFull2D() boundary.Configuration {
	return boundary.Configuration{
		Dim:      2,
		Types:    [3]boundary.Type{boundary.PeriodicType, boundary.PeriodicType},
		RangeMin: [3]float64{0, 0},
		RangeMax: [3]float64{1, 1},
	}
}

func TestRegenerationDeterminism(t *testing.T) {
	cfg := periodicConfigFull2D()
	var m1, m2 Manager
	m1.Initialize(cfg)
	m1.SetKernelSupportRadius(0.1)
	m2.Initialize(cfg)
	m2.SetKernelSupportRadius(0.1)

	real := []particle.Particle{
		particle.NewReal(0, vecmath.New(2, 0.02, 0.5, 0), vecmath.Zero(2), 1.0),
		particle.NewReal(1, vecmath.New(2, 0.5, 0.02, 0), vecmath.Zero(2), 1.0),
	}
	if err := m1.Regenerate(real); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	// Reorder an immaterial field (id tag) and regenerate again.
	reordered := []particle.Particle{real[1], real[0]}
	reordered[0].ID, reordered[1].ID = 100, 101
	if err := m2.Regenerate(reordered); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	pos1 := positionSet(m1.GhostParticles())
	pos2 := positionSet(m2.GhostParticles())
	if len(pos1) != len(pos2) {
		t.Fatalf("ghost counts differ after reordering source ids: %d vs %d", len(pos1), len(pos2))
	}
	for p := range pos1 {
		if _, ok := pos2[p]; !ok {
			t.Errorf("ghost position %v missing after id-tag reorder", p)
		}
	}
}

type posKey [2]float64

func positionSet(gs []particle.Particle) map[posKey]bool {
	out := map[posKey]bool{}
	for _, g := range gs {
		out[posKey{math.Round(g.Pos.C[0] * 1e9), math.Round(g.Pos.C[1] * 1e9)}] = true
	}
	return out
}

func TestRefreshPropertiesDoesNotMovePositions(t *testing.T) {
	cfg := boundary.Configuration{
		Dim:      1,
		Types:    [3]boundary.Type{boundary.PeriodicType},
		RangeMin: [3]float64{0},
		RangeMax: [3]float64{1},
	}
	var m Manager
	m.Initialize(cfg)
	m.SetKernelSupportRadius(0.1)
	real := []particle.Particle{particle.NewReal(0, vecmath.New(1, 0.02, 0, 0), vecmath.Zero(1), 1.0)}
	m.Regenerate(real)
	before := m.GhostParticles()[0].Pos

	real[0].Dens = 77
	m.RefreshProperties(real)
	after := m.GhostParticles()

	if after[0].Pos.C[0] != before.C[0] {
		t.Errorf("RefreshProperties must not move ghost positions")
	}
	if after[0].Dens != 77 {
		t.Errorf("RefreshProperties should copy updated density, got %v", after[0].Dens)
	}
}

func TestSetKernelSupportRadiusRejectsNonPositive(t *testing.T) {
	var m Manager
	if err := m.SetKernelSupportRadius(0); err == nil {
		t.Errorf("expected ConfigurationError for non-positive kernel support radius")
	}
}

func TestMirrorWithoutSpacingRejected(t *testing.T) {
	cfg := boundary.Configuration{
		Dim:         1,
		Types:       [3]boundary.Type{boundary.MirrorType},
		EnableLower: [3]bool{true},
		RangeMin:    [3]float64{0},
		RangeMax:    [3]float64{1},
	}
	var m Manager
	if err := m.Initialize(cfg); err == nil {
		t.Errorf("expected ConfigurationError for mirror boundary with no spacing")
	}
}
