package params

import "testing"

func TestSSPHRequiresViscosity(t *testing.T) {
	b := NewBase(1).WithTime(0, 0.2, 0.01, -1).WithCFL(0.3, 0.25).WithPhysics(4, 1.4).WithKernel(CubicSplineKernel)
	_, err := b.AsSSPH().Build()
	if err == nil {
		t.Fatalf("expected error building SSPH params without viscosity")
	}
}

func TestSSPHBuildsWithViscosity(t *testing.T) {
	b := NewBase(1).WithTime(0, 0.2, 0.01, -1).WithCFL(0.3, 0.25).WithPhysics(4, 1.4).WithKernel(CubicSplineKernel)
	p, err := b.AsSSPH().WithArtificialViscosity(1.0, true, false, 2.0, 0.1, 0.2).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Variant != SSPH || !p.HasViscosity {
		t.Errorf("expected SSPH variant with viscosity set, got %+v", p)
	}
}

func TestGSPHBuildsWithoutViscosityField(t *testing.T) {
	b := NewBase(2).WithTime(0, 1, 0.1, -1).WithCFL(0.3, 0.25).WithPhysics(8, 5.0/3.0).WithKernel(WendlandKernel)
	p, err := b.AsGSPH().WithSecondOrder(true).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Variant != GSPH || p.HasViscosity {
		t.Errorf("expected GSPH variant with no viscosity, got %+v", p)
	}
}

func TestMissingCommonFieldsRejected(t *testing.T) {
	b := NewBase(1).WithTime(0, 0.2, 0.01, -1)
	_, err := b.AsSSPH().WithArtificialViscosity(1.0, true, false, 2.0, 0.1, 0.2).Build()
	if err == nil {
		t.Fatalf("expected error for missing cfl/physics/kernel")
	}
}

func TestEnergyIntervalDefaultsToOutput(t *testing.T) {
	b := NewBase(1).WithTime(0, 1, 0.05, -1)
	if b.p.Time.EnergyOutputInterval != 0.05 {
		t.Errorf("energy interval should default to output interval, got %v", b.p.Time.EnergyOutputInterval)
	}
}
