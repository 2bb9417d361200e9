package viscosity

import (
	"testing"

	"github.com/pthm-cable/sph-core/vecmath"
)

func approaching() State {
	return State{
		VelI:   vecmath.New(1, -1.0, 0, 0),
		VelJ:   vecmath.New(1, 1.0, 0, 0),
		SoundI: 1.0, SoundJ: 1.0,
		DensI: 1.0, DensJ: 1.0,
		AlphaI: 1.0, AlphaJ: 1.0,
		BalsaraI: 1.0, BalsaraJ: 1.0,
		RIJ: vecmath.New(1, 1.0, 0, 0),
		R:   1.0,
	}
}

func TestMonaghanZeroForRecedingParticles(t *testing.T) {
	s := approaching()
	s.VelI, s.VelJ = s.VelJ, s.VelI // now receding: vr >= 0
	m := Monaghan{}
	if pi := m.Compute(s); pi != 0 {
		t.Errorf("expected zero viscosity for receding particles, got %v", pi)
	}
}

func TestMonaghanPositiveForApproachingParticles(t *testing.T) {
	m := Monaghan{}
	pi := m.Compute(approaching())
	if pi <= 0 {
		t.Errorf("expected strictly positive (repulsive, dissipative) pi_ij for approaching particles, got %v", pi)
	}
}

func TestMonaghanBalsaraSwitchReducesShearViscosity(t *testing.T) {
	s := approaching()
	s.BalsaraI, s.BalsaraJ = 0.1, 0.1
	withSwitch := Monaghan{UseBalsaraSwitch: true}.Compute(s)
	without := Monaghan{UseBalsaraSwitch: false}.Compute(s)
	if withSwitch <= 0 || without <= 0 {
		t.Fatalf("both should remain dissipative (positive), got with=%v without=%v", withSwitch, without)
	}
	if withSwitch >= without {
		t.Errorf("Balsara switch should reduce magnitude of viscosity in shear-dominated flow: with=%v without=%v", withSwitch, without)
	}
}

func TestMonaghanNameReflectsBalsaraConfiguration(t *testing.T) {
	if (Monaghan{UseBalsaraSwitch: true}).Name() == (Monaghan{UseBalsaraSwitch: false}).Name() {
		t.Errorf("expected distinct names for the two configurations")
	}
}
