package params

import "github.com/pthm-cable/sph-core/simerr"

// SSPHBuilder builds parameters for Standard SPH. SSPH requires artificial
// viscosity for shock capturing and stability; Build refuses without it.
type SSPHBuilder struct {
	base         *Base
	p            Parameters
	hasViscosity bool
}

func (s *SSPHBuilder) WithArtificialViscosity(alpha float64, useBalsaraSwitch, useTimeDependentAV bool, alphaMax, alphaMin, epsilon float64) *SSPHBuilder {
	s.p.ArtificialViscosity = ArtificialViscosity{
		Alpha:              alpha,
		UseBalsaraSwitch:   useBalsaraSwitch,
		UseTimeDependentAV: useTimeDependentAV,
		AlphaMax:           alphaMax,
		AlphaMin:           alphaMin,
		Epsilon:            epsilon,
	}
	s.p.HasViscosity = true
	s.hasViscosity = true
	return s
}

func (s *SSPHBuilder) WithArtificialConductivity(alpha float64) *SSPHBuilder {
	s.p.ArtificialConductivity = ArtificialConductivity{Enabled: true, Alpha: alpha}
	return s
}

func (s *SSPHBuilder) IsComplete() bool {
	return s.base.IsComplete() && s.hasViscosity
}

func (s *SSPHBuilder) Build() (*Parameters, error) {
	if err := s.base.validateCommon(); err != nil {
		return nil, err
	}
	if !s.hasViscosity {
		return nil, simerr.NewConfigurationError("params.ssph.viscosity", "SSPH requires WithArtificialViscosity")
	}
	p := s.p
	return &p, nil
}

// DISPHBuilder builds parameters for the density-independent pressure-
// entropy formulation. DISPH also requires artificial viscosity.
type DISPHBuilder struct {
	base         *Base
	p            Parameters
	hasViscosity bool
}

func (d *DISPHBuilder) WithArtificialViscosity(alpha float64, useBalsaraSwitch, useTimeDependentAV bool, alphaMax, alphaMin, epsilon float64) *DISPHBuilder {
	d.p.ArtificialViscosity = ArtificialViscosity{
		Alpha:              alpha,
		UseBalsaraSwitch:   useBalsaraSwitch,
		UseTimeDependentAV: useTimeDependentAV,
		AlphaMax:           alphaMax,
		AlphaMin:           alphaMin,
		Epsilon:            epsilon,
	}
	d.p.HasViscosity = true
	d.hasViscosity = true
	return d
}

func (d *DISPHBuilder) WithArtificialConductivity(alpha float64) *DISPHBuilder {
	d.p.ArtificialConductivity = ArtificialConductivity{Enabled: true, Alpha: alpha}
	return d
}

func (d *DISPHBuilder) IsComplete() bool {
	return d.base.IsComplete() && d.hasViscosity
}

func (d *DISPHBuilder) Build() (*Parameters, error) {
	if err := d.base.validateCommon(); err != nil {
		return nil, err
	}
	if !d.hasViscosity {
		return nil, simerr.NewConfigurationError("params.disph.viscosity", "DISPH requires WithArtificialViscosity")
	}
	p := d.p
	return &p, nil
}

// GSPHBuilder builds parameters for Godunov SPH. GSPH replaces artificial
// viscosity with a Riemann-solved interface state, so this type deliberately
// exposes no WithArtificialViscosity method — forbidding it is a property of
// the type, not a runtime check.
type GSPHBuilder struct {
	base *Base
	p    Parameters
}

func (g *GSPHBuilder) WithSecondOrder(enable bool) *GSPHBuilder {
	g.p.GSPHSecondOrder = enable
	return g
}

func (g *GSPHBuilder) IsComplete() bool {
	return g.base.IsComplete()
}

func (g *GSPHBuilder) Build() (*Parameters, error) {
	if err := g.base.validateCommon(); err != nil {
		return nil, err
	}
	p := g.p
	return &p, nil
}
