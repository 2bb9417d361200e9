// Package plugin holds the narrow contract initial-condition providers
// satisfy: a pure function returning particle state, algorithm parameters,
// and boundary configuration as plain data. The dynamic-library loading
// machinery that discovers and instantiates providers at runtime is
// deliberately out of scope here — providers are wired in directly by the
// caller (a scenario package or a test), never dlopen'd.
package plugin

import (
	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/simerr"
)

// InitialCondition is the plain-data result a Provider returns: particle
// state, the SPH parameters to run with, and an optional boundary setup.
// It carries no behavior of its own beyond the validity check below, so
// callers can construct it directly in tests without going through a
// Provider at all.
type InitialCondition struct {
	Particles      []particle.Particle
	Parameters     params.Parameters
	BoundaryConfig *boundary.Configuration
}

// Provider is the narrow contract an initial-condition source satisfies.
// Implementations are ordinary Go values (usually built by a scenario
// constructor); there is no registration or discovery step.
type Provider interface {
	CreateInitialCondition() InitialCondition
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func() InitialCondition

func (f ProviderFunc) CreateInitialCondition() InitialCondition { return f() }

// Valid reports whether ic has at least one particle. A zero-value
// Parameters is accepted: parameters are validated by the params
// builders' Build, not here.
func (ic InitialCondition) Valid() error {
	if len(ic.Particles) == 0 {
		return simerr.NewConfigurationError("particles", "initial condition has no particles")
	}
	return nil
}

// ParticleCount returns len(ic.Particles).
func (ic InitialCondition) ParticleCount() int {
	return len(ic.Particles)
}
