// Package params holds the immutable SPHParameters configuration value and
// the typed fluent builder that constructs it. The builder chain mirrors
// the source project's SPHParametersBuilderBase -> AlgorithmParametersBuilder
// split: common fields are set on a base builder, then a transition method
// (AsSSPH/AsDISPH/AsGSPH) moves to an algorithm-specific builder type. SSPH
// and DISPH expose WithArtificialViscosity and refuse to Build without it;
// GSPH's builder type has no such method at all, so supplying viscosity for
// GSPH is a compile error, not a runtime one — the "main compile-time safety
// net" the design notes call out.
package params

import "github.com/pthm-cable/sph-core/simerr"

// Variant is the closed set of SPH formulations.
type Variant int

const (
	SSPH Variant = iota
	DISPH
	GSPH
)

func (v Variant) String() string {
	switch v {
	case SSPH:
		return "ssph"
	case DISPH:
		return "disph"
	case GSPH:
		return "gsph"
	default:
		return "unknown"
	}
}

// KernelKind is the closed set of supported smoothing kernels.
type KernelKind int

const (
	CubicSplineKernel KernelKind = iota
	WendlandKernel
)

// SmoothingLengthPolicy tags the minimum-h enforcement strategy (§4.6).
type SmoothingLengthPolicy struct {
	Kind           SmoothingPolicyKind
	HMinConstant   float64 // CONSTANT_MIN
	RhoExpectedMax float64 // PHYSICS_BASED
	Alpha          float64 // PHYSICS_BASED, typical 2.0
}

type SmoothingPolicyKind int

const (
	NoMin SmoothingPolicyKind = iota
	ConstantMin
	PhysicsBased
)

// Gravity is the tagged gravity variant: NoGravity carries no payload,
// NewtonianGravity carries G and the opening angle theta.
type Gravity struct {
	Enabled  bool
	Constant float64
	Theta    float64
}

func NoGravity() Gravity { return Gravity{} }

func NewtonianGravity(constant, theta float64) Gravity {
	return Gravity{Enabled: true, Constant: constant, Theta: theta}
}

// ArtificialViscosity holds the Monaghan AV tunables (required for
// SSPH/DISPH).
type ArtificialViscosity struct {
	Alpha               float64
	UseBalsaraSwitch    bool
	UseTimeDependentAV  bool
	AlphaMax            float64
	AlphaMin            float64
	Epsilon             float64
}

// ArtificialConductivity is the optional energy-only dissipation term.
type ArtificialConductivity struct {
	Enabled bool
	Alpha   float64
}

type TimeParams struct {
	Start, End              float64
	OutputInterval          float64
	EnergyOutputInterval    float64
}

type CFLParams struct {
	Sound, Force float64
}

type PhysicsParams struct {
	NeighborNumber int
	Gamma          float64
}

type TreeParams struct {
	MaxLevel        int
	LeafParticleNum int
}

// Parameters is the fully-constructed, immutable simulation configuration
// consumed by the driver. Build only through Base/AlgorithmBuilder below.
type Parameters struct {
	Dimension int

	Time    TimeParams
	Variant Variant
	CFL     CFLParams
	Physics PhysicsParams
	Kernel  KernelKind

	IterativeSml bool

	ArtificialViscosity    ArtificialViscosity
	HasViscosity           bool
	ArtificialConductivity ArtificialConductivity

	Gravity Gravity
	Tree    TreeParams

	SmoothingPolicy SmoothingLengthPolicy

	GSPHSecondOrder bool
}

// Base is the common-field builder, mirroring SPHParametersBuilderBase.
type Base struct {
	p Parameters

	hasTime    bool
	hasCFL     bool
	hasPhysics bool
	hasKernel  bool
}

// NewBase starts a builder for the given spatial dimension (1, 2 or 3).
func NewBase(dim int) *Base {
	return &Base{p: Parameters{
		Dimension: dim,
		Tree:      TreeParams{MaxLevel: 20, LeafParticleNum: 1},
	}}
}

func (b *Base) WithTime(start, end, output, energy float64) *Base {
	if energy < 0 {
		energy = output
	}
	b.p.Time = TimeParams{Start: start, End: end, OutputInterval: output, EnergyOutputInterval: energy}
	b.hasTime = true
	return b
}

func (b *Base) WithCFL(sound, force float64) *Base {
	b.p.CFL = CFLParams{Sound: sound, Force: force}
	b.hasCFL = true
	return b
}

func (b *Base) WithPhysics(neighborNumber int, gamma float64) *Base {
	b.p.Physics = PhysicsParams{NeighborNumber: neighborNumber, Gamma: gamma}
	b.hasPhysics = true
	return b
}

func (b *Base) WithKernel(kind KernelKind) *Base {
	b.p.Kernel = kind
	b.hasKernel = true
	return b
}

func (b *Base) WithGravity(constant, theta float64) *Base {
	b.p.Gravity = NewtonianGravity(constant, theta)
	return b
}

func (b *Base) WithTreeParams(maxLevel, leafParticleNum int) *Base {
	b.p.Tree = TreeParams{MaxLevel: maxLevel, LeafParticleNum: leafParticleNum}
	return b
}

func (b *Base) WithIterativeSmoothingLength(enable bool) *Base {
	b.p.IterativeSml = enable
	return b
}

func (b *Base) WithSmoothingLengthPolicy(policy SmoothingLengthPolicy) *Base {
	b.p.SmoothingPolicy = policy
	return b
}

// IsComplete reports whether every required common field has been set.
func (b *Base) IsComplete() bool {
	return b.hasTime && b.hasCFL && b.hasPhysics && b.hasKernel
}

// MissingParameters names the required common fields not yet set.
func (b *Base) MissingParameters() []string {
	var missing []string
	if !b.hasTime {
		missing = append(missing, "time")
	}
	if !b.hasCFL {
		missing = append(missing, "cfl")
	}
	if !b.hasPhysics {
		missing = append(missing, "physics")
	}
	if !b.hasKernel {
		missing = append(missing, "kernel")
	}
	return missing
}

func (b *Base) validateCommon() error {
	if !b.IsComplete() {
		return simerr.NewConfigurationError("params.base", "missing required parameters: "+joinNames(b.MissingParameters()))
	}
	if b.p.CFL.Sound <= 0 || b.p.CFL.Force <= 0 {
		return simerr.NewConfigurationError("params.cfl", "cfl numbers must be positive")
	}
	if b.p.Physics.Gamma <= 1 {
		return simerr.NewConfigurationError("params.physics.gamma", "gamma must exceed 1")
	}
	if b.p.Dimension < 1 || b.p.Dimension > 3 {
		return simerr.NewConfigurationError("params.dimension", "dimension must be 1, 2 or 3")
	}
	return nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// AsSSPH transitions to the SSPH algorithm builder.
func (b *Base) AsSSPH() *SSPHBuilder {
	p := b.p
	p.Variant = SSPH
	return &SSPHBuilder{base: b, p: p}
}

// AsDISPH transitions to the DISPH algorithm builder.
func (b *Base) AsDISPH() *DISPHBuilder {
	p := b.p
	p.Variant = DISPH
	return &DISPHBuilder{base: b, p: p}
}

// AsGSPH transitions to the GSPH algorithm builder. GSPH has no
// WithArtificialViscosity method: the type forbids it instead of rejecting
// it at runtime.
func (b *Base) AsGSPH() *GSPHBuilder {
	p := b.p
	p.Variant = GSPH
	return &GSPHBuilder{base: b, p: p}
}
