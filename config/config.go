// Package config loads the YAML run configuration and turns it into the
// immutable params.Parameters / boundary.Configuration values the rest of
// the engine consumes. The YAML shape mirrors the builder chain in
// package params field-for-field; ToParameters replays it so every
// validation the builder performs (missing fields, GSPH's viscosity-free
// type) still runs on a loaded file, not just on hand-built Go code.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/simerr"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// RunConfig is the on-disk configuration: everything needed to build
// params.Parameters plus the optional domain boundary and output paths.
type RunConfig struct {
	Dimension int    `yaml:"dimension"`
	Variant   string `yaml:"variant"` // "ssph", "disph", "gsph"

	Time    TimeConfig    `yaml:"time"`
	CFL     CFLConfig     `yaml:"cfl"`
	Physics PhysicsConfig `yaml:"physics"`
	Kernel  string        `yaml:"kernel"` // "cubic_spline", "wendland"

	IterativeSmoothingLength bool `yaml:"iterative_smoothing_length"`

	ArtificialViscosity    *ViscosityConfig    `yaml:"artificial_viscosity"`
	ArtificialConductivity *ConductivityConfig `yaml:"artificial_conductivity"`
	GSPHSecondOrder        bool                `yaml:"gsph_second_order"`

	Gravity *GravityConfig `yaml:"gravity"`
	Tree    TreeConfig     `yaml:"tree"`

	SmoothingPolicy SmoothingPolicyConfig `yaml:"smoothing_policy"`

	Boundary *BoundaryConfig `yaml:"boundary"`
	Output   OutputConfig    `yaml:"output"`
}

type TimeConfig struct {
	Start                float64 `yaml:"start"`
	End                  float64 `yaml:"end"`
	OutputInterval       float64 `yaml:"output_interval"`
	EnergyOutputInterval float64 `yaml:"energy_output_interval"`
}

type CFLConfig struct {
	Sound float64 `yaml:"sound"`
	Force float64 `yaml:"force"`
}

type PhysicsConfig struct {
	NeighborNumber int     `yaml:"neighbor_number"`
	Gamma          float64 `yaml:"gamma"`
}

type ViscosityConfig struct {
	Alpha              float64 `yaml:"alpha"`
	UseBalsaraSwitch   bool    `yaml:"use_balsara_switch"`
	UseTimeDependentAV bool    `yaml:"use_time_dependent_av"`
	AlphaMax           float64 `yaml:"alpha_max"`
	AlphaMin           float64 `yaml:"alpha_min"`
	Epsilon            float64 `yaml:"epsilon"`
}

type ConductivityConfig struct {
	Alpha float64 `yaml:"alpha"`
}

type GravityConfig struct {
	Constant float64 `yaml:"constant"`
	Theta    float64 `yaml:"theta"`
}

type TreeConfig struct {
	MaxLevel        int `yaml:"max_level"`
	LeafParticleNum int `yaml:"leaf_particle_num"`
}

type SmoothingPolicyConfig struct {
	Kind           string  `yaml:"kind"` // "none", "constant", "physics_based"
	HMinConstant   float64 `yaml:"h_min_constant"`
	RhoExpectedMax float64 `yaml:"rho_expected_max"`
	Alpha          float64 `yaml:"alpha"`
}

type BoundaryConfig struct {
	Types        [3]string  `yaml:"types"` // "none", "periodic", "mirror"
	EnableLower  [3]bool    `yaml:"enable_lower"`
	EnableUpper  [3]bool    `yaml:"enable_upper"`
	RangeMin     [3]float64 `yaml:"range_min"`
	RangeMax     [3]float64 `yaml:"range_max"`
	SpacingLower [3]float64 `yaml:"spacing_lower"`
	SpacingUpper [3]float64 `yaml:"spacing_upper"`
	MirrorKind   [3]string  `yaml:"mirror_kind"` // "no_slip", "free_slip"
}

type OutputConfig struct {
	Directory  string `yaml:"directory"`
	Prefix     string `yaml:"prefix"`
	EnergyFile string `yaml:"energy_file"`
}

// global holds the loaded configuration, set by Init.
var global *RunConfig

// Init loads configuration from path (embedded defaults if path == "") and
// stores it for Cfg. Must be called before Cfg.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the globally loaded configuration. Panics if Init was not
// called.
func Cfg() *RunConfig {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load reads a YAML file on top of the embedded defaults. An empty path
// returns the defaults unmodified.
func Load(path string) (*RunConfig, error) {
	cfg := &RunConfig{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// WriteTo dumps cfg back out as YAML, for run-provenance snapshots
// alongside a scenario's output files.
func WriteTo(path string, cfg *RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func kernelKind(name string) (params.KernelKind, error) {
	switch name {
	case "cubic_spline", "":
		return params.CubicSplineKernel, nil
	case "wendland":
		return params.WendlandKernel, nil
	default:
		return 0, simerr.NewConfigurationError("kernel", "unknown kernel "+name)
	}
}

func smoothingPolicyKind(name string) (params.SmoothingPolicyKind, error) {
	switch name {
	case "none", "":
		return params.NoMin, nil
	case "constant":
		return params.ConstantMin, nil
	case "physics_based":
		return params.PhysicsBased, nil
	default:
		return 0, simerr.NewConfigurationError("smoothing_policy.kind", "unknown policy "+name)
	}
}

func boundaryType(name string) (boundary.Type, error) {
	switch name {
	case "none", "":
		return boundary.None, nil
	case "periodic":
		return boundary.PeriodicType, nil
	case "mirror":
		return boundary.MirrorType, nil
	default:
		return 0, simerr.NewConfigurationError("boundary.types", "unknown boundary type "+name)
	}
}

func mirrorKind(name string) (boundary.MirrorKind, error) {
	switch name {
	case "no_slip", "":
		return boundary.NoSlip, nil
	case "free_slip":
		return boundary.FreeSlip, nil
	default:
		return 0, simerr.NewConfigurationError("boundary.mirror_kind", "unknown mirror kind "+name)
	}
}

// ToBoundary converts the optional boundary section into a
// boundary.Configuration, or nil if the section is absent.
func (c *RunConfig) ToBoundary() (*boundary.Configuration, error) {
	if c.Boundary == nil {
		return nil, nil
	}
	bc := &boundary.Configuration{
		Dim:          c.Dimension,
		EnableLower:  c.Boundary.EnableLower,
		EnableUpper:  c.Boundary.EnableUpper,
		RangeMin:     c.Boundary.RangeMin,
		RangeMax:     c.Boundary.RangeMax,
		SpacingLower: c.Boundary.SpacingLower,
		SpacingUpper: c.Boundary.SpacingUpper,
	}
	for d := 0; d < 3; d++ {
		t, err := boundaryType(c.Boundary.Types[d])
		if err != nil {
			return nil, err
		}
		bc.Types[d] = t
		m, err := mirrorKind(c.Boundary.MirrorKind[d])
		if err != nil {
			return nil, err
		}
		bc.MirrorKind[d] = m
	}
	return bc, nil
}

// ToParameters replays the loaded config through the params builder chain,
// so the same validation a hand-built Base/AlgorithmBuilder call gets
// (required fields, GSPH's missing WithArtificialViscosity method) applies
// to a loaded file too.
func (c *RunConfig) ToParameters() (*params.Parameters, error) {
	kernel, err := kernelKind(c.Kernel)
	if err != nil {
		return nil, err
	}
	policyKind, err := smoothingPolicyKind(c.SmoothingPolicy.Kind)
	if err != nil {
		return nil, err
	}

	base := params.NewBase(c.Dimension).
		WithTime(c.Time.Start, c.Time.End, c.Time.OutputInterval, c.Time.EnergyOutputInterval).
		WithCFL(c.CFL.Sound, c.CFL.Force).
		WithPhysics(c.Physics.NeighborNumber, c.Physics.Gamma).
		WithKernel(kernel).
		WithIterativeSmoothingLength(c.IterativeSmoothingLength).
		WithSmoothingLengthPolicy(params.SmoothingLengthPolicy{
			Kind:           policyKind,
			HMinConstant:   c.SmoothingPolicy.HMinConstant,
			RhoExpectedMax: c.SmoothingPolicy.RhoExpectedMax,
			Alpha:          c.SmoothingPolicy.Alpha,
		}).
		WithTreeParams(c.Tree.MaxLevel, c.Tree.LeafParticleNum)

	if c.Gravity != nil {
		base = base.WithGravity(c.Gravity.Constant, c.Gravity.Theta)
	}

	switch c.Variant {
	case "ssph", "":
		b := base.AsSSPH()
		if c.ArtificialViscosity == nil {
			return nil, simerr.NewConfigurationError("artificial_viscosity", "ssph requires artificial_viscosity")
		}
		v := c.ArtificialViscosity
		b = b.WithArtificialViscosity(v.Alpha, v.UseBalsaraSwitch, v.UseTimeDependentAV, v.AlphaMax, v.AlphaMin, v.Epsilon)
		if c.ArtificialConductivity != nil {
			b = b.WithArtificialConductivity(c.ArtificialConductivity.Alpha)
		}
		return b.Build()
	case "disph":
		b := base.AsDISPH()
		if c.ArtificialViscosity == nil {
			return nil, simerr.NewConfigurationError("artificial_viscosity", "disph requires artificial_viscosity")
		}
		v := c.ArtificialViscosity
		b = b.WithArtificialViscosity(v.Alpha, v.UseBalsaraSwitch, v.UseTimeDependentAV, v.AlphaMax, v.AlphaMin, v.Epsilon)
		if c.ArtificialConductivity != nil {
			b = b.WithArtificialConductivity(c.ArtificialConductivity.Alpha)
		}
		return b.Build()
	case "gsph":
		b := base.AsGSPH().WithSecondOrder(c.GSPHSecondOrder)
		return b.Build()
	default:
		return nil, simerr.NewConfigurationError("variant", "unknown variant "+c.Variant)
	}
}
