// Package boundary holds the domain extents, the per-dimension boundary
// configuration and the periodic-distance wrapper. Neighbor discovery at
// boundaries goes through the ghost package; Periodic wraps real positions
// back into the domain and, where a stage is given one, supplies the
// minimum-image pair separation (see SPEC_FULL.md §12).
package boundary

import "github.com/pthm-cable/sph-core/simerr"

// Type is the per-dimension boundary kind.
type Type uint8

const (
	None Type = iota
	PeriodicType
	MirrorType
)

func (t Type) String() string {
	switch t {
	case PeriodicType:
		return "periodic"
	case MirrorType:
		return "mirror"
	default:
		return "none"
	}
}

// MirrorKind distinguishes reflective velocity handling at a mirror wall.
type MirrorKind uint8

const (
	NoSlip MirrorKind = iota
	FreeSlip
)

func (m MirrorKind) String() string {
	if m == FreeSlip {
		return "free_slip"
	}
	return "no_slip"
}

// Configuration is the per-dimension boundary setup: type, per-side enable
// flags, domain extents, per-side mirror spacing and slip kind.
type Configuration struct {
	Dim int

	Types [3]Type

	EnableLower [3]bool
	EnableUpper [3]bool

	RangeMin [3]float64
	RangeMax [3]float64

	SpacingLower [3]float64
	SpacingUpper [3]float64

	MirrorKind [3]MirrorKind
}

// Range returns range_max[d] - range_min[d].
func (c *Configuration) Range(d int) float64 {
	return c.RangeMax[d] - c.RangeMin[d]
}

// HasPeriodic reports whether any active dimension uses PERIODIC.
func (c *Configuration) HasPeriodic() bool {
	for d := 0; d < c.Dim; d++ {
		if c.Types[d] == PeriodicType {
			return true
		}
	}
	return false
}

// HasMirror reports whether any active dimension uses MIRROR.
func (c *Configuration) HasMirror() bool {
	for d := 0; d < c.Dim; d++ {
		if c.Types[d] == MirrorType {
			return true
		}
	}
	return false
}

// WallPosition returns the Morris (1997) wall location for dimension d,
// either the lower or upper side: range_min - 0.5*spacing_lower, or
// range_max + 0.5*spacing_upper.
func (c *Configuration) WallPosition(d int, upper bool) float64 {
	if upper {
		return c.RangeMax[d] + 0.5*c.SpacingUpper[d]
	}
	return c.RangeMin[d] - 0.5*c.SpacingLower[d]
}

// Validate returns a ConfigurationError if the configuration is
// self-contradictory: a MIRROR dimension with zero spacing on its enabled
// side, or range_max <= range_min for any active dimension.
func (c *Configuration) Validate() error {
	for d := 0; d < c.Dim; d++ {
		if c.RangeMax[d] <= c.RangeMin[d] {
			return simerr.NewConfigurationError("boundary.range", "range_max must exceed range_min")
		}
		if c.Types[d] != MirrorType {
			continue
		}
		if c.EnableLower[d] && c.SpacingLower[d] <= 0 {
			return simerr.NewConfigurationError("boundary.spacing_lower", "mirror boundary requires positive lower spacing")
		}
		if c.EnableUpper[d] && c.SpacingUpper[d] <= 0 {
			return simerr.NewConfigurationError("boundary.spacing_upper", "mirror boundary requires positive upper spacing")
		}
	}
	return nil
}
