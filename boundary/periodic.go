package boundary

import "github.com/pthm-cable/sph-core/vecmath"

// Periodic holds the domain extents used for minimum-image distance and
// position wrapping. Neighbor discovery goes through ghosts; Periodic wraps a
// real particle's position back into the domain after predict, and its
// MinimumImage gives the pair separation in the pre-interaction and force
// stages (and in spatial.Tree once SetPeriodic is called).
type Periodic struct {
	Dim      int
	Active   [3]bool
	RangeMin [3]float64
	RangeMax [3]float64
}

// NewPeriodic builds a Periodic wrapper from a boundary configuration,
// marking each PERIODIC dimension active.
func NewPeriodic(cfg *Configuration) *Periodic {
	p := &Periodic{Dim: cfg.Dim, RangeMin: cfg.RangeMin, RangeMax: cfg.RangeMax}
	for d := 0; d < cfg.Dim; d++ {
		p.Active[d] = cfg.Types[d] == PeriodicType
	}
	return p
}

func (p *Periodic) rangeOf(d int) float64 {
	return p.RangeMax[d] - p.RangeMin[d]
}

// MinimumImage returns ri - rj shifted by +-range[d] per active dimension so
// each active component lies in (-range[d]/2, range[d]/2]. Inactive
// dimensions are left as the plain difference.
func (p *Periodic) MinimumImage(ri, rj vecmath.Vec) vecmath.Vec {
	out := vecmath.Vec{Dim: ri.Dim}
	for d := 0; d < ri.Dim; d++ {
		diff := ri.C[d] - rj.C[d]
		if p.Active[d] {
			rng := p.rangeOf(d)
			half := rng / 2
			for diff > half {
				diff -= rng
			}
			for diff <= -half {
				diff += rng
			}
		}
		out.C[d] = diff
	}
	return out
}

// Wrap shifts a position by +-range[d] per active dimension so it lies in
// [range_min[d], range_max[d]).
func (p *Periodic) Wrap(pos vecmath.Vec) vecmath.Vec {
	out := pos
	for d := 0; d < pos.Dim; d++ {
		if !p.Active[d] {
			continue
		}
		rng := p.rangeOf(d)
		for out.C[d] < p.RangeMin[d] {
			out.C[d] += rng
		}
		for out.C[d] >= p.RangeMax[d] {
			out.C[d] -= rng
		}
	}
	return out
}
