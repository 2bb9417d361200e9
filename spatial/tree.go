// Package spatial implements the Barnes-Hut spatial index: an arena of
// nodes built over the search array, used both for neighbor enumeration
// (kernel interactions) and tree-code gravity with the opening-angle
// approximation.
//
// Leaf membership is stored as a (first, count) pair into a permutation
// array computed at build time, rather than threading an intrusive next
// pointer through particle.Particle — design note (b) in the source
// material, chosen for cache-friendliness. The rebuild protocol (clear,
// validate id==index, (re)build) still applies to the permutation array in
// place of "clear next pointers".
package spatial

import (
	"math"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/particle"
	"github.com/pthm-cable/sph-core/simerr"
	"github.com/pthm-cable/sph-core/vecmath"
)

// nchild returns the number of child orthants for a given dimension: 2, 4,
// or 8.
func nchild(dim int) int {
	switch dim {
	case 1:
		return 2
	case 2:
		return 4
	default:
		return 8
	}
}

// node is one Barnes-Hut tree node, stored in a flat arena. Children are
// referenced by arena index; -1 means absent.
type node struct {
	center  vecmath.Vec // geometric center of the node's box
	mCenter vecmath.Vec // center of mass
	mass    float64
	edge    float64
	level   int
	hMaxNode float64

	isLeaf bool
	childs [8]int // only [0:nchild) meaningful

	// Leaf membership: a span into perm.
	first int
	count int
}

// Tree is a Barnes-Hut tree built over a particle.Particle slice (the
// search array S). It does not own S; callers must keep S stable for the
// tree's lifetime (invariant S3).
type Tree struct {
	Dim             int
	MaxLevel        int
	LeafParticleNum int

	nodes   []node
	perm    []int // permutation array; leaves reference contiguous spans
	root    int
	periodic *boundary.Periodic

	particles []particle.Particle // the array the tree was built against
}

// New creates an empty tree for the given dimension and tree parameters.
func New(dim, maxLevel, leafParticleNum int) *Tree {
	return &Tree{Dim: dim, MaxLevel: maxLevel, LeafParticleNum: leafParticleNum, root: -1}
}

// SetPeriodic attaches the periodic wrapper used by tree-gravity's minimum
// image distance. Pass nil to disable.
func (t *Tree) SetPeriodic(p *boundary.Periodic) {
	t.periodic = p
}

// Make (re)builds the tree over s. Per §4.3's rebuild protocol the caller
// (simcache.Coordinator) is responsible for having already validated
// invariant P2 (id == index) on s before calling Make; Make itself performs
// a defensive check and returns an InvariantViolation if it is violated.
func (t *Tree) Make(s []particle.Particle) error {
	t.particles = s
	t.nodes = t.nodes[:0]
	t.perm = t.perm[:0]
	t.root = -1

	if len(s) == 0 {
		return nil
	}

	for i, p := range s {
		if p.ID != i {
			return simerr.NewInvariantViolation("P2", "search array id does not equal index at build time")
		}
		t.perm = append(t.perm, i)
	}

	center, edge := boundingCube(s, t.Dim)
	t.root = t.newNode(center, edge, 0)
	t.buildRange(t.root, 0, len(t.perm))
	t.computeMassAndHMax(t.root)
	return nil
}

func (t *Tree) newNode(center vecmath.Vec, edge float64, level int) int {
	n := node{center: center, edge: edge, level: level, first: -1}
	for i := range n.childs {
		n.childs[i] = -1
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// boundingCube computes a cube (or square/segment) bounding box enclosing
// every particle's position, expanded slightly to avoid boundary ties.
func boundingCube(s []particle.Particle, dim int) (vecmath.Vec, float64) {
	minC := s[0].Pos
	maxC := s[0].Pos
	for _, p := range s[1:] {
		for d := 0; d < dim; d++ {
			if p.Pos.C[d] < minC.C[d] {
				minC.C[d] = p.Pos.C[d]
			}
			if p.Pos.C[d] > maxC.C[d] {
				maxC.C[d] = p.Pos.C[d]
			}
		}
	}
	center := vecmath.Vec{Dim: dim}
	edge := 0.0
	for d := 0; d < dim; d++ {
		center.C[d] = 0.5 * (minC.C[d] + maxC.C[d])
		if span := maxC.C[d] - minC.C[d]; span > edge {
			edge = span
		}
	}
	if edge <= 0 {
		edge = 1.0
	}
	edge *= 1.001
	return center, edge
}

// childOrthant picks a child index (0..nchild) for pos relative to center,
// by sign of each coordinate's offset.
func childOrthant(dim int, center, pos vecmath.Vec) int {
	idx := 0
	for d := 0; d < dim; d++ {
		if pos.C[d] >= center.C[d] {
			idx |= 1 << uint(d)
		}
	}
	return idx
}

func childCenter(dim int, center vecmath.Vec, edge float64, orthant int) vecmath.Vec {
	c := vecmath.Vec{Dim: dim}
	quarter := edge / 4
	for d := 0; d < dim; d++ {
		if orthant&(1<<uint(d)) != 0 {
			c.C[d] = center.C[d] + quarter
		} else {
			c.C[d] = center.C[d] - quarter
		}
	}
	return c
}

// buildRange recursively partitions perm[lo:hi) under node nIdx.
func (t *Tree) buildRange(nIdx int, lo, hi int) {
	n := &t.nodes[nIdx]
	count := hi - lo
	if count <= t.LeafParticleNum || n.level >= t.MaxLevel {
		n.isLeaf = true
		n.first = lo
		n.count = count
		return
	}

	nc := nchild(t.Dim)
	buckets := make([][]int, nc)
	for i := lo; i < hi; i++ {
		idx := t.perm[i]
		o := childOrthant(t.Dim, n.center, t.particles[idx].Pos)
		buckets[o] = append(buckets[o], idx)
	}

	// Degenerate case: every particle landed in the same bucket (coincident
	// positions) and we're already at max depth worth of subdivision —
	// treat as a leaf to avoid infinite recursion (spec §4.3 failure mode:
	// "share a leaf of >L particles, warn do not crash").
	nonEmpty := 0
	for _, b := range buckets {
		if len(b) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty <= 1 && n.level >= t.MaxLevel-1 {
		n.isLeaf = true
		n.first = lo
		n.count = count
		return
	}

	cursor := lo
	for o := 0; o < nc; o++ {
		b := buckets[o]
		for _, idx := range b {
			t.perm[cursor] = idx
			cursor++
		}
	}

	cursor = lo
	for o := 0; o < nc; o++ {
		b := buckets[o]
		if len(b) == 0 {
			continue
		}
		childIdx := t.newNode(childCenter(t.Dim, n.center, n.edge, o), n.edge/2, n.level+1)
		t.nodes[nIdx].childs[o] = childIdx
		t.buildRange(childIdx, cursor, cursor+len(b))
		cursor += len(b)
	}
}

// computeMassAndHMax performs the post-order pass computing total mass,
// center of mass and h_max_node for nIdx and its subtree.
func (t *Tree) computeMassAndHMax(nIdx int) {
	n := &t.nodes[nIdx]
	if n.isLeaf {
		mass := 0.0
		com := vecmath.Vec{Dim: t.Dim}
		hMax := 0.0
		for i := n.first; i < n.first+n.count; i++ {
			p := &t.particles[t.perm[i]]
			mass += p.Mass
			com = com.Add(p.Pos.Scale(p.Mass))
			if p.Sml > hMax {
				hMax = p.Sml
			}
		}
		if mass > 0 {
			com = com.Scale(1 / mass)
		}
		n.mass = mass
		n.mCenter = com
		n.hMaxNode = hMax
		return
	}

	mass := 0.0
	com := vecmath.Vec{Dim: t.Dim}
	hMax := 0.0
	for _, c := range n.childs {
		if c < 0 {
			continue
		}
		t.computeMassAndHMax(c)
		cn := &t.nodes[c]
		mass += cn.mass
		com = com.Add(cn.mCenter.Scale(cn.mass))
		if cn.hMaxNode > hMax {
			hMax = cn.hMaxNode
		}
	}
	if mass > 0 {
		com = com.Scale(1 / mass)
	}
	n.mass = mass
	n.mCenter = com
	n.hMaxNode = hMax
}

func (t *Tree) delta(a, b vecmath.Vec) vecmath.Vec {
	if t.periodic != nil {
		return t.periodic.MinimumImage(a, b)
	}
	return a.Sub(b)
}

func (t *Tree) dist(a, b vecmath.Vec) float64 {
	return t.delta(a, b).Norm()
}

// NeighborSearch finds indices into the search array within the search
// radius of probe particle at index pi. isIJ selects the ij-symmetric mode,
// using max(h_i, h_j-candidate-node) so a pair is found from either side.
// out is a preallocated buffer; when it fills, the overflow is truncated and
// ok is false (a non-fatal NumericalWarning condition, per §4.3/§7).
func (t *Tree) NeighborSearch(pi int, supportFactor float64, isIJ bool, out []int) (result []int, ok bool) {
	result = out[:0]
	ok = true
	if t.root < 0 {
		return result, ok
	}
	probe := &t.particles[pi]
	cap := len(out)

	var walk func(nIdx int)
	walk = func(nIdx int) {
		if !ok {
			return
		}
		n := &t.nodes[nIdx]
		hMax := probe.Sml
		if isIJ && n.hMaxNode > hMax {
			hMax = n.hMaxNode
		}
		rSearch := supportFactor * hMax
		// Conservative box-distance prune: if the node's bounding sphere
		// (center +- edge*sqrt(Dim)/2) cannot reach within rSearch, skip.
		boxReach := n.edge*math.Sqrt(float64(t.Dim))/2 + rSearch
		if t.dist(probe.Pos, n.center) > boxReach {
			return
		}
		if n.isLeaf {
			for i := n.first; i < n.first+n.count; i++ {
				j := t.perm[i]
				if j == pi {
					continue
				}
				cand := &t.particles[j]
				r := supportFactor * math.Max(probe.Sml, cand.Sml)
				if !isIJ {
					r = supportFactor * probe.Sml
				}
				if t.dist(probe.Pos, cand.Pos) <= r {
					if len(result) >= cap {
						ok = false
						return
					}
					result = append(result, j)
				}
			}
			return
		}
		for _, c := range n.childs {
			if c < 0 {
				continue
			}
			walk(c)
			if !ok {
				return
			}
		}
	}
	walk(t.root)
	return result, ok
}

// TreeForce performs the tree-code gravity walk for the probe particle at
// index pi: if node_edge/distance < theta the node is treated as a point
// mass at its center of mass; otherwise the walk descends. Plummer softening
// uses epsilon = probe's smoothing length. Returns acceleration and
// potential contribution.
func (t *Tree) TreeForce(pi int, gConstant, theta float64) (acc vecmath.Vec, phi float64) {
	acc = vecmath.Vec{Dim: t.Dim}
	if t.root < 0 {
		return acc, 0
	}
	probe := &t.particles[pi]
	eps := probe.Sml
	if eps <= 0 {
		eps = 1e-6
	}

	var walk func(nIdx int)
	walk = func(nIdx int) {
		n := &t.nodes[nIdx]
		if n.mass <= 0 {
			return
		}
		d := t.delta(probe.Pos, n.mCenter)
		r := d.Norm()
		if n.isLeaf || (r > 0 && n.edge/r < theta) {
			if n.isLeaf {
				for i := n.first; i < n.first+n.count; i++ {
					j := t.perm[i]
					if j == pi {
						continue
					}
					src := &t.particles[j]
					dd := t.delta(probe.Pos, src.Pos)
					rr := math.Sqrt(dd.Norm2() + eps*eps)
					acc = acc.Sub(dd.Scale(gConstant * src.Mass / (rr * rr * rr)))
					phi -= gConstant * src.Mass / rr
				}
				return
			}
			rr := math.Sqrt(r*r + eps*eps)
			acc = acc.Sub(d.Scale(gConstant * n.mass / (rr * rr * rr)))
			phi -= gConstant * n.mass / rr
			return
		}
		for _, c := range n.childs {
			if c < 0 {
				continue
			}
			walk(c)
		}
	}
	walk(t.root)
	return acc, phi
}

// Size returns the number of particles the tree was built against.
func (t *Tree) Size() int {
	return len(t.particles)
}
