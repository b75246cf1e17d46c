package forces

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/quantasim/internal/particle"
)

// leafSize is the most bodies a leaf holds before it is split.
const leafSize = 7

type body struct {
	pos  r2.Vec
	mass float64
}

// node is a kd-tree cell. Leaves cover order[start:end]; inner nodes
// carry the total mass and centre of mass of everything below them.
type node struct {
	start, end  int
	leaf        bool
	mass        float64
	com         r2.Vec
	size        float64
	left, right int
}

// tree approximates pairwise gravity with a Barnes-Hut kd-tree built from
// the positions at the start of the step.
type tree struct {
	on     bool
	bodies []body
	index  []int // particle index -> body index, -1 when excluded
	order  []int
	slot   []int // body index -> position in order
	nodes  []node
	stack  []int
}

func newTree() *tree {
	return &tree{}
}

func (t *tree) active() bool { return t.on }

func (t *tree) disable() {
	t.on = false
}

func (t *tree) rebuild(ps []particle.Particle) {
	t.bodies = t.bodies[:0]
	t.order = t.order[:0]
	t.nodes = t.nodes[:0]
	if cap(t.index) < len(ps) {
		t.index = make([]int, len(ps))
	}
	t.index = t.index[:len(ps)]

	for i := range ps {
		p := &ps[i]
		if p.Mass <= 0 || !p.Finite() {
			t.index[i] = -1
			continue
		}
		t.index[i] = len(t.bodies)
		t.order = append(t.order, len(t.bodies))
		t.bodies = append(t.bodies, body{pos: r2.Vec{X: p.X, Y: p.Y}, mass: p.Mass})
	}
	if len(t.bodies) == 0 {
		t.on = false
		return
	}
	t.build(0, len(t.order))
	if cap(t.slot) < len(t.order) {
		t.slot = make([]int, len(t.order))
	}
	t.slot = t.slot[:len(t.order)]
	for k, b := range t.order {
		t.slot[b] = k
	}
	t.on = true
}

// build appends the subtree over order[start:end] and returns its index.
func (t *tree) build(start, end int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{start: start, end: end})

	lo := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	var mass float64
	var moment r2.Vec
	for _, b := range t.order[start:end] {
		bd := &t.bodies[b]
		mass += bd.mass
		moment = r2.Add(moment, r2.Scale(bd.mass, bd.pos))
		lo.X, lo.Y = math.Min(lo.X, bd.pos.X), math.Min(lo.Y, bd.pos.Y)
		hi.X, hi.Y = math.Max(hi.X, bd.pos.X), math.Max(hi.Y, bd.pos.Y)
	}
	extent := r2.Sub(hi, lo)

	n := node{
		start: start,
		end:   end,
		mass:  mass,
		com:   r2.Scale(1/mass, moment),
		size:  math.Max(extent.X, extent.Y),
	}
	if end-start <= leafSize {
		n.leaf = true
		t.nodes[idx] = n
		return idx
	}

	span := t.order[start:end]
	if extent.X >= extent.Y {
		sort.Slice(span, func(i, j int) bool { return t.bodies[span[i]].pos.X < t.bodies[span[j]].pos.X })
	} else {
		sort.Slice(span, func(i, j int) bool { return t.bodies[span[i]].pos.Y < t.bodies[span[j]].pos.Y })
	}
	mid := start + (end-start)/2
	n.left = t.build(start, mid)
	n.right = t.build(mid, end)
	t.nodes[idx] = n
	return idx
}

// forceOn walks the tree for particle i. Cells that do not contain i and
// whose size is below theta times their distance act as a single mass at
// their centre of mass.
func (t *tree) forceOn(i int, theta float64) (fx, fy float64) {
	if i >= len(t.index) || t.index[i] < 0 {
		return 0, 0
	}
	self := t.index[i]
	at := t.slot[self]
	p := t.bodies[self]

	var f r2.Vec
	t.stack = append(t.stack[:0], 0)
	for len(t.stack) > 0 {
		k := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		n := &t.nodes[k]

		if n.leaf {
			for _, b := range t.order[n.start:n.end] {
				if b == self {
					continue
				}
				f = r2.Add(f, pull(p.pos, t.bodies[b].pos, p.mass, t.bodies[b].mass))
			}
			continue
		}

		d := r2.Sub(n.com, p.pos)
		inside := at >= n.start && at < n.end
		if !inside && n.size*n.size < theta*theta*r2.Norm2(d) {
			f = r2.Add(f, pull(p.pos, n.com, p.mass, n.mass))
			continue
		}
		t.stack = append(t.stack, n.right, n.left)
	}
	return f.X, f.Y
}

// pull is Gravity between point masses at from and to, directed at to.
func pull(from, to r2.Vec, m1, m2 float64) r2.Vec {
	v := r2.Sub(to, from)
	d := r2.Norm(v)
	if d < DistanceFloor {
		return r2.Vec{}
	}
	f := G * m1 * m2 / (d * d)
	return r2.Scale(f/d, v)
}
