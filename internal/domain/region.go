package domain

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// RegionID is the owner tag stored on every Node and Edge.
type RegionID uint64

var regionSeq atomic.Uint64

// Region owns the road graph: nodes keyed by location and undirected edges.
// A Region is built once and treated as read-only afterwards.
type Region struct {
	id       RegionID
	nodes    map[Location]*Node
	edges    map[Location]map[Location]*Edge
	allEdges []*Edge
}

func NewRegion() *Region {
	return &Region{
		id:    RegionID(regionSeq.Add(1)),
		nodes: make(map[Location]*Node),
		edges: make(map[Location]map[Location]*Edge),
	}
}

func (r *Region) ID() RegionID { return r.id }

func (r *Region) Node(loc Location) (*Node, bool) {
	n, ok := r.nodes[loc]
	return n, ok
}

// Edge looks up the edge between a and b in either orientation.
func (r *Region) Edge(a, b Location) (*Edge, bool) {
	e, ok := r.edges[a][b]
	return e, ok
}

// Nodes returns the nodes sorted by location.
func (r *Region) Nodes() []*Node {
	out := slices.Collect(maps.Values(r.nodes))
	slices.SortFunc(out, (*Node).Compare)
	return out
}

// Edges returns the edges in canonical order.
func (r *Region) Edges() []*Edge { return slices.Clone(r.allEdges) }

// PutNode inserts n keyed by its location, replacing any node already there.
func (r *Region) PutNode(n *Node) error {
	if n.region != r.id {
		return fmt.Errorf("put node %s: %w", n, ErrForeignNode)
	}

	r.nodes[n.location] = n
	return nil
}

// PutEdge registers e under both endpoints and keeps the edge list sorted.
// An edge already present between the same locations is replaced.
func (r *Region) PutEdge(e *Edge) error {
	if e.region != r.id {
		return fmt.Errorf("put edge %s: %w", e, ErrForeignEdge)
	}

	for _, loc := range []Location{e.a, e.b} {
		n, ok := r.nodes[loc]
		if !ok {
			return fmt.Errorf("put edge %s: node %s: %w", e, loc, ErrMissingEndpoint)
		}
		if n.region != r.id {
			return fmt.Errorf("put edge %s: node %s: %w", e, loc, ErrForeignNode)
		}
	}

	if old, ok := r.edges[e.a][e.b]; ok {
		r.allEdges = slices.DeleteFunc(r.allEdges, func(x *Edge) bool { return x == old })
	}

	r.link(e.a, e.b, e)
	r.link(e.b, e.a, e)

	r.allEdges = append(r.allEdges, e)
	slices.SortStableFunc(r.allEdges, (*Edge).Compare)

	return nil
}

func (r *Region) link(from, to Location, e *Edge) {
	m, ok := r.edges[from]
	if !ok {
		m = make(map[Location]*Edge)
		r.edges[from] = m
	}
	m[to] = e
}

func (r *Region) member(n *Node) bool {
	if n == nil {
		return false
	}
	got, ok := r.nodes[n.location]
	return ok && (got == n || got.Equal(n))
}

// EdgeBetween returns the edge connecting a and b when both are members of r.
func (r *Region) EdgeBetween(a, b *Node) (*Edge, bool) {
	if !r.member(a) || !r.member(b) {
		return nil, false
	}
	return r.Edge(a.location, b.location)
}

// AdjacentEdges returns the edges incident to n in canonical order.
// A self loop is included once.
func (r *Region) AdjacentEdges(n *Node) []*Edge {
	if !r.member(n) {
		return nil
	}

	out := make([]*Edge, 0, len(r.edges[n.location]))
	for _, e := range r.allEdges {
		if e.Connects(n.location) {
			out = append(out, e)
		}
	}
	return out
}

// AdjacentNodes returns the neighbours of n sorted by location.
// A self loop makes n adjacent to itself.
func (r *Region) AdjacentNodes(n *Node) []*Node {
	edges := r.AdjacentEdges(n)
	out := make([]*Node, 0, len(edges))
	for _, e := range edges {
		out = append(out, r.nodes[e.Opposite(n.location)])
	}
	slices.SortFunc(out, (*Node).Compare)
	return slices.Compact(out)
}

// Endpoints resolves the nodes at both ends of e.
func (r *Region) Endpoints(e *Edge) (*Node, *Node, error) {
	a, ok := r.nodes[e.a]
	if !ok {
		return nil, nil, fmt.Errorf("endpoints %s: node %s: %w", e, e.a, ErrMissingEndpoint)
	}
	b, ok := r.nodes[e.b]
	if !ok {
		return nil, nil, fmt.Errorf("endpoints %s: node %s: %w", e, e.b, ErrMissingEndpoint)
	}
	return a, b, nil
}

// Equal compares the node and edge sets structurally.
func (r *Region) Equal(o *Region) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil {
		return false
	}
	if len(r.nodes) != len(o.nodes) || len(r.allEdges) != len(o.allEdges) {
		return false
	}

	for loc, n := range r.nodes {
		if !n.Equal(o.nodes[loc]) {
			return false
		}
	}

	return slices.EqualFunc(r.allEdges, o.allEdges, (*Edge).Equal)
}

// Hash is consistent with Equal.
func (r *Region) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	write := func(h uint64) {
		for i := range buf {
			buf[i] = byte(h >> (8 * i))
		}
		_, _ = d.Write(buf[:])
	}

	for _, n := range r.Nodes() {
		write(n.Hash())
	}
	for _, e := range r.allEdges {
		write(e.Hash())
	}
	return d.Sum64()
}
