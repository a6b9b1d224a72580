package domain

import (
	"errors"
	"fmt"
)

type nodeSpec struct {
	kind NodeKind
	name string
	loc  Location
	food []string
}

type edgeSpec struct {
	name     string
	a, b     Location
	duration int64
}

// Builder assembles a Region from node and edge declarations.
// Node connections are derived from the declared edges, and edge endpoints
// may be given in any order.
type Builder struct {
	nodes []nodeSpec
	edges []edgeSpec
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddNode(name string, loc Location) *Builder {
	b.nodes = append(b.nodes, nodeSpec{kind: KindPlain, name: name, loc: loc})
	return b
}

func (b *Builder) AddRestaurant(name string, loc Location, food ...string) *Builder {
	b.nodes = append(b.nodes, nodeSpec{kind: KindRestaurant, name: name, loc: loc, food: food})
	return b
}

func (b *Builder) AddNeighborhood(name string, loc Location) *Builder {
	b.nodes = append(b.nodes, nodeSpec{kind: KindNeighborhood, name: name, loc: loc})
	return b
}

func (b *Builder) AddEdge(name string, from, to Location, duration int64) *Builder {
	if from.Compare(to) > 0 {
		from, to = to, from
	}
	b.edges = append(b.edges, edgeSpec{name: name, a: from, b: to, duration: duration})
	return b
}

// Build creates the Region. Every edge endpoint must be declared as a node.
func (b *Builder) Build() (*Region, error) {
	r := NewRegion()

	conns := make(map[Location][]Location)
	for _, e := range b.edges {
		conns[e.a] = append(conns[e.a], e.b)
		conns[e.b] = append(conns[e.b], e.a)
	}

	var errs []error
	for _, s := range b.nodes {
		var n *Node
		switch s.kind {
		case KindRestaurant:
			n = NewRestaurant(r.id, s.name, s.loc, s.food, conns[s.loc]...)
		case KindNeighborhood:
			n = NewNeighborhood(r.id, s.name, s.loc, conns[s.loc]...)
		default:
			n = NewNode(r.id, s.name, s.loc, conns[s.loc]...)
		}
		if err := r.PutNode(n); err != nil {
			errs = append(errs, err)
		}
	}

	for _, s := range b.edges {
		e, err := NewEdge(r.id, s.name, s.a, s.b, s.duration)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.PutEdge(e); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("build region: %w", err)
	}

	return r, nil
}
