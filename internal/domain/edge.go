package domain

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Edge is an undirected road between two nodes of a Region.
// LocationA <= LocationB always holds.
type Edge struct {
	region   RegionID
	name     string
	a        Location
	b        Location
	duration int64
}

func NewEdge(owner RegionID, name string, a, b Location, duration int64) (*Edge, error) {
	if a.Compare(b) > 0 {
		return nil, fmt.Errorf("new edge %q: %s > %s: %w", name, a, b, ErrDescendingEdge)
	}
	if duration < 0 {
		return nil, fmt.Errorf("new edge %q: negative duration %d: %w", name, duration, ErrInvalidEdge)
	}

	return &Edge{
		region:   owner,
		name:     name,
		a:        a,
		b:        b,
		duration: duration,
	}, nil
}

func (e *Edge) Region() RegionID    { return e.region }
func (e *Edge) Name() string        { return e.name }
func (e *Edge) LocationA() Location { return e.a }
func (e *Edge) LocationB() Location { return e.b }

// Duration is the traversal cost in ticks.
func (e *Edge) Duration() int64 { return e.duration }

func (e *Edge) Key() ComponentKey { return ComponentKey{A: e.a, B: e.b, Edge: true} }

// Connects reports whether loc is one of the endpoints.
func (e *Edge) Connects(loc Location) bool { return e.a == loc || e.b == loc }

// Opposite returns the endpoint across from loc. Self loops return loc.
func (e *Edge) Opposite(loc Location) Location {
	if e.a == loc {
		return e.b
	}
	return e.a
}

// Compare orders edges by (LocationA, LocationB).
func (e *Edge) Compare(o *Edge) int {
	if c := e.a.Compare(o.a); c != 0 {
		return c
	}
	return e.b.Compare(o.b)
}

func (e *Edge) Equal(o *Edge) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	return e.name == o.name && e.a == o.a && e.b == o.b && e.duration == o.duration
}

func (e *Edge) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(e.name)
	_, _ = d.WriteString("@" + e.a.String() + e.b.String())
	_, _ = d.WriteString("#" + strconv.FormatInt(e.duration, 10))
	return d.Sum64()
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge(name=%q, locationA=%s, locationB=%s, duration=%d)", e.name, e.a, e.b, e.duration)
}
