package domain

import "fmt"

// ComponentKey identifies a node or an edge inside a Region.
// Nodes use A == B with Edge unset, so a self-loop edge and its node never collide.
type ComponentKey struct {
	A    Location
	B    Location
	Edge bool
}

func (k ComponentKey) String() string {
	if k.Edge {
		return fmt.Sprintf("edge%s-%s", k.A, k.B)
	}
	return "node" + k.A.String()
}

// Component is a graph element a vehicle can occupy: a *Node or an *Edge.
type Component interface {
	Key() ComponentKey
	Region() RegionID
	Name() string
}

var (
	_ Component = (*Node)(nil)
	_ Component = (*Edge)(nil)
)
