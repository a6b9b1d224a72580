package domain

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// NodeKind tags the variant a Node carries.
type NodeKind int

const (
	KindPlain NodeKind = iota
	KindRestaurant
	KindNeighborhood
)

func (k NodeKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindRestaurant:
		return "restaurant"
	case KindNeighborhood:
		return "neighborhood"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is a vertex of a Region.
// The region is referenced by id only; adjacency is resolved through the Region.
type Node struct {
	region      RegionID
	name        string
	location    Location
	connections []Location
	kind        NodeKind
	food        []string
}

// NewNode creates a plain node owned by the given region.
func NewNode(owner RegionID, name string, location Location, connections ...Location) *Node {
	return newNode(owner, KindPlain, name, location, nil, connections)
}

// NewRestaurant creates a restaurant node serving the given food.
func NewRestaurant(owner RegionID, name string, location Location, food []string, connections ...Location) *Node {
	return newNode(owner, KindRestaurant, name, location, food, connections)
}

// NewNeighborhood creates a neighborhood node (a delivery destination).
func NewNeighborhood(owner RegionID, name string, location Location, connections ...Location) *Node {
	return newNode(owner, KindNeighborhood, name, location, nil, connections)
}

func newNode(owner RegionID, kind NodeKind, name string, location Location, food []string, connections []Location) *Node {
	conns := slices.Clone(connections)
	slices.SortFunc(conns, Location.Compare)
	conns = slices.Compact(conns)

	return &Node{
		region:      owner,
		name:        name,
		location:    location,
		connections: conns,
		kind:        kind,
		food:        slices.Clone(food),
	}
}

func (n *Node) Region() RegionID     { return n.region }
func (n *Node) Name() string         { return n.name }
func (n *Node) Location() Location   { return n.location }
func (n *Node) Kind() NodeKind       { return n.kind }
func (n *Node) IsRestaurant() bool   { return n.kind == KindRestaurant }
func (n *Node) IsNeighborhood() bool { return n.kind == KindNeighborhood }

// Connections returns the sorted locations this node has an edge to.
func (n *Node) Connections() []Location { return slices.Clone(n.connections) }

// AvailableFood is empty for every kind except restaurants.
func (n *Node) AvailableFood() []string { return slices.Clone(n.food) }

func (n *Node) Key() ComponentKey { return ComponentKey{A: n.location, B: n.location} }

// Compare orders nodes by location.
func (n *Node) Compare(o *Node) int { return n.location.Compare(o.location) }

// Equal compares name, location and connection set.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	return n.name == o.name &&
		n.location == o.location &&
		slices.Equal(n.connections, o.connections)
}

// Hash is consistent with Equal.
func (n *Node) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(n.name)
	_, _ = d.WriteString("@" + n.location.String())
	for _, c := range n.connections {
		_, _ = d.WriteString(">" + c.String())
	}
	return d.Sum64()
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(name=%q, location=%s, kind=%s, connections=%v)", n.name, n.location, n.kind, n.connections)
}
