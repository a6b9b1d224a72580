package domain

import (
	"cmp"
	"fmt"
)

// Immutable integer coordinate on the region plane.
// Locations are ordered lexicographically by X, then Y.
type Location struct {
	X int
	Y int
}

// Compare returns -1, 0 or +1 following the canonical location order.
func (l Location) Compare(o Location) int {
	if c := cmp.Compare(l.X, o.X); c != 0 {
		return c
	}
	return cmp.Compare(l.Y, o.Y)
}

func (l Location) Less(o Location) bool { return l.Compare(o) < 0 }

func (l Location) String() string { return fmt.Sprintf("(%d,%d)", l.X, l.Y) }
