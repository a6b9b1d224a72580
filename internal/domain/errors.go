package domain

import "errors"

// Structural errors raised while building a Region.
var (
	ErrForeignNode     = errors.New("node belongs to another region")
	ErrForeignEdge     = errors.New("edge belongs to another region")
	ErrMissingEndpoint = errors.New("edge endpoint is not part of the region")
	ErrDescendingEdge  = errors.New("edge locations must be in ascending order")
	ErrInvalidEdge     = errors.New("invalid edge")
)

// Order validation errors.
var (
	ErrInvalidOrder = errors.New("invalid order")
)
