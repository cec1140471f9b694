package reconcile

import "errors"

// Sentinel errors for engine operations.
var (
	ErrPerspectiveResolved = errors.New("record perspective already resolved")
	ErrInvalidTieBreak     = errors.New("tie-break role must be pickup or delivery")
	ErrInvalidThreshold    = errors.New("review threshold must be within [0, 1]")
)
