package fractional

import "errors"

// Domain errors for fractional derivative computation. All of them are
// fatal for the operation that returned them; none are retried internally.
var (
	// ErrInvalidConfig indicates a solver configuration that fails validation.
	ErrInvalidConfig = errors.New("fractional: invalid solver configuration")

	// ErrSizeMismatch indicates an input vector whose length does not match
	// the solver's grid point count.
	ErrSizeMismatch = errors.New("fractional: input length does not match point count")

	// ErrRankMismatch indicates a history state updated with a kernel of a
	// different rank.
	ErrRankMismatch = errors.New("fractional: history rank does not match kernel rank")

	// ErrPointRange indicates a grid point index outside [0, numPoints).
	ErrPointRange = errors.New("fractional: point index out of range")

	// ErrGammaDomain indicates a fractional order for which the closed-form
	// kernel's gamma ratio is not finite.
	ErrGammaDomain = errors.New("fractional: gamma ratio not finite for given order")

	// ErrStateTooLarge indicates a history allocation request beyond the
	// supported size.
	ErrStateTooLarge = errors.New("fractional: history state exceeds supported size")
)
