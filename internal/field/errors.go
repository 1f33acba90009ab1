package field

import "errors"

// Errors returned by field construction and access. Usage errors (index,
// size, alpha range) make no partial-mutation guarantee; callers should
// discard the field after one.
var (
	// ErrInvalidConfig indicates a grid configuration that fails validation.
	ErrInvalidConfig = errors.New("field: invalid configuration")

	// ErrCFLViolation indicates dt > 0.5·min(dx,dy,dz). This is a
	// correctness guard for the explicit wave update, never tolerated.
	ErrCFLViolation = errors.New("field: CFL stability condition violated")

	// ErrIndexRange indicates a grid index outside the grid.
	ErrIndexRange = errors.New("field: grid index out of bounds")

	// ErrSizeMismatch indicates an input vector shorter or longer than the
	// grid's point count.
	ErrSizeMismatch = errors.New("field: input length does not match grid size")

	// ErrAlphaRange indicates a fractional order outside the configured
	// [alpha_min, alpha_max] range.
	ErrAlphaRange = errors.New("field: alpha outside configured range")

	// ErrGridTooLarge indicates a grid whose arrays exceed the supported
	// allocation size.
	ErrGridTooLarge = errors.New("field: grid exceeds supported size")

	// ErrExport indicates a diagnostic export failure.
	ErrExport = errors.New("field: export failed")
)
