package sources

import "errors"

var (
	// ErrInvalidConfig marks a rejected source configuration.
	ErrInvalidConfig = errors.New("invalid source config")

	// ErrExport marks a failed schedule export.
	ErrExport = errors.New("schedule export failed")
)
