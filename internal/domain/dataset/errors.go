package dataset

import "errors"

// Sentinel error kinds for dataset loading.
var (
	ErrOpen          = errors.New("open dataset failed")
	ErrEmptyInput    = errors.New("dataset has no header")
	ErrMissingColumn = errors.New("dataset missing required columns")
	ErrMalformedRow  = errors.New("malformed dataset row")
)
