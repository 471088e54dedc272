package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNotFound         = errors.New("not found")
	ErrTemplate         = errors.New("render dashboard template")
	ErrEncode           = errors.New("encode response")
)
