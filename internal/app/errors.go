package service

import "errors"

// Sentinel error kinds for the dashboard service.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrUnknownFigure = errors.New("unknown figure")
	ErrBuild         = errors.New("build dashboard")
)
