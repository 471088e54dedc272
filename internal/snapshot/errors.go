package snapshot

import "errors"

// Error constants. Every failure returned by Export wraps exactly one stage sentinel.
var (
	ErrConfig   = errors.New("invalid snapshot configuration")
	ErrLaunch   = errors.New("browser launch failed")
	ErrNavigate = errors.New("dashboard navigation failed")
	ErrCapture  = errors.New("page capture failed")
	ErrWrite    = errors.New("artifact write failed")
)
