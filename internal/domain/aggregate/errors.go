package aggregate

import "errors"

// Sentinel error kinds for aggregation.
var (
	ErrConstantMetric = errors.New("metric is constant across categories")
	ErrUnknownPolicy  = errors.New("unknown constant metric policy")
	ErrNonFinite      = errors.New("metric mean is not a finite number")
)
