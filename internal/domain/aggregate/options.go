package aggregate

import "fmt"

// ConstantPolicy decides how Normalize treats a metric whose category means are all equal.
type ConstantPolicy int

const (
	// ConstantMidpoint maps every category to 0.5 on that metric.
	ConstantMidpoint ConstantPolicy = iota
	// ConstantError makes Normalize fail with ErrConstantMetric.
	ConstantError
)

// ParsePolicy maps the config spelling to a ConstantPolicy.
func ParsePolicy(s string) (ConstantPolicy, error) {
	switch s {
	case "", "midpoint":
		return ConstantMidpoint, nil
	case "error":
		return ConstantError, nil
	default:
		return ConstantMidpoint, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p ConstantPolicy) String() string {
	if p == ConstantError {
		return "error"
	}
	return "midpoint"
}

type normalizeOptions struct {
	policy ConstantPolicy
}

// Option applies a configuration option to Normalize.
type Option func(*normalizeOptions)

// WithConstantPolicy selects the behaviour for constant metrics.
func WithConstantPolicy(p ConstantPolicy) Option {
	return func(o *normalizeOptions) {
		o.policy = p
	}
}
