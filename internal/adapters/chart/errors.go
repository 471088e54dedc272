package chart

import "errors"

// Sentinel error kinds for chart rendering.
var (
	ErrRender = errors.New("render chart")
	ErrNoData = errors.New("no data to plot")
)
