package chart

const (
	defaultWidth  = 960
	defaultHeight = 540
	defaultDPI    = 96
	// Radar plots are square so the rings stay circular.
	defaultRadarSize = 640
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the pixel size of rectangular charts.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithRadarSize sets the pixel edge of the square radar chart.
func WithRadarSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.radarSize = size
		}
	}
}

// WithDPI sets the raster resolution.
func WithDPI(dpi int) Option {
	return func(r *Renderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}
