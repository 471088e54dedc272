// Package chart renders the dashboard figures to PNG with gonum/plot.
//
// Every render builds a fresh plot from its arguments and returns an
// independent Figure; the Renderer only carries immutable size settings and
// may be shared between goroutines.
package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure names, also used as URL slugs and metric labels.
const (
	NameRadar         = "radar"
	NameBar           = "bar"
	NameHeatmap       = "heatmap"
	NameQualityEnergy = "quality-energy"
	NameQualityCarbon = "quality-carbon"
	NameLatency       = "latency"
)

// Names lists every figure in dashboard order.
var Names = []string{NameRadar, NameBar, NameHeatmap, NameQualityEnergy, NameQualityCarbon, NameLatency}

// Hotspot is a hoverable circle on a rendered figure, in image pixels with
// the origin at the top-left corner.
type Hotspot struct {
	X, Y, R int
	Text    string
}

// Figure is a rendered chart.
type Figure struct {
	Name     string
	Title    string
	PNG      []byte
	Width    int
	Height   int
	Hotspots []Hotspot
}

// Renderer draws figures at a fixed size and resolution.
type Renderer struct {
	width     int
	height    int
	radarSize int
	dpi       int
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		width:     defaultWidth,
		height:    defaultHeight,
		radarSize: defaultRadarSize,
		dpi:       defaultDPI,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// dataPoint locates one data coordinate that should become a hotspot.
type dataPoint struct {
	x, y float64
	text string
}

// encode draws p onto a white raster canvas of the given pixel size and
// returns the PNG bytes plus pixel hotspots for points.
func (r *Renderer) encode(name string, p *plot.Plot, width, height int, points []dataPoint) (fig Figure, err error) {
	defer func() {
		// gonum/plot reports some invalid ranges by panicking inside Draw.
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrRender, name, rec)
		}
	}()

	w := vg.Length(width) * vg.Inch / vg.Length(r.dpi)
	h := vg.Length(height) * vg.Inch / vg.Length(r.dpi)
	canvas := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(r.dpi),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(canvas)
	p.Draw(dc)

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return Figure{}, fmt.Errorf("%w: %s: %w", ErrRender, name, err)
	}

	fig = Figure{
		Name:   name,
		Title:  p.Title.Text,
		PNG:    buf.Bytes(),
		Width:  width,
		Height: height,
	}
	if len(points) > 0 {
		fig.Hotspots = r.hotspots(p, dc, height, points)
	}
	return fig, nil
}

func (r *Renderer) hotspots(p *plot.Plot, dc draw.Canvas, height int, points []dataPoint) []Hotspot {
	da := p.DataCanvas(dc)
	scale := float64(r.dpi) / float64(vg.Inch)
	radius := max(int(float64(hotspotRadius)*scale+0.5), 1)

	out := make([]Hotspot, 0, len(points))
	for _, pt := range points {
		x := da.X(p.X.Norm(pt.x))
		y := da.Y(p.Y.Norm(pt.y))
		out = append(out, Hotspot{
			X:    int(float64(x)*scale + 0.5),
			Y:    height - int(float64(y)*scale+0.5),
			R:    radius,
			Text: pt.text,
		})
	}
	return out
}

func noData(name string) error {
	return fmt.Errorf("%w: %s: %w", ErrRender, name, ErrNoData)
}

func wrap(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRender, name, err)
}

// translucent returns c with the given alpha.
func translucent(c color.Color, alpha uint8) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = vg.Points(8)
	return p
}
