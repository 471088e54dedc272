package chart

import (
	"image/color"
	"math"

	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/internal/domain/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	radarTitle      = "KPI Profile per Model Category"
	radarExtent     = 1.3
	radarLabelAt    = 1.15
	radarCircleStep = 72
	radarFillAlpha  = 64
)

var (
	radarRings     = []float64{0.25, 0.5, 0.75, 1}
	radarGridColor = color.Gray{Y: 200}
)

// RadarAngles returns n axis angles in radians, evenly spaced, starting at 0
// (east) and running counter-clockwise.
func RadarAngles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	return out
}

// RadarPolygon maps a KPI vector onto the radar axes. The result is closed:
// its last point repeats the first.
func RadarPolygon(v model.KPIVector) plotter.XYs {
	angles := RadarAngles(len(v))
	out := make(plotter.XYs, len(v)+1)
	for i, a := range angles {
		out[i] = plotter.XY{X: v[i] * math.Cos(a), Y: v[i] * math.Sin(a)}
	}
	out[len(v)] = out[0]
	return out
}

// Radar draws one filled polygon per category over a four-axis grid.
// Values are expected to be normalized into [0,1].
func (r *Renderer) Radar(norm aggregate.CategoryVectors) (Figure, error) {
	if len(norm) == 0 {
		return Figure{}, noData(NameRadar)
	}

	p := newPlot(radarTitle)
	p.HideAxes()
	p.X.Min, p.X.Max = -radarExtent, radarExtent
	p.Y.Min, p.Y.Max = -radarExtent, radarExtent
	p.Legend.Top = true

	if err := addRadarGrid(p.Add); err != nil {
		return Figure{}, wrap(NameRadar, err)
	}

	for i, cv := range norm {
		poly, err := plotter.NewPolygon(RadarPolygon(cv.Values))
		if err != nil {
			return Figure{}, wrap(NameRadar, err)
		}
		c := plotutil.Color(i)
		poly.Color = translucent(c, radarFillAlpha)
		poly.LineStyle.Color = c
		poly.LineStyle.Width = vg.Points(1.5)
		p.Add(poly)
		p.Legend.Add(cv.Category, poly)
	}

	return r.encode(NameRadar, p, r.radarSize, r.radarSize, nil)
}

func addRadarGrid(add func(...plot.Plotter)) error {
	grid := draw.LineStyle{Color: radarGridColor, Width: vg.Points(0.5)}

	for _, radius := range radarRings {
		ring := make(plotter.XYs, radarCircleStep+1)
		for i := range ring {
			a := 2 * math.Pi * float64(i) / radarCircleStep
			ring[i] = plotter.XY{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
		}
		line, err := plotter.NewLine(ring)
		if err != nil {
			return err
		}
		line.LineStyle = grid
		add(line)
	}

	spokes := make([]plotter.XY, 0, model.NumMetrics)
	names := make([]string, 0, model.NumMetrics)
	for i, a := range RadarAngles(model.NumMetrics) {
		line, err := plotter.NewLine(plotter.XYs{{}, {X: math.Cos(a), Y: math.Sin(a)}})
		if err != nil {
			return err
		}
		line.LineStyle = grid
		add(line)
		spokes = append(spokes, plotter.XY{X: radarLabelAt * math.Cos(a), Y: radarLabelAt * math.Sin(a)})
		names = append(names, model.Metrics[i].String())
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: spokes, Labels: names})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	add(labels)
	return nil
}
