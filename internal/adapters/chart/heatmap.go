package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/okian/kpiboard/internal/domain/aggregate"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

const (
	heatmapTitle   = "Average Rating by Model and Question Category"
	heatmapPalette = "YlGnBu"
	heatmapShades  = 9
)

var heatmapEmpty = color.Gray{Y: 235}

// pivotGrid adapts a Pivot to plotter.GridXYZ. Columns run along X and rows
// along Y; empty cells are NaN.
type pivotGrid struct {
	p aggregate.Pivot
}

func (g pivotGrid) Dims() (c, r int) { return len(g.p.Columns), len(g.p.Rows) }
func (g pivotGrid) X(c int) float64  { return float64(c) }
func (g pivotGrid) Y(r int) float64  { return float64(r) }

func (g pivotGrid) Z(c, r int) float64 {
	if v, ok := g.p.At(r, c); ok {
		return v
	}
	return math.NaN()
}

// Heatmap draws the pivot as a colour grid annotated with two-decimal means.
// Empty cells are painted neutral and left unlabeled.
func (r *Renderer) Heatmap(pivot aggregate.Pivot) (Figure, error) {
	if len(pivot.Rows) == 0 || len(pivot.Columns) == 0 {
		return Figure{}, noData(NameHeatmap)
	}

	pal, err := brewer.GetPalette(brewer.TypeSequential, heatmapPalette, heatmapShades)
	if err != nil {
		return Figure{}, wrap(NameHeatmap, err)
	}

	grid := pivotGrid{p: pivot}
	h := plotter.NewHeatMap(grid, pal)
	h.NaN = heatmapEmpty
	switch {
	case math.IsInf(h.Min, 0) || math.IsInf(h.Max, 0):
		// Every cell is empty.
		h.Min, h.Max = 0, 1
	case h.Min == h.Max:
		h.Min, h.Max = h.Min-0.5, h.Max+0.5
	}

	var points plotter.XYs
	var texts []string
	for row := range pivot.Rows {
		for col := range pivot.Columns {
			v, ok := pivot.At(row, col)
			if !ok {
				continue
			}
			points = append(points, plotter.XY{X: float64(col), Y: float64(row)})
			texts = append(texts, annotate(v))
		}
	}

	p := newPlot(heatmapTitle)
	p.X.Label.Text = "Question_Category"
	p.Y.Label.Text = "Model_Category"
	p.Add(h)

	if len(points) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: texts})
		if err != nil {
			return Figure{}, wrap(NameHeatmap, err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
			labels.TextStyle[i].Color = color.Black
		}
		p.Add(labels)
	}

	p.NominalX(pivot.Columns...)
	p.NominalY(pivot.Rows...)

	return r.encode(NameHeatmap, p, r.width, r.height, nil)
}

// HeatmapCellText returns the annotation for every non-empty cell, keyed by
// "row/column".
func HeatmapCellText(pivot aggregate.Pivot) map[string]string {
	out := make(map[string]string)
	for row, rl := range pivot.Rows {
		for col, cl := range pivot.Columns {
			if v, ok := pivot.At(row, col); ok {
				out[rl+"/"+cl] = annotate(v)
			}
		}
	}
	return out
}

func annotate(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
