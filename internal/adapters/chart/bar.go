package chart

import (
	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/internal/domain/model"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	barTitle = "Average Electricity and Carbon Emission by Question Category"
	barWidth = vg.Length(18)
)

// GroupedBar draws long-form rows as side-by-side bars, grouped by category
// with one colored series per metric.
func (r *Renderer) GroupedBar(rows []aggregate.LongRow) (Figure, error) {
	if len(rows) == 0 {
		return Figure{}, noData(NameBar)
	}

	var categories []string
	var metrics []model.Metric
	catIdx := make(map[string]int)
	series := make(map[model.Metric]plotter.Values)
	for _, row := range rows {
		if _, ok := catIdx[row.Category]; !ok {
			catIdx[row.Category] = len(categories)
			categories = append(categories, row.Category)
		}
		if _, ok := series[row.Metric]; !ok {
			metrics = append(metrics, row.Metric)
			series[row.Metric] = nil
		}
	}
	for _, m := range metrics {
		series[m] = make(plotter.Values, len(categories))
	}
	for _, row := range rows {
		series[row.Metric][catIdx[row.Category]] = row.Average
	}

	p := newPlot(barTitle)
	p.Y.Label.Text = "Average"
	p.X.Label.Text = "Question_Category"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, m := range metrics {
		bars, err := plotter.NewBarChart(series[m], barWidth)
		if err != nil {
			return Figure{}, wrap(NameBar, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = barWidth * vg.Length(2*i-len(metrics)+1) / 2
		p.Add(bars)
		p.Legend.Add(m.String(), bars)
	}
	p.NominalX(categories...)

	return r.encode(NameBar, p, r.width, r.height, nil)
}
