package chart

import (
	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/internal/domain/model"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	latencyTitle = "Latency Distribution per Model Category"
	boxWidth     = vg.Length(36)
)

// LatencyBox draws one box per category from its Inference_s distribution.
func (r *Renderer) LatencyBox(dists []aggregate.Distribution) (Figure, error) {
	if len(dists) == 0 {
		return Figure{}, noData(NameLatency)
	}

	p := newPlot(latencyTitle)
	p.X.Label.Text = "Model_Category"
	p.Y.Label.Text = model.InferenceSeconds.String()
	p.Add(plotter.NewGrid())

	names := make([]string, len(dists))
	for i, d := range dists {
		box, err := plotter.NewBoxPlot(boxWidth, float64(i), plotter.Values(d.Values))
		if err != nil {
			return Figure{}, wrap(NameLatency, err)
		}
		box.FillColor = translucent(plotutil.Color(i), 160)
		p.Add(box)
		names[i] = d.Category
	}
	p.NominalX(names...)

	return r.encode(NameLatency, p, r.width, r.height, nil)
}
