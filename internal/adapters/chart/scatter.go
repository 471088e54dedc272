package chart

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/okian/kpiboard/internal/domain/model"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const hotspotRadius = vg.Length(4)

var shapeKeyColor = color.Gray{Y: 90}

// scatterSpec describes one quality-vs-cost chart.
type scatterSpec struct {
	name  string
	title string
	x     model.Metric
	other model.Metric
}

var scatterSpecs = map[model.Metric]scatterSpec{
	model.ElectricityWh: {
		name:  NameQualityEnergy,
		title: "Quality vs Energy by Model and Question Category",
		x:     model.ElectricityWh,
		other: model.CO2g,
	},
	model.CO2g: {
		name:  NameQualityCarbon,
		title: "Quality vs Carbon Emission by Category",
		x:     model.CO2g,
		other: model.ElectricityWh,
	},
}

// QualityScatter plots Rating against x (Electricity_Wh or CO2_g), one point
// per observation. Colour encodes Model_Category and glyph shape encodes
// Question_Category. Every point gets a hotspot carrying the model name, the
// other cost metric and Inference_s.
func (r *Renderer) QualityScatter(obs []model.Observation, x model.Metric) (Figure, error) {
	spec, ok := scatterSpecs[x]
	if !ok {
		return Figure{}, fmt.Errorf("%w: scatter on %s", ErrRender, x)
	}
	if len(obs) == 0 {
		return Figure{}, noData(spec.name)
	}

	modelCats := distinct(obs, func(o model.Observation) string { return o.ModelCategory })
	questionCats := distinct(obs, func(o model.Observation) string { return o.QuestionCategory })
	shapeOf := make(map[string]draw.GlyphDrawer, len(questionCats))
	for i, qc := range questionCats {
		shapeOf[qc] = plotutil.Shape(i)
	}

	p := newPlot(spec.title)
	p.X.Label.Text = x.String()
	p.Y.Label.Text = model.Rating.String()
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	points := make([]dataPoint, 0, len(obs))
	for i, mc := range modelCats {
		var xys plotter.XYs
		var shapes []draw.GlyphDrawer
		for _, o := range obs {
			if o.ModelCategory != mc {
				continue
			}
			xys = append(xys, plotter.XY{X: x.Value(o), Y: o.Rating})
			shapes = append(shapes, shapeOf[o.QuestionCategory])
			points = append(points, dataPoint{x: x.Value(o), y: o.Rating, text: tooltip(o, spec)})
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return Figure{}, wrap(spec.name, err)
		}
		s.GlyphStyle = draw.GlyphStyle{Color: plotutil.Color(i), Radius: hotspotRadius, Shape: draw.CircleGlyph{}}
		base := s.GlyphStyle
		s.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			g := base
			g.Shape = shapes[j]
			return g
		}
		p.Add(s)
		p.Legend.Add(mc, s)
	}

	for _, qc := range questionCats {
		key, err := plotter.NewScatter(plotter.XYs{})
		if err != nil {
			return Figure{}, wrap(spec.name, err)
		}
		key.GlyphStyle = draw.GlyphStyle{Color: shapeKeyColor, Radius: hotspotRadius, Shape: shapeOf[qc]}
		p.Legend.Add(qc, key)
	}

	return r.encode(spec.name, p, r.width, r.height, points)
}

func tooltip(o model.Observation, spec scatterSpec) string {
	return fmt.Sprintf("%s (%s, %s)\n%s: %g\n%s: %g\n%s: %g\n%s: %g",
		o.Model, o.ModelCategory, o.QuestionCategory,
		spec.x, spec.x.Value(o),
		model.Rating, o.Rating,
		spec.other, spec.other.Value(o),
		model.InferenceSeconds, o.InferenceSeconds,
	)
}

func distinct(obs []model.Observation, key func(model.Observation) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range obs {
		k := key(o)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
