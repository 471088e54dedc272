package chart_test

import (
	"bytes"
	"image"
	_ "image/png"
	"math"
	"testing"

	"github.com/okian/kpiboard/internal/adapters/chart"
	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/internal/domain/dataset"
	"github.com/okian/kpiboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture() []model.Observation {
	return []model.Observation{
		{Model: "gpt-4o", ModelCategory: "Large", QuestionID: "Q1", QuestionCategory: "Coding", Rating: 4.5, ElectricityWh: 1.2, CO2g: 0.48, InferenceSeconds: 3.1},
		{Model: "gpt-4o", ModelCategory: "Large", QuestionID: "Q2", QuestionCategory: "Math", Rating: 4.0, ElectricityWh: 1.5, CO2g: 0.6, InferenceSeconds: 3.8},
		{Model: "phi-3", ModelCategory: "Small", QuestionID: "Q1", QuestionCategory: "Coding", Rating: 3.0, ElectricityWh: 0.2, CO2g: 0.08, InferenceSeconds: 0.9},
		{Model: "phi-3", ModelCategory: "Small", QuestionID: "Q3", QuestionCategory: "Coding", Rating: 2.5, ElectricityWh: 0.25, CO2g: 0.1, InferenceSeconds: 1.1},
	}
}

func pngSize(b []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	return cfg.Width, cfg.Height, err
}

func TestRadarGeometry(t *testing.T) {
	Convey("Given four metrics", t, func() {
		angles := chart.RadarAngles(4)

		Convey("Then axes should be a quarter turn apart starting at zero", func() {
			So(angles, ShouldHaveLength, 4)
			So(angles[0], ShouldEqual, 0)
			So(angles[1], ShouldAlmostEqual, math.Pi/2, 1e-12)
			So(angles[2], ShouldAlmostEqual, math.Pi, 1e-12)
			So(angles[3], ShouldAlmostEqual, 3*math.Pi/2, 1e-12)
		})

		Convey("Then a polygon should close on its first point", func() {
			poly := chart.RadarPolygon(model.KPIVector{1, 0.5, 0.25, 0})
			So(poly, ShouldHaveLength, 5)
			So(poly[4], ShouldResemble, poly[0])
			So(poly[0].X, ShouldAlmostEqual, 1, 1e-12)
			So(poly[0].Y, ShouldAlmostEqual, 0, 1e-12)
			So(poly[1].X, ShouldAlmostEqual, 0, 1e-12)
			So(poly[1].Y, ShouldAlmostEqual, 0.5, 1e-12)
			So(poly[2].X, ShouldAlmostEqual, -0.25, 1e-12)
			So(poly[3].Y, ShouldAlmostEqual, 0, 1e-12)
		})
	})
}

func TestRender(t *testing.T) {
	r := chart.NewRenderer(chart.WithSize(800, 450), chart.WithRadarSize(500))
	table := dataset.FromObservations("fixture", fixture())

	Convey("Given the radar chart", t, func() {
		norm, err := aggregate.Normalize(aggregate.KPIMeans(table))
		So(err, ShouldBeNil)
		fig, err := r.Radar(norm)

		Convey("Then it should be a square PNG", func() {
			So(err, ShouldBeNil)
			So(fig.Name, ShouldEqual, chart.NameRadar)
			So(fig.Title, ShouldEqual, "KPI Profile per Model Category")
			w, h, err := pngSize(fig.PNG)
			So(err, ShouldBeNil)
			So(w, ShouldEqual, 500)
			So(h, ShouldEqual, 500)
		})
	})

	Convey("Given the grouped bar chart", t, func() {
		fig, err := r.GroupedBar(aggregate.Melt(aggregate.QuestionCategoryMeans(table)))

		Convey("Then it should render at the configured size", func() {
			So(err, ShouldBeNil)
			w, h, err := pngSize(fig.PNG)
			So(err, ShouldBeNil)
			So(w, ShouldEqual, 800)
			So(h, ShouldEqual, 450)
		})
	})

	Convey("Given a pivot with an empty cell", t, func() {
		pivot := aggregate.CrossPivot(table)
		fig, err := r.Heatmap(pivot)

		Convey("Then it should render and label only non-empty cells", func() {
			So(err, ShouldBeNil)
			So(fig.PNG, ShouldNotBeEmpty)
			text := chart.HeatmapCellText(pivot)
			So(text, ShouldResemble, map[string]string{
				"Large/Coding": "4.50",
				"Large/Math":   "4.00",
				"Small/Coding": "2.75",
			})
		})
	})

	Convey("Given a pivot with a single value", t, func() {
		one := dataset.FromObservations("", fixture()[:1])
		_, err := r.Heatmap(aggregate.CrossPivot(one))

		Convey("Then the colour range should be widened instead of failing", func() {
			So(err, ShouldBeNil)
		})
	})

	Convey("Given the quality scatter charts", t, func() {
		obs := table.Observations()
		energy, err := r.QualityScatter(obs, model.ElectricityWh)
		So(err, ShouldBeNil)
		carbon, err := r.QualityScatter(obs, model.CO2g)
		So(err, ShouldBeNil)

		Convey("Then each should carry one hotspot per observation", func() {
			So(energy.Name, ShouldEqual, chart.NameQualityEnergy)
			So(carbon.Name, ShouldEqual, chart.NameQualityCarbon)
			So(energy.Hotspots, ShouldHaveLength, len(obs))
			So(carbon.Hotspots, ShouldHaveLength, len(obs))
		})

		Convey("Then hotspots should sit inside the image", func() {
			for _, hs := range energy.Hotspots {
				So(hs.X, ShouldBeBetweenOrEqual, 0, energy.Width)
				So(hs.Y, ShouldBeBetweenOrEqual, 0, energy.Height)
				So(hs.R, ShouldBeGreaterThan, 0)
			}
		})

		Convey("Then a higher rating should sit higher on the image", func() {
			// Large/Coding 4.5 is the first point; Small/Coding 2.5 the last.
			first, last := energy.Hotspots[0], energy.Hotspots[len(energy.Hotspots)-1]
			So(first.Y, ShouldBeLessThan, last.Y)
		})

		Convey("Then tooltips should name the model, the other cost and latency", func() {
			tip := energy.Hotspots[0].Text
			So(tip, ShouldContainSubstring, "gpt-4o")
			So(tip, ShouldContainSubstring, "CO2_g: 0.48")
			So(tip, ShouldContainSubstring, "Inference_s: 3.1")
			So(carbon.Hotspots[0].Text, ShouldContainSubstring, "Electricity_Wh: 1.2")
		})
	})

	Convey("Given an unsupported scatter axis", t, func() {
		_, err := r.QualityScatter(fixture(), model.Rating)

		Convey("Then it should fail with ErrRender", func() {
			So(err, ShouldWrap, chart.ErrRender)
		})
	})

	Convey("Given the latency box plot", t, func() {
		fig, err := r.LatencyBox(aggregate.LatencyDistributions(table))

		Convey("Then it should render", func() {
			So(err, ShouldBeNil)
			So(fig.Name, ShouldEqual, chart.NameLatency)
			So(fig.PNG, ShouldNotBeEmpty)
		})
	})

	Convey("Given no data", t, func() {
		empty := dataset.FromObservations("", nil)
		_, radarErr := r.Radar(nil)
		_, barErr := r.GroupedBar(nil)
		_, heatErr := r.Heatmap(aggregate.CrossPivot(empty))
		_, scatterErr := r.QualityScatter(nil, model.CO2g)
		_, boxErr := r.LatencyBox(nil)

		Convey("Then every chart should report ErrNoData wrapped in ErrRender", func() {
			for _, err := range []error{radarErr, barErr, heatErr, scatterErr, boxErr} {
				So(err, ShouldWrap, chart.ErrRender)
				So(err, ShouldWrap, chart.ErrNoData)
			}
		})
	})

	Convey("Given the same input rendered twice", t, func() {
		a, err := r.Heatmap(aggregate.CrossPivot(table))
		So(err, ShouldBeNil)
		b, err := r.Heatmap(aggregate.CrossPivot(table))
		So(err, ShouldBeNil)

		Convey("Then the figures should be independent and identical", func() {
			So(a.PNG, ShouldResemble, b.PNG)
			a.PNG[0] = 0
			So(b.PNG[0], ShouldNotEqual, 0)
		})
	})
}
