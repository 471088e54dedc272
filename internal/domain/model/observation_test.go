package model_test

import (
	"testing"

	model "github.com/okian/kpiboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMetric(t *testing.T) {
	convey.Convey("Given an observation", t, func() {
		obs := model.Observation{
			Model:            "gpt-x",
			ModelCategory:    "LLM",
			QuestionID:       "Q1",
			QuestionCategory: "Math",
			Rating:           4.5,
			ElectricityWh:    0.8,
			CO2g:             0.35,
			InferenceSeconds: 2.1,
		}

		convey.Convey("When extracting every metric", func() {
			var v model.KPIVector
			for _, m := range model.Metrics {
				v[m] = m.Value(obs)
			}

			convey.Convey("Then values should follow display order", func() {
				convey.So(v, convey.ShouldResemble, model.KPIVector{4.5, 0.8, 0.35, 2.1})
				convey.So(v.Get(model.CO2g), convey.ShouldEqual, 0.35)
			})
		})

		convey.Convey("When naming metrics", func() {
			convey.Convey("Then labels should match the chart columns", func() {
				convey.So(model.Rating.String(), convey.ShouldEqual, "Rating")
				convey.So(model.ElectricityWh.String(), convey.ShouldEqual, "Electricity_Wh")
				convey.So(model.CO2g.String(), convey.ShouldEqual, "CO2_g")
				convey.So(model.InferenceSeconds.String(), convey.ShouldEqual, "Inference_s")
				convey.So(model.Metric(9).String(), convey.ShouldEqual, "unknown")
				convey.So(model.Metric(-1).Value(obs), convey.ShouldEqual, 0)
			})
		})
	})
}
