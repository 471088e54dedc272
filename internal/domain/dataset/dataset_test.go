package dataset_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/kpiboard/internal/domain/dataset"
	"github.com/okian/kpiboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const header = "Ques_ID_Prompt,Answer_Rating_0_5,Electricity_consumption_Wh,CO2_Emission_gm,Inference_Timing_sec,Model,Model_Category,Question_Category\n"

func TestLoad(t *testing.T) {
	Convey("Given the fixture CSV", t, func() {
		ctx := context.Background()
		table, err := dataset.Load(ctx, "testdata/kpis.csv")

		Convey("Then it should load every row", func() {
			So(err, ShouldBeNil)
			So(table.Len(), ShouldEqual, 5)
			So(table.Source(), ShouldEqual, "testdata/kpis.csv")
		})

		Convey("Then columns should be mapped by name, not position", func() {
			first := table.Observations()[0]
			So(first, ShouldResemble, model.Observation{
				Model:            "gpt-4o",
				ModelCategory:    "Large",
				QuestionID:       "Q1",
				QuestionCategory: "Reasoning",
				Rating:           4.5,
				ElectricityWh:    1.2,
				CO2g:             0.48,
				InferenceSeconds: 3.1,
			})
		})

		Convey("Then distinct labels should be sorted", func() {
			So(table.ModelCategories(), ShouldResemble, []string{"Large", "Small"})
			So(table.QuestionCategories(), ShouldResemble, []string{"Coding", "Reasoning", "Summarization"})
			So(table.Models(), ShouldResemble, []string{"gpt-4o", "phi-3"})
		})

		Convey("Then returned slices should not alias the table", func() {
			rows := table.Observations()
			rows[0].Rating = 0
			cats := table.ModelCategories()
			cats[0] = "changed"
			So(table.Observations()[0].Rating, ShouldEqual, 4.5)
			So(table.ModelCategories()[0], ShouldEqual, "Large")
		})
	})

	Convey("Given a path that does not exist", t, func() {
		_, err := dataset.Load(context.Background(), "testdata/missing.csv")

		Convey("Then it should fail with ErrOpen", func() {
			So(errors.Is(err, dataset.ErrOpen), ShouldBeTrue)
		})
	})
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	Convey("Given a header missing two required columns", t, func() {
		in := "Ques_ID_Prompt,Answer_Rating_0_5,Electricity_consumption_Wh,Model,Model_Category,Question_Category\n"
		_, err := dataset.Parse(ctx, strings.NewReader(in))

		Convey("Then it should fail fast naming both", func() {
			So(err, ShouldWrap, dataset.ErrMissingColumn)
			So(err.Error(), ShouldContainSubstring, "CO2_Emission_gm")
			So(err.Error(), ShouldContainSubstring, "Inference_Timing_sec")
		})
	})

	Convey("Given an empty input", t, func() {
		_, err := dataset.Parse(ctx, strings.NewReader(""))

		Convey("Then it should report ErrEmptyInput", func() {
			So(errors.Is(err, dataset.ErrEmptyInput), ShouldBeTrue)
		})
	})

	Convey("Given a non-numeric rating", t, func() {
		in := header + "Q1,4,1,1,1,m,A,X\nQ2,good,1,1,1,m,A,X\n"
		_, err := dataset.Parse(ctx, strings.NewReader(in))

		Convey("Then it should name the line and column", func() {
			So(err, ShouldWrap, dataset.ErrMalformedRow)
			So(err.Error(), ShouldContainSubstring, "line 3")
			So(err.Error(), ShouldContainSubstring, "Answer_Rating_0_5")
		})
	})

	Convey("Given non-finite measurements", t, func() {
		cases := map[string]string{
			"Q2,NaN,1,1,1,m,B,X\n":  "Answer_Rating_0_5",
			"Q2,4,Inf,1,1,m,B,X\n":  "Electricity_consumption_Wh",
			"Q2,4,1,+Inf,1,m,B,X\n": "CO2_Emission_gm",
			"Q2,4,1,1,-inf,m,B,X\n": "Inference_Timing_sec",
		}

		Convey("Then each should be rejected as malformed", func() {
			for row, column := range cases {
				in := header + "Q1,4,1,1,1,m,A,X\n" + row
				_, err := dataset.Parse(ctx, strings.NewReader(in))
				So(err, ShouldWrap, dataset.ErrMalformedRow)
				So(err.Error(), ShouldContainSubstring, "line 3")
				So(err.Error(), ShouldContainSubstring, column)
				So(err.Error(), ShouldContainSubstring, "finite")
			}
		})
	})

	Convey("Given a BOM, padded header cells and blank rows", t, func() {
		in := "\xEF\xBB\xBF" + strings.ReplaceAll(header, ",", " , ") + " , , , , , , , \nQ1, 2 ,0.5,0.2,1.5,m,A,X\n"
		table, err := dataset.Parse(ctx, strings.NewReader(in))

		Convey("Then it should still parse", func() {
			So(err, ShouldBeNil)
			So(table.Len(), ShouldEqual, 1)
			So(table.Observations()[0].Rating, ShouldEqual, 2)
			So(table.Source(), ShouldEqual, "")
		})
	})

	Convey("Given only a header", t, func() {
		table, err := dataset.Parse(ctx, strings.NewReader(header))

		Convey("Then the table should be empty, not an error", func() {
			So(err, ShouldBeNil)
			So(table.Len(), ShouldEqual, 0)
			So(table.ModelCategories(), ShouldBeEmpty)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := dataset.Parse(cctx, strings.NewReader(header+"Q1,4,1,1,1,m,A,X\n"))

		Convey("Then parsing should stop", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestEach(t *testing.T) {
	Convey("Given an in-memory table", t, func() {
		table := dataset.FromObservations("mem", []model.Observation{
			{ModelCategory: "B", Rating: 1},
			{ModelCategory: "A", Rating: 2},
		})

		Convey("Then Each should visit rows in insertion order", func() {
			var got []float64
			table.Each(func(o model.Observation) { got = append(got, o.Rating) })
			So(got, ShouldResemble, []float64{1, 2})
			So(table.ModelCategories(), ShouldResemble, []string{"A", "B"})
		})
	})
}
