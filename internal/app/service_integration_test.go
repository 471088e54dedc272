package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/kpiboard/internal/adapters/chart"
	service "github.com/okian/kpiboard/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

const bundledData = "../../ai_model_kpi_data2.csv"

func TestServiceIntegration_BundledData(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	Convey("Given the service over the bundled CSV", t, func() {
		svc := service.New(service.WithDataPath(bundledData), renderer())
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When building the dashboard", func() {
			d, err := svc.Build(ctx)
			So(err, ShouldBeNil)

			Convey("Then every chart should be present", func() {
				So(d.Sections, ShouldHaveLength, len(chart.Names))
				for _, s := range d.Sections {
					So(s.Figure, ShouldNotBeNil)
				}
			})

			Convey("Then the pivot should keep the missing combination empty", func() {
				So(d.Pivot.Rows, ShouldResemble, []string{"Large", "Medium", "Reasoning", "Small"})
				_, ok := d.Pivot.Lookup("Small", "Creative")
				So(ok, ShouldBeFalse)
			})

			Convey("Then each scatter should have a hotspot per observation", func() {
				So(d.Sections[3].Figure.Hotspots, ShouldHaveLength, d.Observations)
			})
		})

		Convey("When building concurrently", func() {
			const workers = 4
			var wg sync.WaitGroup
			errs := make([]error, workers)
			pngs := make([][]byte, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					fig, err := svc.Figure(ctx, chart.NameHeatmap)
					errs[i] = err
					pngs[i] = fig.PNG
				}(i)
			}
			wg.Wait()

			Convey("Then every render should succeed with identical output", func() {
				for i := range errs {
					So(errs[i], ShouldBeNil)
					So(pngs[i], ShouldResemble, pngs[0])
				}
			})
		})

		Convey("When reading the summary twice", func() {
			a, err := svc.Summary(ctx)
			So(err, ShouldBeNil)
			b, err := svc.Summary(ctx)
			So(err, ShouldBeNil)

			Convey("Then the results should be identical", func() {
				So(a, ShouldResemble, b)
				So(a.Observations, ShouldBeGreaterThan, 100)
			})
		})
	})
}
