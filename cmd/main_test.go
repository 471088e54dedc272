package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/kpiboard/internal/config"
	"github.com/okian/kpiboard/pkg/logger"
	"github.com/okian/kpiboard/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

const bundledCSV = "../ai_model_kpi_data2.csv"

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.DataPath = bundledCSV
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("KPIBOARD_ADDR", ":9090")
			_ = os.Setenv("KPIBOARD_PAGE_TITLE", "KPI Review")
			defer func() {
				_ = os.Unsetenv("KPIBOARD_ADDR")
				_ = os.Unsetenv("KPIBOARD_PAGE_TITLE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PageTitle, convey.ShouldEqual, "KPI Review")
			})
		})

		convey.Convey("When testing service creation", func() {
			ctx := context.Background()

			convey.Convey("Then the service should start on the bundled dataset", func() {
				svc, err := newService(ctx, testConfig(), logger.Get())
				convey.So(err, convey.ShouldBeNil)
				defer svc.Stop()

				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldEqual, true)
				convey.So(stats["observations"], convey.ShouldEqual, 129)
			})

			convey.Convey("And a missing dataset should fail start-up", func() {
				cfg := testConfig()
				cfg.DataPath = "missing.csv"
				_, err := newService(ctx, cfg, logger.Get())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "failed to start service")
			})

			convey.Convey("And an unknown policy should be rejected", func() {
				cfg := testConfig()
				cfg.ConstantMetricPolicy = "zero"
				_, err := newService(ctx, cfg, logger.Get())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "constant_metric_policy")
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationRoutes(t *testing.T) {
	convey.Convey("Given a started service behind the process mux", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, testConfig(), logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then every route family should answer", func() {
			routes := map[string]string{
				"/healthz":              "text/plain",
				"/stats":                "application/json",
				"/api/summary":          "application/json",
				"/charts/heatmap.png":   "image/png",
				"/assets/dashboard.css": "text/css",
				"/openapi.yaml":         "application/yaml",
				"/api-docs":             "text/html",
				"/":                     "text/html",
			}
			for path, contentType := range routes {
				w := get(path)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldStartWith, contentType)
			}
		})

		convey.Convey("Then the dashboard should carry the configured title", func() {
			w := get("/")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "AI Model KPI Dashboard")
		})

		convey.Convey("Then unknown routes should 404", func() {
			convey.So(get("/nope").Code, convey.ShouldEqual, http.StatusNotFound)
			convey.So(get("/charts/pie.png").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then a direct update should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})

			convey.Convey("And the updater should exit when its context ends", func() {
				ctx, cancel := context.WithCancel(context.Background())
				done := make(chan struct{})
				go func() {
					startSystemMetricsUpdater(ctx)
					close(done)
				}()
				cancel()

				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("metrics updater did not stop")
				}
			})
		})
	})
}
