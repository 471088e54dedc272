package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/kpiboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
			convey.So(cfg.DataPath, convey.ShouldEqual, "ai_model_kpi_data2.csv")
			convey.So(cfg.ConstantMetricPolicy, convey.ShouldEqual, config.PolicyMidpoint)
			convey.So(cfg.SnapshotURL, convey.ShouldEqual, "http://localhost:8501")
			convey.So(cfg.SnapshotName, convey.ShouldEqual, "streamlit_dashboard")
			convey.So(cfg.SnapshotTimeout(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the policy is unknown", func() {
			cfg.ConstantMetricPolicy = "clamp"
			err := cfg.Validate()

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "constant_metric_policy")
			})
		})

		convey.Convey("When the data path is blank", func() {
			cfg.DataPath = "  "

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the snapshot timeout is zero", func() {
			cfg.SnapshotTimeoutMS = 0

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the error policy is chosen", func() {
			cfg.ConstantMetricPolicy = config.PolicyError

			convey.Convey("Then it should be accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
