package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/kpiboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
				convey.So(cfg.DataPath, convey.ShouldEqual, "ai_model_kpi_data2.csv")
				convey.So(cfg.SnapshotTimeoutMS, convey.ShouldEqual, 60_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("KPIBOARD_ADDR", ":9000")
			_ = os.Setenv("KPIBOARD_DATA_PATH", "data/kpis.csv")
			_ = os.Setenv("KPIBOARD_CONSTANT_METRIC_POLICY", "error")
			_ = os.Setenv("KPIBOARD_SNAPSHOT_TIMEOUT_MS", "15000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.DataPath, convey.ShouldEqual, "data/kpis.csv")
				convey.So(cfg.ConstantMetricPolicy, convey.ShouldEqual, config.PolicyError)
				convey.So(cfg.SnapshotTimeoutMS, convey.ShouldEqual, 15000)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
data_path: "bench.csv"
page_title: "Bench"
snapshot_dir: "out"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KPIBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataPath, convey.ShouldEqual, "bench.csv")
				convey.So(cfg.PageTitle, convey.ShouldEqual, "Bench")
				convey.So(cfg.SnapshotDir, convey.ShouldEqual, "out")
				convey.So(cfg.SnapshotName, convey.ShouldEqual, "streamlit_dashboard")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\ndata_path: \"bench.csv\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KPIBOARD_CONFIG", tmpFile)
			_ = os.Setenv("KPIBOARD_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "bench.csv")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("KPIBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("KPIBOARD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("KPIBOARD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("KPIBOARD_SNAPSHOT_TIMEOUT_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderDotenv(t *testing.T) {
	convey.Convey("Given a .env file in the working directory", t, func() {
		clearConfigEnvVars()
		dir := t.TempDir()
		content := "KPIBOARD_PAGE_TITLE=From Dotenv\nKPIBOARD_SNAPSHOT_NAME=bench_snapshot\n"
		convey.So(os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600), convey.ShouldBeNil)
		t.Chdir(dir)
		defer clearConfigEnvVars()

		convey.Convey("When loading config", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then values from .env should apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PageTitle, convey.ShouldEqual, "From Dotenv")
				convey.So(cfg.SnapshotName, convey.ShouldEqual, "bench_snapshot")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"KPIBOARD_CONFIG",
		"KPIBOARD_ADDR",
		"KPIBOARD_DATA_PATH",
		"KPIBOARD_PAGE_TITLE",
		"KPIBOARD_CONSTANT_METRIC_POLICY",
		"KPIBOARD_SNAPSHOT_NAME",
		"KPIBOARD_SNAPSHOT_TIMEOUT_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "kpiboard-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
