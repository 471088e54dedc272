package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/kpiboard/internal/adapters/browser"
	"github.com/okian/kpiboard/internal/config"
	"github.com/okian/kpiboard/internal/snapshot"
	"github.com/okian/kpiboard/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Stderr.WriteString("Snapshot failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env); flags override.
	pc, err := config.Load(ctx)
	if err != nil {
		return err
	}
	cfg, help, err := parseFlags(args, snapshot.FromConfig(pc))
	if err != nil {
		return err
	}
	if help {
		snapshot.ShowHelp()
		return nil
	}

	if err := setupLogging(ctx, pc.LogLevel, logger.WithFormat(pc.LogFormat)); err != nil {
		return err
	}

	exporter, err := snapshot.NewExporter(cfg, launchChrome)
	if err != nil {
		return err
	}
	_, err = exporter.Export(ctx)
	return err
}

// parseFlags applies command-line overrides on top of defaults.
func parseFlags(args []string, defaults snapshot.Config) (snapshot.Config, bool, error) {
	cfg := defaults
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.StringVar(&cfg.URL, "url", defaults.URL, "Dashboard address")
	fs.StringVar(&cfg.Dir, "dir", defaults.Dir, "Output directory")
	fs.StringVar(&cfg.Name, "name", defaults.Name, "Base name of the output files")
	fs.DurationVar(&cfg.Timeout, "timeout", defaults.Timeout, "Bound on the whole capture")
	help := fs.Bool("help", false, "Show help")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	return cfg, *help, nil
}

// setupLogging initializes the logger and applies level, falling back to info
// on invalid input.
func setupLogging(ctx context.Context, level string, opts ...logger.Option) error {
	if err := logger.Init(opts...); err != nil {
		return err
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func launchChrome(ctx context.Context, width, height int) (snapshot.Browser, error) {
	b, err := browser.Launch(ctx, browser.WithWindowSize(width, height))
	if err != nil {
		return nil, err
	}
	return b, nil
}
