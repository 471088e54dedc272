// Package snapshot captures the running dashboard as PDF, PNG and HTML files.
//
// A run is linear: launch, navigate, capture all three artifacts, close the
// browser, then write. Nothing is written unless every capture succeeded.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/kpiboard/pkg/logger"
	"github.com/okian/kpiboard/pkg/metrics"
)

// File permission constants.
const (
	artifactPermission  = 0o644
	directoryPermission = 0o750
)

// Stage names recorded in metrics and logs.
const (
	stageLaunch     = "launch"
	stageNavigate   = "navigate"
	stagePDF        = "pdf"
	stageScreenshot = "screenshot"
	stageHTML       = "html"
	stageWrite      = "write"
	outcomeOK       = "ok"
)

// Exporter runs export tasks against a browser backend.
type Exporter struct {
	cfg    Config
	launch Launcher
	now    func() time.Time
}

// NewExporter validates cfg and returns an Exporter using launch.
func NewExporter(cfg Config, launch Launcher) (*Exporter, error) {
	if launch == nil {
		return nil, fmt.Errorf("%w: launcher is nil", ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Exporter{cfg: cfg, launch: launch, now: time.Now}, nil
}

// captures holds the in-memory artifacts until every one is ready.
type captures struct {
	pdf  []byte
	png  []byte
	html []byte
}

// Export performs one run bounded by the configured timeout.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	start := e.now()
	log := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	log.Info(ctx, "snapshot started",
		logger.String("runID", runID),
		logger.String("url", e.cfg.URL),
		logger.Duration("timeout", e.cfg.Timeout))

	caps, stage, err := e.capture(ctx, runID)
	if err != nil {
		metrics.RecordSnapshotRun(stage)
		log.Error(ctx, "snapshot failed",
			logger.String("runID", runID),
			logger.String("stage", stage),
			logger.Error(err))
		return nil, err
	}

	res := &Result{
		RunID: runID,
		URL:   e.cfg.URL,
		Files: make(map[string]string, 3),
		Bytes: make(map[string]int, 3),
	}
	if err := e.stage(ctx, stageWrite, func(context.Context) error {
		return e.write(caps, res)
	}); err != nil {
		metrics.RecordSnapshotRun(stageWrite)
		log.Error(ctx, "snapshot failed",
			logger.String("runID", runID),
			logger.String("stage", stageWrite),
			logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	res.Duration = e.now().Sub(start)
	metrics.RecordSnapshotRun(outcomeOK)
	log.Info(ctx, "snapshot written",
		logger.String("runID", runID),
		logger.String("pdf", res.Files[ArtifactPDF]),
		logger.String("png", res.Files[ArtifactPNG]),
		logger.String("html", res.Files[ArtifactHTML]),
		logger.Duration("duration", res.Duration))
	return res, nil
}

// capture drives the browser and returns the failed stage name with any error.
func (e *Exporter) capture(ctx context.Context, runID string) (*captures, string, error) {
	var b Browser
	if err := e.stage(ctx, stageLaunch, func(ctx context.Context) error {
		var err error
		b, err = e.launch(ctx, e.cfg.Width, e.cfg.Height)
		return err
	}); err != nil {
		return nil, stageLaunch, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	var once sync.Once
	closeBrowser := func() {
		once.Do(func() {
			if err := b.Close(); err != nil {
				logger.Get().Warn(ctx, "browser close failed",
					logger.String("runID", runID), logger.Error(err))
			}
		})
	}
	defer closeBrowser()

	if err := e.stage(ctx, stageNavigate, func(ctx context.Context) error {
		return b.Open(ctx, e.cfg.URL)
	}); err != nil {
		return nil, stageNavigate, fmt.Errorf("%w: %w", ErrNavigate, err)
	}

	caps := &captures{}
	steps := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{stagePDF, func(ctx context.Context) (err error) {
			caps.pdf, err = b.PDF(ctx)
			return err
		}},
		{stageScreenshot, func(ctx context.Context) (err error) {
			caps.png, err = b.Screenshot(ctx)
			return err
		}},
		{stageHTML, func(ctx context.Context) error {
			html, err := b.HTML(ctx)
			caps.html = []byte(html)
			return err
		}},
	}
	for _, step := range steps {
		if err := e.stage(ctx, step.name, step.run); err != nil {
			return nil, step.name, fmt.Errorf("%w: %s: %w", ErrCapture, step.name, err)
		}
	}

	closeBrowser()
	return caps, "", nil
}

// stage runs fn, records its latency and fails fast on an expired context.
func (e *Exporter) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := e.now()
	err := fn(ctx)
	metrics.RecordSnapshotStage(name, float64(e.now().Sub(start).Milliseconds()))
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.Get().Warn(ctx, "snapshot deadline reached", logger.String("stage", name))
	}
	return err
}

// write stores every artifact and fills the file table of res.
func (e *Exporter) write(caps *captures, res *Result) error {
	if dir := e.cfg.Dir; dir != "" {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return err
		}
	}
	for _, a := range []struct {
		kind string
		data []byte
	}{
		{ArtifactPDF, caps.pdf},
		{ArtifactPNG, caps.png},
		{ArtifactHTML, caps.html},
	} {
		path := e.cfg.Path(a.kind)
		if err := os.WriteFile(path, a.data, artifactPermission); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res.Files[a.kind] = path
		res.Bytes[a.kind] = len(a.data)
		metrics.SetSnapshotArtifactBytes(a.kind, len(a.data))
	}
	return nil
}
