// Package service provides the dashboard service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/kpiboard/internal/adapters/chart"
	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/internal/domain/dataset"
	"github.com/okian/kpiboard/internal/domain/model"
	"github.com/okian/kpiboard/pkg/logger"
	"github.com/okian/kpiboard/pkg/metrics"
)

const (
	defaultDataPath = "ai_model_kpi_data2.csv"
	defaultTitle    = "AI Model KPI Dashboard"
	noDataNote      = "No observations to plot."
)

// Service loads the KPI table once and renders the dashboard from it on demand.
type Service struct {
	mu sync.RWMutex

	// Configuration
	dataPath string
	title    string
	policy   aggregate.ConstantPolicy
	renderer *chart.Renderer

	// State
	table   *dataset.Table
	preset  bool
	started bool

	builds  atomic.Int64
	renders atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath sets the CSV file loaded by Start.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithTable uses an already loaded table instead of reading the CSV.
func WithTable(t *dataset.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t
			s.preset = true
		}
	}
}

// WithTitle sets the dashboard page title.
func WithTitle(title string) Option {
	return func(s *Service) {
		if title != "" {
			s.title = title
		}
	}
}

// WithConstantPolicy sets how normalization treats constant metrics.
func WithConstantPolicy(p aggregate.ConstantPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithRenderer sets a custom chart renderer.
func WithRenderer(r *chart.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath: defaultDataPath,
		title:    defaultTitle,
		policy:   aggregate.ConstantMidpoint,
		renderer: chart.NewRenderer(),
		logger:   nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset. It fails fast when the file is missing or malformed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...")

	start := time.Now()
	if !s.preset {
		t, err := dataset.Load(ctx, s.dataPath)
		if err != nil {
			s.logger.Error(ctx, "failed to load dataset",
				logger.String("path", s.dataPath),
				logger.Error(err),
			)
			return err
		}
		s.table = t
	}
	loadMs := float64(time.Since(start).Nanoseconds()) / 1e6

	metrics.SetDataset(
		s.table.Len(),
		len(s.table.ModelCategories()),
		len(s.table.QuestionCategories()),
		len(s.table.Models()),
		loadMs,
	)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.String("dataSource", s.table.Source()),
		logger.Int("observations", s.table.Len()),
		logger.Int("modelCategories", len(s.table.ModelCategories())),
		logger.Int("questionCategories", len(s.table.QuestionCategories())),
		logger.String("constantMetricPolicy", s.policy.String()),
	)

	return nil
}

// Stop releases the loaded table.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if !s.preset {
		s.table = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

func (s *Service) current() (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.table, nil
}

// Title returns the dashboard page title.
func (s *Service) Title() string { return s.title }

// Build runs every aggregation and renders every figure. Nothing is cached:
// each call recomputes from the table.
func (s *Service) Build(ctx context.Context) (*Dashboard, error) {
	start := time.Now()
	d, err := s.build(ctx)
	metrics.RecordBuild(float64(time.Since(start).Nanoseconds())/1e6, err)
	if err != nil {
		s.log().Error(ctx, "dashboard build failed", logger.Error(err))
		return nil, err
	}
	s.builds.Add(1)
	s.log().Debug(ctx, "dashboard built",
		logger.Int("sections", len(d.Sections)),
		logger.Duration("took", time.Since(start)),
	)
	return d, nil
}

func (s *Service) build(ctx context.Context) (*Dashboard, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}

	means := aggregate.KPIMeans(t)
	norm, err := aggregate.Normalize(means, aggregate.WithConstantPolicy(s.policy))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	costs := aggregate.QuestionCategoryMeans(t)
	d := &Dashboard{
		Title:        s.title,
		Source:       t.Source(),
		Observations: t.Len(),
		GeneratedAt:  time.Now().UTC(),
		Means:        means,
		Normalized:   norm,
		Pivot:        aggregate.CrossPivot(t),
		Costs:        costs,
		Latency:      aggregate.LatencyDistributions(t),
	}

	obs := t.Observations()
	plan := []struct {
		name    string
		heading string
		render  func() (chart.Figure, error)
	}{
		{chart.NameRadar, "🕸️ KPI Profile per Model Category", func() (chart.Figure, error) { return s.renderer.Radar(norm) }},
		{chart.NameBar, "⚡ Electricity & Carbon by Question Category", func() (chart.Figure, error) { return s.renderer.GroupedBar(aggregate.Melt(costs)) }},
		{chart.NameHeatmap, "🌐 Rating Heatmap by Model vs Question Category", func() (chart.Figure, error) { return s.renderer.Heatmap(d.Pivot) }},
		{chart.NameQualityEnergy, "📈 Quality vs Energy", func() (chart.Figure, error) { return s.renderer.QualityScatter(obs, model.ElectricityWh) }},
		{chart.NameQualityCarbon, "📈 Quality vs Carbon Emission (Cost Proxy)", func() (chart.Figure, error) { return s.renderer.QualityScatter(obs, model.CO2g) }},
		{chart.NameLatency, "⏱️ Latency Distribution by Model Category", func() (chart.Figure, error) { return s.renderer.LatencyBox(d.Latency) }},
	}

	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fig, err := s.timed(step.name, step.render)
		switch {
		case errors.Is(err, chart.ErrNoData):
			d.Sections = append(d.Sections, Section{Heading: step.heading, Note: noDataNote})
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		default:
			d.Sections = append(d.Sections, Section{Heading: step.heading, Figure: &fig})
		}
	}
	return d, nil
}

// Figure renders a single chart by name.
func (s *Service) Figure(ctx context.Context, name string) (chart.Figure, error) {
	t, err := s.current()
	if err != nil {
		return chart.Figure{}, err
	}

	var render func() (chart.Figure, error)
	switch name {
	case chart.NameRadar:
		render = func() (chart.Figure, error) {
			norm, err := aggregate.Normalize(aggregate.KPIMeans(t), aggregate.WithConstantPolicy(s.policy))
			if err != nil {
				return chart.Figure{}, err
			}
			return s.renderer.Radar(norm)
		}
	case chart.NameBar:
		render = func() (chart.Figure, error) {
			return s.renderer.GroupedBar(aggregate.Melt(aggregate.QuestionCategoryMeans(t)))
		}
	case chart.NameHeatmap:
		render = func() (chart.Figure, error) { return s.renderer.Heatmap(aggregate.CrossPivot(t)) }
	case chart.NameQualityEnergy:
		render = func() (chart.Figure, error) { return s.renderer.QualityScatter(t.Observations(), model.ElectricityWh) }
	case chart.NameQualityCarbon:
		render = func() (chart.Figure, error) { return s.renderer.QualityScatter(t.Observations(), model.CO2g) }
	case chart.NameLatency:
		render = func() (chart.Figure, error) { return s.renderer.LatencyBox(aggregate.LatencyDistributions(t)) }
	default:
		return chart.Figure{}, fmt.Errorf("%w: %q", ErrUnknownFigure, name)
	}

	fig, err := s.timed(name, render)
	if err != nil {
		s.log().Warn(ctx, "figure render failed", logger.String("chart", name), logger.Error(err))
		return chart.Figure{}, err
	}
	return fig, nil
}

func (s *Service) timed(name string, render func() (chart.Figure, error)) (chart.Figure, error) {
	start := time.Now()
	fig, err := render()
	recorded := err
	if errors.Is(err, chart.ErrNoData) {
		recorded = nil
	}
	metrics.RecordChartRender(name, float64(time.Since(start).Nanoseconds())/1e6, recorded)
	if err == nil {
		s.renders.Add(1)
	}
	return fig, err
}

// Summary returns the aggregated tables without rendering anything.
func (s *Service) Summary(_ context.Context) (Summary, error) {
	t, err := s.current()
	if err != nil {
		return Summary{}, err
	}

	means := aggregate.KPIMeans(t)
	norm, err := aggregate.Normalize(means, aggregate.WithConstantPolicy(s.policy))
	if err != nil {
		return Summary{}, err
	}
	costs := aggregate.QuestionCategoryMeans(t)

	return Summary{
		Source:                t.Source(),
		Observations:          t.Len(),
		ConstantMetricPolicy:  s.policy.String(),
		KPIMeans:              categoryKPIs(means),
		Normalized:            categoryKPIs(norm),
		RatingPivot:           pivotView(aggregate.CrossPivot(t)),
		QuestionCategoryCosts: costViews(costs),
		CostsLong:             longViews(aggregate.Melt(costs)),
		Latency:               latencyViews(aggregate.LatencyDistributions(t)),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":              s.started,
		"dataPath":             s.dataPath,
		"constantMetricPolicy": s.policy.String(),
		"dashboardBuilds":      s.builds.Load(),
		"chartRenders":         s.renders.Load(),
	}

	if s.started {
		stats["observations"] = s.table.Len()
		stats["models"] = len(s.table.Models())
		stats["modelCategories"] = len(s.table.ModelCategories())
		stats["questionCategories"] = len(s.table.QuestionCategories())
	}

	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}
