// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/kpiboard/internal/adapters/chart"
	service "github.com/okian/kpiboard/internal/app"
	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Build renders the whole dashboard.
	Build(ctx context.Context) (*service.Dashboard, error)
	// Figure renders a single chart by name.
	Figure(ctx context.Context, name string) (chart.Figure, error)
	// Summary returns the aggregated tables.
	Summary(ctx context.Context) (service.Summary, error)
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
	chartsHandler    *ChartsHandler
	summaryHandler   *SummaryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: newDashboardHandler(deps),
		chartsHandler:    NewChartsHandler(deps),
		summaryHandler:   NewSummaryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(getOnly(s.healthHandler.HandleHealth), "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(getOnly(s.statsHandler.HandleStats), "stats"))
	mux.HandleFunc("/api/summary", MetricsMiddleware(getOnly(s.summaryHandler.HandleSummary), "summary"))
	mux.HandleFunc("/charts/", MetricsMiddleware(getOnly(s.chartsHandler.HandleChart), "charts"))
	mux.HandleFunc("/", MetricsMiddleware(getOnly(s.dashboardHandler.HandleDashboard), "dashboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v in full before the status is written. Encoding failures answer 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Get().Error(context.Background(), "response encoding failed", logger.Error(err))
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{
			Code:    "internal",
			Message: fmt.Errorf("%w: %w", ErrEncode, err).Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps service and domain errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownFigure):
		return http.StatusNotFound, "unknown_chart"
	case errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, aggregate.ErrConstantMetric):
		return http.StatusUnprocessableEntity, "constant_metric"
	case errors.Is(err, aggregate.ErrNonFinite):
		return http.StatusUnprocessableEntity, "non_finite_metric"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
