// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"fmt"
	"net/http"

	service "github.com/okian/kpiboard/internal/app"
	"github.com/okian/kpiboard/internal/domain/model"
)

// dashboardHandler renders the dashboard page.
type dashboardHandler struct {
	deps Dependencies
}

// newDashboardHandler creates a new dashboard handler
func newDashboardHandler(deps Dependencies) *dashboardHandler {
	return &dashboardHandler{deps: deps}
}

type kpiRow struct {
	Category string
	Count    int
	Means    []float64
}

type dashboardPage struct {
	*service.Dashboard
	MetricNames []string
	KPIRows     []kpiRow
}

// HandleDashboard handles GET / requests. Every request rebuilds the
// dashboard from the loaded table.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
		return
	}

	d, err := h.deps.Build(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	page := dashboardPage{Dashboard: d}
	for _, m := range model.Metrics {
		page.MetricNames = append(page.MetricNames, m.String())
	}
	for _, cv := range d.Means {
		page.KPIRows = append(page.KPIRows, kpiRow{Category: cv.Category, Count: cv.Count, Means: cv.Values[:]})
	}

	// Render to a buffer so a template failure still yields a clean 500.
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		writeError(w, http.StatusInternalServerError, "template", fmt.Errorf("%w: %w", ErrTemplate, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}
