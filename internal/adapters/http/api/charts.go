package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	chartsPrefix = "/charts/"
	pngSuffix    = ".png"
)

// ChartsHandler serves single chart images.
type ChartsHandler struct {
	deps Dependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

// HandleChart handles GET /charts/{name}.png requests.
func (h *ChartsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimPrefix(r.URL.Path, chartsPrefix)
	name, ok := strings.CutSuffix(file, pngSuffix)
	if !ok || name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "unknown_chart", fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
		return
	}

	fig, err := h.deps.Figure(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(fig.PNG)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(fig.PNG)
}
