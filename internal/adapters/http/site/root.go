// Package site serves the embedded static assets of the dashboard page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("site asset serve failed")
)

// AssetsPrefix is the URL prefix the dashboard template links against.
const AssetsPrefix = "/assets/"

// Register attaches the embedded asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle(AssetsPrefix, NewAssetsHandler())
}

// AssetsHandler serves files from the embedded static directory.
type AssetsHandler struct {
	files http.Handler
}

// NewAssetsHandler creates a new assets handler.
func NewAssetsHandler() *AssetsHandler {
	return &AssetsHandler{files: http.StripPrefix(AssetsPrefix, http.FileServer(FS()))}
}

// ServeHTTP serves GET and HEAD requests for embedded assets. Directory
// listings are not exposed.
func (h *AssetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == AssetsPrefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}
