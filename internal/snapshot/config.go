package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:8501"
	DefaultDir     = "."
	DefaultName    = "streamlit_dashboard"
	DefaultTimeout = 60 * time.Second
	DefaultWidth   = 1280
	DefaultHeight  = 2400
)

// Artifact kinds, also used as file extensions.
const (
	ArtifactPDF  = "pdf"
	ArtifactPNG  = "png"
	ArtifactHTML = "html"
)

// Config describes one export run.
type Config struct {
	URL     string        // Dashboard address to capture
	Dir     string        // Output directory
	Name    string        // Base name shared by the three artifacts
	Timeout time.Duration // Bound on the whole run
	Width   int           // Viewport width in pixels
	Height  int           // Viewport height in pixels
}

// DefaultConfig returns a Config holding the defaults.
func DefaultConfig() Config {
	return Config{
		URL:     DefaultURL,
		Dir:     DefaultDir,
		Name:    DefaultName,
		Timeout: DefaultTimeout,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
	}
}

// Validate checks that the run can be attempted.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	switch {
	case strings.TrimSpace(c.URL) == "":
		return fmt.Errorf("%w: url must not be empty", ErrConfig)
	case err != nil:
		return fmt.Errorf("%w: url: %w", ErrConfig, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%w: url scheme %q (want http or https)", ErrConfig, u.Scheme)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: name must not be empty", ErrConfig)
	case strings.ContainsAny(c.Name, `/\`):
		return fmt.Errorf("%w: name %q must not contain a path separator", ErrConfig, c.Name)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrConfig)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrConfig, c.Width, c.Height)
	}
	return nil
}

// Path returns the output path of the given artifact kind.
func (c Config) Path(kind string) string {
	dir := c.Dir
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, c.Name+"."+kind)
}

// Browser is a single headless page able to render the dashboard.
type Browser interface {
	// Open navigates to url and returns once the network has settled.
	Open(ctx context.Context, url string) error
	// PDF prints the page with backgrounds.
	PDF(ctx context.Context) ([]byte, error)
	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// HTML returns the serialized DOM after scripts ran.
	HTML(ctx context.Context) (string, error)
	// Close releases the browser process.
	Close() error
}

// Launcher starts a browser with the given viewport.
type Launcher func(ctx context.Context, width, height int) (Browser, error)

// Result reports a successful run.
type Result struct {
	RunID    string
	URL      string
	Files    map[string]string // artifact kind -> path
	Bytes    map[string]int    // artifact kind -> size
	Duration time.Duration
}
