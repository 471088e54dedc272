package snapshot

import (
	"io"
	"os"

	"github.com/okian/kpiboard/internal/config"
)

// FromConfig maps the process configuration onto an export Config.
func FromConfig(c *config.Config) Config {
	return Config{
		URL:     c.SnapshotURL,
		Dir:     c.SnapshotDir,
		Name:    c.SnapshotName,
		Timeout: c.SnapshotTimeout(),
		Width:   c.SnapshotWidth,
		Height:  c.SnapshotHeight,
	}
}

// ShowHelp prints usage information for the snapshot tool to stdout.
func ShowHelp() {
	WriteHelp(os.Stdout)
}

// WriteHelp prints usage information for the snapshot tool to w.
func WriteHelp(w io.Writer) {
	_, _ = io.WriteString(w, `kpiboard Snapshot Tool
======================

Captures the running dashboard as PDF, PNG and HTML files.

Usage:
  go run cmd/snapshot/main.go [options]

Options:
  -url string
        Dashboard address (default "http://localhost:8501")
  -dir string
        Output directory (default ".")
  -name string
        Base name of the output files (default "streamlit_dashboard")
  -timeout duration
        Bound on the whole capture (default 1m0s)
  -help
        Show this help message

Defaults are read from KPIBOARD_SNAPSHOT_* environment variables and the
optional config file named by KPIBOARD_CONFIG; flags override them.

Examples:
  # Capture a dashboard on the default port
  go run cmd/snapshot/main.go

  # Capture into ./out with a longer timeout
  go run cmd/snapshot/main.go -dir out -timeout 2m
`)
}
