package api

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
)

//go:embed static/dashboard.html.tmpl
var apiStaticFS embed.FS

var templateFuncs = template.FuncMap{
	// pngURI inlines PNG bytes so the page and its snapshots are self-contained.
	"pngURI": func(b []byte) template.URL {
		return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(b))
	},
	"coords": func(x, y, r int) string {
		return fmt.Sprintf("%d,%d,%d", x, y, r)
	},
	"f3": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
	"firstLine": func(s string) string {
		line, _, _ := strings.Cut(s, "\n")
		return line
	},
}

// dashboardTemplate is parsed once at start-up; a broken template is a build defect.
var dashboardTemplate = template.Must(
	template.New("dashboard.html.tmpl").Funcs(templateFuncs).ParseFS(apiStaticFS, "static/dashboard.html.tmpl"),
)
