// Package web serves the operations dashboard.
package web

import (
	"net/http"
	"os"
	"path/filepath"
)

const dashboardFile = "dashboard.html"

// ServeDashboard serves the dashboard HTML. When the file is not present
// (e.g. the binary runs outside the repo root) a minimal page pointing at the
// JSON API is returned instead of a 404.
func ServeDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	path := filepath.Join("web", dashboardFile)
	if _, err := os.Stat(path); err != nil {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!DOCTYPE html><html><body>
<h1>ContentOps</h1>
<p>Dashboard assets not found. The JSON API is available under /api/.</p>
</body></html>`))
		return
	}

	http.ServeFile(w, r, path)
}
