// Package swaggerkit mounts Swagger UI over the embedded API document
package swaggerkit

import (
	_ "embed"
	"net/http"

	phttp "eogfeat/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed doc.json
var doc []byte

// Doc returns the embedded swagger document
func Doc() []byte { return doc }

// Mount the Swagger UI and JSON document if enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(doc)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
