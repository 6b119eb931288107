package server

import (
	"net/http"

	"github.com/ternarybob/taxiiproxy/internal/metrics"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// taxiiRoutes maps proxy endpoint paths to TAXII operations
var taxiiRoutes = map[string]taxii.Operation{
	"/api/taxii/discover":      taxii.OpDiscover,
	"/api/taxii/api-root":      taxii.OpGetAPIRoot,
	"/api/taxii/collections":   taxii.OpListCollections,
	"/api/taxii/objects":       taxii.OpListObjects,
	"/api/taxii/object":        taxii.OpGetObject,
	"/api/taxii/add-object":    taxii.OpAddObject,
	"/api/taxii/delete-object": taxii.OpDeleteObject,
	"/api/taxii/manifest":      taxii.OpGetManifest,
	"/api/taxii/status":        taxii.OpGetStatus,
	"/api/taxii/versions":      taxii.OpGetVersions,
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - TAXII proxy (POST with JSON body)
	for path, op := range taxiiRoutes {
		mux.HandleFunc(path, s.app.TAXIIHandler.Handler(op))
	}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.Handle("/metrics", metrics.Handler())

	// 404 handler for unmatched API routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
