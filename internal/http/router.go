// Package http wires the API handlers into a chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sectiondocs/internal/handlers"
	"sectiondocs/internal/service"
	"sectiondocs/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB          handlers.Pinger
	VectorStore vectorstore.VectorStore // nil when the vector stage is disabled
	Collection  string
	Catalog     service.CatalogService
	Chunks      service.ChunkService
	Indexer     handlers.Indexer
	Stats       handlers.StatsReporter
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.Collection))
		r.Method(http.MethodGet, "/tenants", handlers.NewTenantsHandler(deps.Catalog))
		r.Method(http.MethodGet, "/tenants/{tenant}/documents", handlers.NewDocumentsHandler(deps.Catalog))
		r.Method(http.MethodGet, "/stats", handlers.NewStatsHandler(deps.Stats))
		r.Method(http.MethodPost, "/index", handlers.NewIndexHandler(deps.Indexer))
		r.Method(http.MethodPost, "/chunk", handlers.NewChunkHandler(deps.Chunks))
	})

	return r
}
