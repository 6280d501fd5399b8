package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sectiondocs/internal/service"
)

// TenantsHandler handles GET /api/tenants.
type TenantsHandler struct {
	catalog service.CatalogService
}

// NewTenantsHandler creates a new TenantsHandler.
func NewTenantsHandler(catalog service.CatalogService) *TenantsHandler {
	return &TenantsHandler{catalog: catalog}
}

// TenantsResponse lists tenants with their document counts.
type TenantsResponse struct {
	Tenants []service.TenantSummary `json:"tenants"`
}

func (h *TenantsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenants, err := h.catalog.ListTenants(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list tenants")
		return
	}

	writeJSON(ctx, w, http.StatusOK, TenantsResponse{Tenants: tenants})
}

// DocumentsHandler handles GET /api/tenants/{tenant}/documents.
type DocumentsHandler struct {
	catalog service.CatalogService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(catalog service.CatalogService) *DocumentsHandler {
	return &DocumentsHandler{catalog: catalog}
}

// DocumentsResponse lists the documents of a tenant.
type DocumentsResponse struct {
	Tenant    string                    `json:"tenant"`
	Documents []service.DocumentSummary `json:"documents"`
}

func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantName := chi.URLParam(r, "tenant")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	docs, err := h.catalog.ListDocuments(ctx, tenantName, limit)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []service.DocumentSummary{}
	}

	writeJSON(ctx, w, http.StatusOK, DocumentsResponse{Tenant: tenantName, Documents: docs})
}
