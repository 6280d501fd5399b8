package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"sectiondocs/internal/service"
	"sectiondocs/internal/service/mocks"
)

func TestTenantsHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		mockSetup  func(*mocks.MockCatalogService)
		wantStatus int
		wantNames  []string
	}{
		{
			name: "lists tenants",
			mockSetup: func(m *mocks.MockCatalogService) {
				m.EXPECT().ListTenants(gomock.Any()).Return([]service.TenantSummary{
					{Name: "acme", Documents: 2},
					{Name: "globex", Documents: 0},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantNames:  []string{"acme", "globex"},
		},
		{
			name: "store failure",
			mockSetup: func(m *mocks.MockCatalogService) {
				m.EXPECT().ListTenants(gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			catalog := mocks.NewMockCatalogService(ctrl)
			tt.mockSetup(catalog)

			w := httptest.NewRecorder()
			NewTenantsHandler(catalog).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tenants", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp TenantsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(resp.Tenants) != len(tt.wantNames) {
				t.Fatalf("got %d tenants, want %d", len(resp.Tenants), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if resp.Tenants[i].Name != name {
					t.Errorf("tenant %d = %q, want %q", i, resp.Tenants[i].Name, name)
				}
			}
		})
	}
}

func TestDocumentsHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		mockSetup  func(*mocks.MockCatalogService)
		wantStatus int
		wantDocs   int
	}{
		{
			name: "default limit",
			url:  "/api/tenants/acme/documents",
			mockSetup: func(m *mocks.MockCatalogService) {
				m.EXPECT().ListDocuments(gomock.Any(), "acme", 0).Return([]service.DocumentSummary{
					{RelPath: "a.md", FileName: "a.md", Title: "A", Chunks: 1},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantDocs:   1,
		},
		{
			name: "explicit limit",
			url:  "/api/tenants/acme/documents?limit=10",
			mockSetup: func(m *mocks.MockCatalogService) {
				m.EXPECT().ListDocuments(gomock.Any(), "acme", 10).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantDocs:   0,
		},
		{
			name:       "non-numeric limit",
			url:        "/api/tenants/acme/documents?limit=ten",
			mockSetup:  func(*mocks.MockCatalogService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "negative limit",
			url:  "/api/tenants/acme/documents?limit=-1",
			mockSetup: func(m *mocks.MockCatalogService) {
				m.EXPECT().ListDocuments(gomock.Any(), "acme", -1).
					Return(nil, &service.ValidationError{Field: "limit", Message: "must not be negative"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown tenant",
			url:  "/api/tenants/initech/documents",
			mockSetup: func(m *mocks.MockCatalogService) {
				m.EXPECT().ListDocuments(gomock.Any(), "initech", 0).
					Return(nil, fmt.Errorf("tenant initech: %w", service.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			catalog := mocks.NewMockCatalogService(ctrl)
			tt.mockSetup(catalog)

			r := chi.NewRouter()
			r.Method(http.MethodGet, "/api/tenants/{tenant}/documents", NewDocumentsHandler(catalog))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var resp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
					t.Errorf("error body = %q, decode err %v", resp.Error, err)
				}
				return
			}

			var resp DocumentsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if resp.Documents == nil || len(resp.Documents) != tt.wantDocs {
				t.Errorf("documents = %v, want %d entries", resp.Documents, tt.wantDocs)
			}
		})
	}
}
