package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	ctxutil "obrasoft/ms_gestion_core/internal/infrastructure/context"
	"obrasoft/ms_gestion_core/internal/testutil"
)

func TestTenantResolver(t *testing.T) {
	resolver := NewTenantResolver(testutil.NewNullLogger(), []string{"/health"})

	tests := []struct {
		name           string
		path           string
		header         string
		expectedStatus int
		expectCompany  int64
	}{
		{
			name:           "valid header resolves tenant",
			path:           "/api/v1/invoices",
			header:         "42",
			expectedStatus: http.StatusOK,
			expectCompany:  42,
		},
		{
			name:           "missing header rejected",
			path:           "/api/v1/invoices",
			header:         "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non numeric header rejected",
			path:           "/api/v1/invoices",
			header:         "empresa-uno",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero header rejected",
			path:           "/api/v1/invoices",
			header:         "0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bypass path skips resolution",
			path:           "/health",
			header:         "",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(CompanyHeader, tt.header)
			}
			w := httptest.NewRecorder()

			var gotCompany int64
			handler := resolver.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCompany, _ = ctxutil.GetCompanyID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectCompany != 0 && gotCompany != tt.expectCompany {
				t.Errorf("expected company %d in context, got %d", tt.expectCompany, gotCompany)
			}
		})
	}
}
