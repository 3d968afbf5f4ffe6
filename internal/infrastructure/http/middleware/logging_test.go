package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"obrasoft/ms_gestion_core/internal/testutil"
)

func TestRequestLogger(t *testing.T) {
	logger := testutil.NewNullLogger()
	middleware := RequestLogger(logger)

	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "2xx status logs as info", statusCode: http.StatusOK},
		{name: "3xx status logs as info", statusCode: http.StatusMovedPermanently},
		{name: "4xx status logs as warn", statusCode: http.StatusBadRequest},
		{name: "5xx status logs as error", statusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte("test response"))
			}))

			handler.ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("expected status code %d, got %d", tt.statusCode, w.Code)
			}
		})
	}
}

func TestRequestLogger_PropagatesCorrelationID(t *testing.T) {
	logger := testutil.NewNullLogger()
	middleware := RequestLogger(logger)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rctx := chi.NewRouteContext()
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	var sawRequest bool
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRequest = true
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(w, req)

	if !sawRequest {
		t.Fatal("expected wrapped handler to be called")
	}
}
