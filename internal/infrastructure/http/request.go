package http

import (
	"net/http"
	"strconv"

	"obrasoft/ms_gestion_core/internal/core/errs"
	ctxutil "obrasoft/ms_gestion_core/internal/infrastructure/context"

	"github.com/go-chi/chi/v5"
)

// CompanyID returns the tenant resolved by the middleware. Handlers behind
// the tenant middleware can rely on it being present; a missing value is a
// wiring bug and maps to a validation error.
func CompanyID(r *http.Request) (int64, error) {
	id, ok := ctxutil.GetCompanyID(r.Context())
	if !ok {
		return 0, errs.Validation("falta el encabezado X-Company-ID")
	}
	return id, nil
}

// PathID parses a numeric chi URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("el parámetro %s debe ser un entero positivo", name)
	}
	return id, nil
}

// Pagination reads limit/offset query parameters with defaults.
func Pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// PagedResponse is the envelope of every listing endpoint.
type PagedResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

// QueryInt64 parses an optional numeric query parameter.
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.Validation("el parámetro %s debe ser un entero", name)
	}
	return &v, nil
}
