package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	ctxutil "obrasoft/ms_gestion_core/internal/infrastructure/context"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// CompanyHeader carries the tenant identifier on every scoped request.
const CompanyHeader = "X-Company-ID"

// TenantResolver extracts the tenant company ID from the request header and
// stores it in the request context. Repositories scope every query by it;
// rows of other tenants are indistinguishable from missing rows.
type TenantResolver struct {
	log        *slog.Logger
	bypassPath map[string]struct{}
}

// NewTenantResolver builds the resolver. Paths in bypass skip tenant
// resolution entirely (health checks, tenant bootstrap).
func NewTenantResolver(log *slog.Logger, bypass []string) *TenantResolver {
	resolver := &TenantResolver{
		log:        log,
		bypassPath: make(map[string]struct{}),
	}
	for _, path := range bypass {
		if path != "" {
			resolver.bypassPath[path] = struct{}{}
		}
	}
	return resolver
}

// Middleware enforces the presence of a well-formed tenant header.
func (t *TenantResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := t.bypassPath[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		raw := strings.TrimSpace(r.Header.Get(CompanyHeader))
		if raw == "" {
			httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El encabezado " + CompanyHeader + " es requerido"}, t.log)
			return
		}

		companyID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || companyID <= 0 {
			httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El encabezado " + CompanyHeader + " debe ser un identificador válido"}, t.log)
			return
		}

		ctx := ctxutil.WithCompanyID(r.Context(), companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
