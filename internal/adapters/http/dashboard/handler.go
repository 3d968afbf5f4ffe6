// Package dashboard exposes the read-only reporting endpoints.
package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	appdashboard "obrasoft/ms_gestion_core/internal/application/dashboard"
	coredashboard "obrasoft/ms_gestion_core/internal/core/dashboard"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the dashboard application service.
type Handler struct {
	service *appdashboard.Service
	log     *slog.Logger
}

// NewHandler creates a new dashboard HTTP handler.
func NewHandler(service *appdashboard.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Summary handles GET /api/v1/dashboard/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	summary, err := h.service.Summary(r.Context(), companyID)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, summary, h.log)
}

// MonthlySales handles GET /api/v1/dashboard/sales?months=N.
func (h *Handler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	months := queryInt(r, "months")

	rows, err := h.service.MonthlySales(r.Context(), companyID, months)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if rows == nil {
		rows = []coredashboard.MonthlyTotal{}
	}
	httperrors.WriteJSON(w, http.StatusOK, rows, h.log)
}

// PaymentStatus handles GET /api/v1/dashboard/payment-status.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	rows, err := h.service.InvoicesByPaymentStatus(r.Context(), companyID)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if rows == nil {
		rows = []coredashboard.StatusCount{}
	}
	httperrors.WriteJSON(w, http.StatusOK, rows, h.log)
}

// TopProjects handles GET /api/v1/dashboard/projects?limit=N.
func (h *Handler) TopProjects(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	limit := queryInt(r, "limit")

	rows, err := h.service.TopProjects(r.Context(), companyID, limit)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if rows == nil {
		rows = []coredashboard.ProjectTotal{}
	}
	httperrors.WriteJSON(w, http.StatusOK, rows, h.log)
}

// CostCenterSpend handles GET /api/v1/dashboard/cost-centers.
func (h *Handler) CostCenterSpend(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	rows, err := h.service.CostCenterSpend(r.Context(), companyID)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if rows == nil {
		rows = []coredashboard.CostCenterSpend{}
	}
	httperrors.WriteJSON(w, http.StatusOK, rows, h.log)
}

// queryInt returns the parameter as int, 0 when absent or malformed. The
// service applies its own defaults and bounds.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}
