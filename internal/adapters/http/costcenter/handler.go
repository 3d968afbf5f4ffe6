// Package costcenter exposes the cost center and expense endpoints.
package costcenter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appcostcenter "obrasoft/ms_gestion_core/internal/application/costcenter"
	corecostcenter "obrasoft/ms_gestion_core/internal/core/costcenter"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the cost center application service.
type Handler struct {
	service *appcostcenter.Service
	log     *slog.Logger
}

// NewHandler creates a new cost center HTTP handler.
func NewHandler(service *appcostcenter.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Create handles POST /api/v1/cost-centers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appcostcenter.CostCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	created, err := h.service.Create(r.Context(), companyID, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// Get handles GET /api/v1/cost-centers/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	cc, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, cc, h.log)
}

// List handles GET /api/v1/cost-centers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	limit, offset := httperrors.Pagination(r)

	centers, total, err := h.service.List(r.Context(), companyID, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if centers == nil {
		centers = []corecostcenter.CostCenter{}
	}
	httperrors.WriteJSON(w, http.StatusOK, httperrors.PagedResponse{Data: centers, Total: total}, h.log)
}

// Update handles PUT /api/v1/cost-centers/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appcostcenter.CostCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	updated, err := h.service.Update(r.Context(), companyID, id, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, updated, h.log)
}

// Delete handles DELETE /api/v1/cost-centers/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddExpense handles POST /api/v1/cost-centers/{id}/expenses.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appcostcenter.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	created, err := h.service.AddExpense(r.Context(), companyID, id, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// ListExpenses handles GET /api/v1/cost-centers/{id}/expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	expenses, err := h.service.ListExpenses(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if expenses == nil {
		expenses = []corecostcenter.Expense{}
	}
	httperrors.WriteJSON(w, http.StatusOK, expenses, h.log)
}

// DeleteExpense handles DELETE /api/v1/expenses/{id}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	if err := h.service.DeleteExpense(r.Context(), companyID, id); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
