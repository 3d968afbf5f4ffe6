// Package inventory exposes the material catalog and stock ledger endpoints.
package inventory

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appinventory "obrasoft/ms_gestion_core/internal/application/inventory"
	coreinventory "obrasoft/ms_gestion_core/internal/core/inventory"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the inventory application service.
type Handler struct {
	service *appinventory.Service
	log     *slog.Logger
}

// NewHandler creates a new inventory HTTP handler.
func NewHandler(service *appinventory.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// CreateMaterial handles POST /api/v1/materials.
func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appinventory.MaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	created, err := h.service.CreateMaterial(r.Context(), companyID, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// GetMaterial handles GET /api/v1/materials/{id}.
func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
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

	m, err := h.service.GetMaterial(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, m, h.log)
}

// ListMaterials handles GET /api/v1/materials.
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	limit, offset := httperrors.Pagination(r)

	materials, total, err := h.service.ListMaterials(r.Context(), companyID, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if materials == nil {
		materials = []coreinventory.Material{}
	}
	httperrors.WriteJSON(w, http.StatusOK, httperrors.PagedResponse{Data: materials, Total: total}, h.log)
}

// UpdateMaterial handles PUT /api/v1/materials/{id}.
func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
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

	var req appinventory.MaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	updated, err := h.service.UpdateMaterial(r.Context(), companyID, id, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, updated, h.log)
}

// DeleteMaterial handles DELETE /api/v1/materials/{id}.
func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteMaterial(r.Context(), companyID, id); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordMovement handles POST /api/v1/inventory/movements.
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appinventory.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	created, err := h.service.RecordMovement(r.Context(), companyID, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// ListMovements handles GET /api/v1/inventory/movements.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	materialID, err := httperrors.QueryInt64(r, "materialId")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	limit, offset := httperrors.Pagination(r)

	movements, total, err := h.service.ListMovements(r.Context(), companyID, materialID, limit, offset)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if movements == nil {
		movements = []coreinventory.Movement{}
	}
	httperrors.WriteJSON(w, http.StatusOK, httperrors.PagedResponse{Data: movements, Total: total}, h.log)
}

// DeleteMovement handles DELETE /api/v1/inventory/movements/{id}.
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteMovement(r.Context(), companyID, id); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
