// Package client exposes the client directory endpoints.
package client

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appclient "obrasoft/ms_gestion_core/internal/application/client"
	coreclient "obrasoft/ms_gestion_core/internal/core/client"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the client application service.
type Handler struct {
	service *appclient.Service
	log     *slog.Logger
}

// NewHandler creates a new client HTTP handler.
func NewHandler(service *appclient.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Create handles POST /api/v1/clients.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appclient.ClientRequest
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

// Get handles GET /api/v1/clients/{id}.
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

	c, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, c, h.log)
}

// List handles GET /api/v1/clients.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	limit, offset := httperrors.Pagination(r)

	clients, total, err := h.service.List(r.Context(), companyID, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if clients == nil {
		clients = []coreclient.Client{}
	}
	httperrors.WriteJSON(w, http.StatusOK, httperrors.PagedResponse{Data: clients, Total: total}, h.log)
}

// Update handles PUT /api/v1/clients/{id}.
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

	var req appclient.ClientRequest
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

// Delete handles DELETE /api/v1/clients/{id}.
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
