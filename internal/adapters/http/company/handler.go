// Package company exposes the tenant onboarding, user management and
// credential verification endpoints.
package company

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appcompany "obrasoft/ms_gestion_core/internal/application/company"
	corecompany "obrasoft/ms_gestion_core/internal/core/company"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the company application service.
type Handler struct {
	service *appcompany.Service
	log     *slog.Logger
}

// NewHandler creates a new company HTTP handler.
func NewHandler(service *appcompany.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// CreateCompany handles POST /api/v1/companies. This is the tenant bootstrap
// endpoint and is exempt from the X-Company-ID requirement.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req appcompany.CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	created, err := h.service.CreateCompany(r.Context(), req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// GetCompany handles GET /api/v1/companies/{id}.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	c, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, c, h.log)
}

// UpdateCompany handles PUT /api/v1/companies/{id}.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := httperrors.PathID(r, "id")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appcompany.CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	updated, err := h.service.UpdateCompany(r.Context(), id, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, updated, h.log)
}

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appcompany.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	created, err := h.service.CreateUser(r.Context(), companyID, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
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

	u, err := h.service.GetUser(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, u, h.log)
}

// ListUsers handles GET /api/v1/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	users, err := h.service.ListUsers(r.Context(), companyID)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if users == nil {
		users = []corecompany.User{}
	}
	httperrors.WriteJSON(w, http.StatusOK, users, h.log)
}

// UpdateUser handles PUT /api/v1/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
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

	var req appcompany.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), companyID, id, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, updated, h.log)
}

// DeleteUser handles DELETE /api/v1/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteUser(r.Context(), companyID, id); err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/login within the tenant given by X-Company-ID.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	u, err := h.service.VerifyCredentials(r.Context(), companyID, req.Email, req.Password)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, u, h.log)
}
