// Package document exposes the document upload and retrieval endpoints.
// Uploads arrive as multipart/form-data; the binary is handed to the
// application service, which queues the cloud transfer in the background.
package document

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	appdocument "obrasoft/ms_gestion_core/internal/application/document"
	coredocument "obrasoft/ms_gestion_core/internal/core/document"
	"obrasoft/ms_gestion_core/internal/core/errs"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// maxMultipartMemory caps how much of the upload stays in memory before
// spilling to disk.
const maxMultipartMemory = 8 << 20

// Handler bridges HTTP traffic with the document application service.
type Handler struct {
	service *appdocument.Service
	log     *slog.Logger
}

// NewHandler creates a new document HTTP handler.
func NewHandler(service *appdocument.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Upload handles POST /api/v1/documents. Expects a multipart form with a
// "file" part and optional "projectId" / "invoiceId" fields.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"el cuerpo debe ser multipart/form-data con el archivo adjunto"}, h.log)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"el campo file es requerido"}, h.log)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"no fue posible leer el archivo adjunto"}, h.log)
		return
	}

	projectID, err := formInt64(r, "projectId")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	invoiceID, err := formInt64(r, "invoiceId")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	created, err := h.service.Create(r.Context(), companyID, projectID, invoiceID, name, header.Header.Get("Content-Type"), content)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// formInt64 parses an optional numeric multipart form field.
func formInt64(r *http.Request, name string) (*int64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.Validation("el campo %s debe ser un entero", name)
	}
	return &v, nil
}

// Get handles GET /api/v1/documents/{id}.
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

	doc, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, doc, h.log)
}

// List handles GET /api/v1/documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	projectID, err := httperrors.QueryInt64(r, "projectId")
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	limit, offset := httperrors.Pagination(r)

	docs, total, err := h.service.List(r.Context(), companyID, projectID, limit, offset)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if docs == nil {
		docs = []coredocument.Document{}
	}
	httperrors.WriteJSON(w, http.StatusOK, httperrors.PagedResponse{Data: docs, Total: total}, h.log)
}

// Delete handles DELETE /api/v1/documents/{id}.
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
