// Package invoice exposes the invoicing endpoints.
package invoice

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	appinvoice "obrasoft/ms_gestion_core/internal/application/invoice"
	"obrasoft/ms_gestion_core/internal/core/errs"
	coreinvoice "obrasoft/ms_gestion_core/internal/core/invoice"
	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

func errInvalidDate(field string) error {
	return errs.Validation("el parámetro %s debe tener formato AAAA-MM-DD", field)
}

// Handler bridges HTTP traffic with the invoice application service.
type Handler struct {
	service *appinvoice.Service
	log     *slog.Logger
}

// NewHandler creates a new invoice HTTP handler.
func NewHandler(service *appinvoice.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Create handles POST /api/v1/invoices.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	var req appinvoice.CreateInvoiceRequest
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

// Get handles GET /api/v1/invoices/{id}.
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

	inv, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, inv, h.log)
}

// List handles GET /api/v1/invoices with filtering and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := httperrors.CompanyID(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}

	invoices, total, err := h.service.List(r.Context(), companyID, filter)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if invoices == nil {
		invoices = []coreinvoice.Invoice{}
	}
	httperrors.WriteJSON(w, http.StatusOK, httperrors.PagedResponse{Data: invoices, Total: total}, h.log)
}

// Update handles PUT /api/v1/invoices/{id}.
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

	var req appinvoice.UpdateInvoiceRequest
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

// Delete handles DELETE /api/v1/invoices/{id}.
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

// AddPayment handles POST /api/v1/invoices/{id}/payments.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
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

	var req appinvoice.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es JSON válido"}, h.log)
		return
	}

	payment, inv, err := h.service.RecordPayment(r.Context(), companyID, id, req)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	// The updated invoice travels with the payment so the frontend can
	// refresh the derived state without a second request.
	httperrors.WriteJSON(w, http.StatusCreated, map[string]any{
		"payment": payment,
		"invoice": inv,
	}, h.log)
}

// ListPayments handles GET /api/v1/invoices/{id}/payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
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

	payments, err := h.service.ListPayments(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	if payments == nil {
		payments = []coreinvoice.Payment{}
	}
	httperrors.WriteJSON(w, http.StatusOK, payments, h.log)
}

// DeletePayment handles DELETE /api/v1/payments/{id}.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
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

	inv, err := h.service.DeletePayment(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, inv, h.log)
}

// RecomputePayment handles PATCH /api/v1/invoices/{id}/payment. It forces a
// re-derivation of the invoice's payment status from its current ledger.
func (h *Handler) RecomputePayment(w http.ResponseWriter, r *http.Request) {
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

	inv, err := h.service.Recompute(r.Context(), companyID, id)
	if err != nil {
		httperrors.WriteDomainError(w, err, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, inv, h.log)
}

func parseListFilter(r *http.Request) (coreinvoice.ListFilter, error) {
	q := r.URL.Query()
	filter := coreinvoice.ListFilter{
		Search: q.Get("search"),
	}
	filter.Limit, filter.Offset = httperrors.Pagination(r)

	if raw := q.Get("type"); raw != "" {
		filter.Type = coreinvoice.DocumentType(raw)
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = coreinvoice.Status(raw)
	}
	if raw := q.Get("paymentStatus"); raw != "" {
		filter.PaymentStatus = coreinvoice.PaymentStatus(raw)
	}

	var err error
	if filter.ClientID, err = httperrors.QueryInt64(r, "clientId"); err != nil {
		return filter, err
	}
	if filter.ProjectID, err = httperrors.QueryInt64(r, "projectId"); err != nil {
		return filter, err
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errInvalidDate("from")
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errInvalidDate("to")
		}
		filter.To = &to
	}
	return filter, nil
}
