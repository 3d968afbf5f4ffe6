// Package invoice implements the invoicing use cases: document lifecycle,
// folio uniqueness, the credit note annul/restore pair and the payment
// ledger with its derived reconciliation state.
package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"obrasoft/ms_gestion_core/internal/core/audit"
	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/invoice"
	ctxutil "obrasoft/ms_gestion_core/internal/infrastructure/context"
)

const auditEntity = "invoice"

// Service orchestrates invoice operations on top of the repository, which
// owns all transactional guarantees.
type Service struct {
	repo  invoice.Repository
	audit audit.Repository
	log   *slog.Logger
}

// NewService creates the invoice service. auditRepo may be nil, in which
// case no trail is written.
func NewService(repo invoice.Repository, auditRepo audit.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, audit: auditRepo, log: log}
}

// Create validates and persists a new invoice. For credit notes referencing
// another document the related document is annulled in the same transaction
// unless the request sets annulInvoice to false.
func (s *Service) Create(ctx context.Context, companyID int64, req CreateInvoiceRequest) (*invoice.Invoice, error) {
	if req.Number == "" {
		return nil, errs.Validation("el folio es requerido")
	}
	docType := invoice.DocumentType(req.Type)
	if !invoice.ValidType(docType) {
		return nil, errs.Validation("tipo de documento inválido: %s", req.Type)
	}
	status := invoice.StatusPending
	if req.Status != "" {
		status = invoice.Status(req.Status)
		if !invoice.ValidStatus(status) {
			return nil, errs.Validation("estado inválido: %s", req.Status)
		}
	}
	if docType == invoice.TypeCompra && req.ClientID == nil {
		return nil, errs.Validation("las facturas de compra requieren un proveedor")
	}

	net, tax, total, err := req.amounts()
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.FolioExists(ctx, companyID, req.Number, docType, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("verificando folio: %w", err)
	}
	if exists {
		return nil, errs.Conflict("ya existe un documento %s con folio %s", docType, req.Number)
	}

	issueDate := time.Now()
	if req.IssueDate != "" {
		if issueDate, err = parseDate(req.IssueDate, "issueDate"); err != nil {
			return nil, err
		}
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := parseDate(req.DueDate, "dueDate")
		if err != nil {
			return nil, err
		}
		dueDate = &parsed
	}

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	annulRelated := false
	if docType == invoice.TypeNotaCredito && req.RelatedInvoiceID != nil {
		// The related document must exist and belong to the same tenant.
		if _, err := s.repo.FindByID(ctx, companyID, *req.RelatedInvoiceID); err != nil {
			return nil, fmt.Errorf("buscando documento relacionado: %w", err)
		}
		annulRelated = req.AnnulInvoice == nil || *req.AnnulInvoice
	}

	inv := invoice.Invoice{
		CompanyID:        companyID,
		Number:           req.Number,
		Type:             docType,
		Status:           status,
		PaymentStatus:    invoice.PaymentPending,
		NetAmount:        net,
		TaxAmount:        tax,
		TotalAmount:      total,
		RelatedInvoiceID: req.RelatedInvoiceID,
		ClientID:         req.ClientID,
		ProjectID:        req.ProjectID,
		CostCenterID:     req.CostCenterID,
		IssueDate:        issueDate,
		DueDate:          dueDate,
		Notes:            req.Notes,
		Items:            items,
	}

	created, err := s.repo.Create(ctx, inv, annulRelated)
	if err != nil {
		return nil, fmt.Errorf("creando factura: %w", err)
	}

	s.writeAudit(ctx, companyID, created.ID, audit.ActionCreated, map[string]any{
		"number": created.Number,
		"type":   created.Type,
		"total":  created.TotalAmount,
	})
	if annulRelated {
		s.writeAudit(ctx, companyID, *req.RelatedInvoiceID, audit.ActionCancelled, map[string]any{
			"creditNoteId": created.ID,
		})
	}

	return created, nil
}

// Update applies the non-nil fields of req to an existing invoice. Changing
// the folio re-runs the uniqueness check.
func (s *Service) Update(ctx context.Context, companyID, id int64, req UpdateInvoiceRequest) (*invoice.Invoice, error) {
	current, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Number != nil && *req.Number != current.Number {
		if *req.Number == "" {
			return nil, errs.Validation("el folio es requerido")
		}
		clientID := current.ClientID
		if req.ClientID != nil {
			clientID = req.ClientID
		}
		exists, err := s.repo.FolioExists(ctx, companyID, *req.Number, current.Type, clientID)
		if err != nil {
			return nil, fmt.Errorf("verificando folio: %w", err)
		}
		if exists {
			return nil, errs.Conflict("ya existe un documento %s con folio %s", current.Type, *req.Number)
		}
		current.Number = *req.Number
	}
	if req.Status != nil {
		status := invoice.Status(*req.Status)
		if !invoice.ValidStatus(status) {
			return nil, errs.Validation("estado inválido: %s", *req.Status)
		}
		current.Status = status
	}

	net, tax, total, err := req.amounts()
	if err != nil {
		return nil, err
	}
	if net != nil {
		current.NetAmount = *net
	}
	if tax != nil {
		current.TaxAmount = *tax
	}
	if total != nil {
		if total.IsNegative() {
			return nil, errs.Validation("los montos no pueden ser negativos")
		}
		current.TotalAmount = *total
	}

	if req.ClientID != nil {
		current.ClientID = req.ClientID
	}
	if req.ProjectID != nil {
		current.ProjectID = req.ProjectID
	}
	if req.CostCenterID != nil {
		current.CostCenterID = req.CostCenterID
	}
	if req.IssueDate != nil {
		parsed, err := parseDate(*req.IssueDate, "issueDate")
		if err != nil {
			return nil, err
		}
		current.IssueDate = parsed
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			current.DueDate = nil
		} else {
			parsed, err := parseDate(*req.DueDate, "dueDate")
			if err != nil {
				return nil, err
			}
			current.DueDate = &parsed
		}
	}
	if req.Notes != nil {
		current.Notes = *req.Notes
	}
	if req.Items != nil {
		items, err := buildItems(req.Items)
		if err != nil {
			return nil, err
		}
		current.Items = items
	}

	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, fmt.Errorf("actualizando factura: %w", err)
	}

	// The total may have changed, so the derived state is re-checked
	// against the ledger.
	if total != nil {
		if updated, err = s.repo.RecomputePaymentStatus(ctx, companyID, id); err != nil {
			return nil, fmt.Errorf("recalculando estado de pago: %w", err)
		}
	}

	s.writeAudit(ctx, companyID, id, audit.ActionUpdated, nil)
	return updated, nil
}

// Delete removes an invoice. Deleting a credit note restores the related
// document to PENDING only if it is still CANCELLED; the repository performs
// both writes atomically.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	current, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return fmt.Errorf("eliminando factura: %w", err)
	}

	s.writeAudit(ctx, companyID, id, audit.ActionDeleted, map[string]any{
		"number": current.Number,
		"type":   current.Type,
	})
	if current.IsCreditNote() && current.RelatedInvoiceID != nil {
		s.writeAudit(ctx, companyID, *current.RelatedInvoiceID, audit.ActionRestored, map[string]any{
			"creditNoteId": id,
		})
	}
	return nil
}

// Get retrieves one invoice with its items.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*invoice.Invoice, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// List retrieves invoices matching the filter plus the total row count.
func (s *Service) List(ctx context.Context, companyID int64, filter invoice.ListFilter) ([]invoice.Invoice, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, companyID, filter)
}

// Recompute re-derives paymentStatus/isPaid from the invoice's current
// payment ledger. The derivation self-heals, so forcing it is always safe.
func (s *Service) Recompute(ctx context.Context, companyID, id int64) (*invoice.Invoice, error) {
	return s.repo.RecomputePaymentStatus(ctx, companyID, id)
}

// RecordPayment appends a payment to an invoice's ledger and returns the
// payment together with the invoice's recomputed state.
func (s *Service) RecordPayment(ctx context.Context, companyID, invoiceID int64, req PaymentRequest) (*invoice.Payment, *invoice.Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, errs.Validation("el monto del pago debe ser mayor que cero")
	}
	date := time.Now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date, "date")
		if err != nil {
			return nil, nil, err
		}
		date = parsed
	}

	payment := invoice.Payment{
		Amount:    req.Amount,
		Date:      date,
		Method:    req.Method,
		Reference: req.Reference,
		Comment:   req.Comment,
	}

	created, inv, err := s.repo.AddPayment(ctx, companyID, invoiceID, payment)
	if err != nil {
		return nil, nil, fmt.Errorf("registrando pago: %w", err)
	}

	s.writeAudit(ctx, companyID, invoiceID, audit.ActionPaymentRecorded, map[string]any{
		"paymentId": created.ID,
		"amount":    created.Amount,
	})
	return created, inv, nil
}

// DeletePayment removes a payment and returns the invoice's recomputed state.
func (s *Service) DeletePayment(ctx context.Context, companyID, paymentID int64) (*invoice.Invoice, error) {
	inv, err := s.repo.DeletePayment(ctx, companyID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("eliminando pago: %w", err)
	}

	s.writeAudit(ctx, companyID, inv.ID, audit.ActionPaymentDeleted, map[string]any{
		"paymentId": paymentID,
	})
	return inv, nil
}

// ListPayments returns the payment ledger of an invoice, oldest first.
func (s *Service) ListPayments(ctx context.Context, companyID, invoiceID int64) ([]invoice.Payment, error) {
	if _, err := s.repo.FindByID(ctx, companyID, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, companyID, invoiceID)
}

// writeAudit persists a trail entry. Failures are logged and swallowed.
func (s *Service) writeAudit(ctx context.Context, companyID, entityID int64, action string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	var raw json.RawMessage
	if detail != nil {
		raw, _ = json.Marshal(detail)
	}
	entry := audit.Entry{
		CompanyID:     companyID,
		CorrelationID: ctxutil.GetCorrelationID(ctx),
		Entity:        auditEntity,
		EntityID:      entityID,
		Action:        action,
		Detail:        raw,
	}
	if err := s.audit.Save(ctx, entry); err != nil {
		s.log.Warn("no se pudo registrar auditoría", slog.String("action", action), slog.Any("error", err))
	}
}
