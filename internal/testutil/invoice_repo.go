package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/invoice"
)

// FakeInvoiceRepository is an in-memory invoice.Repository for service and
// handler tests. It derives payment state with the same rule as the real
// repository so reconciliation behavior can be exercised without a database.
type FakeInvoiceRepository struct {
	mu       sync.Mutex
	nextID   int64
	invoices map[int64]*invoice.Invoice
	payments map[int64]*invoice.Payment

	// FailWith, when set, is returned by every method. Lets tests force
	// repository errors.
	FailWith error
}

// NewFakeInvoiceRepository creates an empty fake repository.
func NewFakeInvoiceRepository() *FakeInvoiceRepository {
	return &FakeInvoiceRepository{
		invoices: make(map[int64]*invoice.Invoice),
		payments: make(map[int64]*invoice.Payment),
	}
}

func (f *FakeInvoiceRepository) nextSeq() int64 {
	f.nextID++
	return f.nextID
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	cp := *inv
	cp.Items = append([]invoice.Item(nil), inv.Items...)
	return &cp
}

// Seed inserts an invoice directly, bypassing validation. Returns the stored
// copy with its assigned ID.
func (f *FakeInvoiceRepository) Seed(inv invoice.Invoice) *invoice.Invoice {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = f.nextSeq()
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = invoice.PaymentPending
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	f.invoices[inv.ID] = &inv
	return copyInvoice(&inv)
}

func (f *FakeInvoiceRepository) Create(ctx context.Context, inv invoice.Invoice, annulRelated bool) (*invoice.Invoice, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	inv.ID = f.nextSeq()
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	for i := range inv.Items {
		inv.Items[i].ID = f.nextSeq()
		inv.Items[i].InvoiceID = inv.ID
	}
	f.invoices[inv.ID] = &inv

	if annulRelated && inv.RelatedInvoiceID != nil {
		if related, ok := f.invoices[*inv.RelatedInvoiceID]; ok && related.CompanyID == inv.CompanyID {
			related.Status = invoice.StatusCancelled
			related.UpdatedAt = now
		}
	}
	return copyInvoice(&inv), nil
}

func (f *FakeInvoiceRepository) Update(ctx context.Context, inv invoice.Invoice) (*invoice.Invoice, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.invoices[inv.ID]
	if !ok || stored.CompanyID != inv.CompanyID {
		return nil, errs.ErrNotFound
	}
	inv.CreatedAt = stored.CreatedAt
	inv.UpdatedAt = time.Now()
	f.invoices[inv.ID] = &inv
	return copyInvoice(&inv), nil
}

func (f *FakeInvoiceRepository) Delete(ctx context.Context, companyID, id int64) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.invoices[id]
	if !ok || stored.CompanyID != companyID {
		return errs.ErrNotFound
	}
	// A deleted credit note restores the related document only from CANCELLED.
	if stored.IsCreditNote() && stored.RelatedInvoiceID != nil {
		if related, ok := f.invoices[*stored.RelatedInvoiceID]; ok && related.Status == invoice.StatusCancelled {
			related.Status = invoice.StatusPending
			related.UpdatedAt = time.Now()
		}
	}
	for pid, p := range f.payments {
		if p.InvoiceID == id {
			delete(f.payments, pid)
		}
	}
	delete(f.invoices, id)
	return nil
}

func (f *FakeInvoiceRepository) FindByID(ctx context.Context, companyID, id int64) (*invoice.Invoice, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.invoices[id]
	if !ok || stored.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	return copyInvoice(stored), nil
}

func (f *FakeInvoiceRepository) List(ctx context.Context, companyID int64, filter invoice.ListFilter) ([]invoice.Invoice, int, error) {
	if f.FailWith != nil {
		return nil, 0, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []invoice.Invoice
	for _, inv := range f.invoices {
		if inv.CompanyID != companyID {
			continue
		}
		if filter.Type != "" && inv.Type != filter.Type {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && inv.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.ClientID != nil && (inv.ClientID == nil || *inv.ClientID != *filter.ClientID) {
			continue
		}
		if filter.ProjectID != nil && (inv.ProjectID == nil || *inv.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.From != nil && inv.IssueDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && inv.IssueDate.After(*filter.To) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(inv.Number), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *copyInvoice(inv))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *FakeInvoiceRepository) FolioExists(ctx context.Context, companyID int64, number string, docType invoice.DocumentType, clientID *int64) (bool, error) {
	if f.FailWith != nil {
		return false, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, inv := range f.invoices {
		if inv.CompanyID != companyID || inv.Number != number || inv.Type != docType {
			continue
		}
		if docType == invoice.TypeCompra {
			if inv.ClientID == nil || clientID == nil || *inv.ClientID != *clientID {
				continue
			}
		}
		return true, nil
	}
	return false, nil
}

func (f *FakeInvoiceRepository) AddPayment(ctx context.Context, companyID, invoiceID int64, payment invoice.Payment) (*invoice.Payment, *invoice.Invoice, error) {
	if f.FailWith != nil {
		return nil, nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.invoices[invoiceID]
	if !ok || stored.CompanyID != companyID {
		return nil, nil, errs.ErrNotFound
	}
	payment.ID = f.nextSeq()
	payment.InvoiceID = invoiceID
	payment.CreatedAt = time.Now()
	f.payments[payment.ID] = &payment

	f.recompute(stored)
	cp := payment
	return &cp, copyInvoice(stored), nil
}

func (f *FakeInvoiceRepository) DeletePayment(ctx context.Context, companyID, paymentID int64) (*invoice.Invoice, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	stored, ok := f.invoices[payment.InvoiceID]
	if !ok || stored.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	delete(f.payments, paymentID)

	f.recompute(stored)
	return copyInvoice(stored), nil
}

func (f *FakeInvoiceRepository) RecomputePaymentStatus(ctx context.Context, companyID, invoiceID int64) (*invoice.Invoice, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.invoices[invoiceID]
	if !ok || stored.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	f.recompute(stored)
	return copyInvoice(stored), nil
}

func (f *FakeInvoiceRepository) ListPayments(ctx context.Context, companyID, invoiceID int64) ([]invoice.Payment, error) {
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.invoices[invoiceID]
	if !ok || stored.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	var out []invoice.Payment
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// recompute mirrors the real repository: sum the ledger, derive the status.
// Caller holds the lock.
func (f *FakeInvoiceRepository) recompute(inv *invoice.Invoice) {
	var payments []invoice.Payment
	for _, p := range f.payments {
		if p.InvoiceID == inv.ID {
			payments = append(payments, *p)
		}
	}
	totalPaid := invoice.SumPayments(payments)
	inv.PaymentStatus, inv.IsPaid = invoice.ComputePaymentStatus(totalPaid, inv.TotalAmount)
	inv.UpdatedAt = time.Now()
}
