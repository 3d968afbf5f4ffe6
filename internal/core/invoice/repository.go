package invoice

import (
	"context"
	"time"
)

// ListFilter narrows invoice listings. Zero values mean "no filter".
type ListFilter struct {
	Type          DocumentType
	Status        Status
	PaymentStatus PaymentStatus
	ClientID      *int64
	ProjectID     *int64
	From          *time.Time
	To            *time.Time
	Search        string
	Limit         int
	Offset        int
}

// Repository defines the persistence contract for invoices and their payment
// ledger. Implementations own the transaction boundaries: every method that
// touches more than one row performs its writes atomically, so a derived
// payment status is never observable apart from the write that changed it.
type Repository interface {
	// Create persists a new invoice with its items. When annulRelated is
	// true and the invoice references a related document, the related
	// document's status is set to CANCELLED in the same transaction.
	Create(ctx context.Context, inv Invoice, annulRelated bool) (*Invoice, error)

	// Update replaces the mutable fields of an invoice and its items.
	// Returns errs.ErrNotFound if the invoice does not belong to the tenant.
	Update(ctx context.Context, inv Invoice) (*Invoice, error)

	// Delete removes an invoice. If the invoice is a credit note with a
	// related document, and that document is still CANCELLED, the related
	// document reverts to PENDING inside the same transaction.
	Delete(ctx context.Context, companyID, id int64) error

	// FindByID retrieves an invoice with its items, tenant scoped.
	FindByID(ctx context.Context, companyID, id int64) (*Invoice, error)

	// List retrieves invoices with their items plus the total row count.
	List(ctx context.Context, companyID int64, filter ListFilter) ([]Invoice, int, error)

	// FolioExists checks the uniqueness rule for a folio. For COMPRA
	// documents the check is additionally scoped by clientID; for every
	// other type clientID is ignored.
	FolioExists(ctx context.Context, companyID int64, number string, docType DocumentType, clientID *int64) (bool, error)

	// AddPayment inserts a payment and recomputes the owning invoice's
	// derived payment fields in one transaction. Returns the created
	// payment and the invoice as persisted after recomputation.
	AddPayment(ctx context.Context, companyID, invoiceID int64, payment Payment) (*Payment, *Invoice, error)

	// DeletePayment removes a payment and recomputes the owning invoice's
	// derived payment fields in one transaction. Returns the invoice as
	// persisted after recomputation.
	DeletePayment(ctx context.Context, companyID, paymentID int64) (*Invoice, error)

	// RecomputePaymentStatus re-derives paymentStatus/isPaid from the
	// current ledger, persisting the result.
	RecomputePaymentStatus(ctx context.Context, companyID, invoiceID int64) (*Invoice, error)

	// ListPayments returns the payment ledger of an invoice, oldest first.
	ListPayments(ctx context.Context, companyID, invoiceID int64) ([]Payment, error)
}
