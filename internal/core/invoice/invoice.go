package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The frontend exchanges amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DocumentType identifies the kind of tax document.
type DocumentType string

const (
	TypeVenta       DocumentType = "VENTA"
	TypeCompra      DocumentType = "COMPRA"
	TypeNotaCredito DocumentType = "NOTA_CREDITO"
	TypeNotaDebito  DocumentType = "NOTA_DEBITO"
)

// ValidType reports whether t is a known document type.
func ValidType(t DocumentType) bool {
	switch t {
	case TypeVenta, TypeCompra, TypeNotaCredito, TypeNotaDebito:
		return true
	}
	return false
}

// Status is the lifecycle state of a document.
type Status string

const (
	StatusIssued    Status = "ISSUED"
	StatusPending   Status = "PENDING"
	StatusCancelled Status = "CANCELLED"
	StatusDraft     Status = "DRAFT"
)

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusIssued, StatusPending, StatusCancelled, StatusDraft:
		return true
	}
	return false
}

// PaymentStatus is derived from the payment ledger, never set directly.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Invoice represents a tax document owned by exactly one company.
// PaymentStatus and IsPaid are derived from the payment ledger and are
// recomputed on every payment mutation.
type Invoice struct {
	ID               int64           `json:"id"`
	CompanyID        int64           `json:"companyId"`
	Number           string          `json:"number"`
	Type             DocumentType    `json:"type"`
	Status           Status          `json:"status"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	IsPaid           bool            `json:"isPaid"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	RelatedInvoiceID *int64          `json:"relatedInvoiceId,omitempty"`
	ClientID         *int64          `json:"clientId,omitempty"`
	ProjectID        *int64          `json:"projectId,omitempty"`
	CostCenterID     *int64          `json:"costCenterId,omitempty"`
	IssueDate        time.Time       `json:"issueDate"`
	DueDate          *time.Time      `json:"dueDate,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Items            []Item          `json:"items"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Item is one line of an invoice. Position preserves the order the lines
// were entered in.
type Item struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoiceId"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	Position    int             `json:"position"`
}

// Payment is one entry of an invoice's payment ledger.
type Payment struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoiceId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Comment   string          `json:"comment,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// IsCreditNote reports whether the invoice is a credit note referencing
// another document.
func (i *Invoice) IsCreditNote() bool {
	return i.Type == TypeNotaCredito
}
