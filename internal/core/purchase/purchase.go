package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusBorrador  Status = "BORRADOR"
	StatusEnviada   Status = "ENVIADA"
	StatusRecibida  Status = "RECIBIDA"
	StatusCancelada Status = "CANCELADA"
)

// ValidStatus reports whether s is a known purchase order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusBorrador, StatusEnviada, StatusRecibida, StatusCancelada:
		return true
	}
	return false
}

// Order is a purchase order sent to a supplier.
type Order struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"companyId"`
	ClientID    *int64          `json:"clientId,omitempty"`
	ProjectID   *int64          `json:"projectId,omitempty"`
	Number      string          `json:"number"`
	Supplier    string          `json:"supplier,omitempty"`
	Status      Status          `json:"status"`
	NetAmount   decimal.Decimal `json:"netAmount"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderDate   time.Time       `json:"orderDate"`
	Items       []Item          `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Item is one line of a purchase order. MaterialID links the line to the
// inventory catalog; reception records an ENTRADA movement for linked lines.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	MaterialID  *int64          `json:"materialId,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Repository defines purchase order persistence, tenant scoped.
// SetStatus to RECIBIDA records the inventory entries for material-linked
// items in the same transaction as the status change.
type Repository interface {
	Create(ctx context.Context, o Order) (*Order, error)
	Update(ctx context.Context, o Order) (*Order, error)
	Delete(ctx context.Context, companyID, id int64) error
	FindByID(ctx context.Context, companyID, id int64) (*Order, error)
	List(ctx context.Context, companyID int64, status Status, search string, limit, offset int) ([]Order, int, error)
	NumberExists(ctx context.Context, companyID int64, number string) (bool, error)
	SetStatus(ctx context.Context, companyID, id int64, status Status) (*Order, error)
}
