package costcenter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CostCenter groups spend independently of the project structure.
type CostCenter struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"companyId"`
	ProjectID *int64          `json:"projectId,omitempty"`
	Name      string          `json:"name"`
	Code      string          `json:"code,omitempty"`
	Budget    decimal.Decimal `json:"budget"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Expense is a spend record charged against a cost center.
type Expense struct {
	ID           int64           `json:"id"`
	CompanyID    int64           `json:"companyId"`
	CostCenterID int64           `json:"costCenterId"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Supplier     string          `json:"supplier,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseDate  time.Time       `json:"expenseDate"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Repository defines cost center and expense persistence, tenant scoped.
type Repository interface {
	Create(ctx context.Context, cc CostCenter) (*CostCenter, error)
	Update(ctx context.Context, cc CostCenter) (*CostCenter, error)
	Delete(ctx context.Context, companyID, id int64) error
	FindByID(ctx context.Context, companyID, id int64) (*CostCenter, error)
	List(ctx context.Context, companyID int64, search string, limit, offset int) ([]CostCenter, int, error)

	AddExpense(ctx context.Context, e Expense) (*Expense, error)
	DeleteExpense(ctx context.Context, companyID, expenseID int64) error
	ListExpenses(ctx context.Context, companyID, costCenterID int64) ([]Expense, error)
}
