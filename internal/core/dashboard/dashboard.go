package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTotal is the invoiced amount of one document type in one month.
type MonthlyTotal struct {
	Month     time.Time       `json:"month"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

// StatusCount is the number of invoices in one payment status.
type StatusCount struct {
	PaymentStatus string `json:"paymentStatus"`
	Count         int    `json:"count"`
}

// ProjectTotal ranks a project by invoiced amount.
type ProjectTotal struct {
	ProjectID   int64           `json:"projectId"`
	ProjectName string          `json:"projectName"`
	Total       decimal.Decimal `json:"total"`
}

// CostCenterSpend compares a cost center's budget against its spend.
type CostCenterSpend struct {
	CostCenterID int64           `json:"costCenterId"`
	Name         string          `json:"name"`
	Budget       decimal.Decimal `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
}

// Summary is the front page aggregate.
type Summary struct {
	TotalInvoiced    decimal.Decimal `json:"totalInvoiced"`
	TotalCollected   decimal.Decimal `json:"totalCollected"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	ActiveProjects   int             `json:"activeProjects"`
	PendingInvoices  int             `json:"pendingInvoices"`
}

// Repository runs the aggregate queries behind the dashboard endpoints.
type Repository interface {
	Summary(ctx context.Context, companyID int64) (*Summary, error)
	MonthlySales(ctx context.Context, companyID int64, months int) ([]MonthlyTotal, error)
	InvoicesByPaymentStatus(ctx context.Context, companyID int64) ([]StatusCount, error)
	TopProjects(ctx context.Context, companyID int64, limit int) ([]ProjectTotal, error)
	CostCenterSpend(ctx context.Context, companyID int64) ([]CostCenterSpend, error)
}
