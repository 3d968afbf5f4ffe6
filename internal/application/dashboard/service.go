// Package dashboard serves the aggregate views of the front page.
package dashboard

import (
	"context"
	"log/slog"

	"obrasoft/ms_gestion_core/internal/core/dashboard"
)

// Service wraps the aggregate repository, clamping the query parameters.
type Service struct {
	repo dashboard.Repository
	log  *slog.Logger
}

// NewService creates the dashboard service.
func NewService(repo dashboard.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Summary returns the front page aggregate.
func (s *Service) Summary(ctx context.Context, companyID int64) (*dashboard.Summary, error) {
	return s.repo.Summary(ctx, companyID)
}

// MonthlySales returns sales against purchases for the trailing months.
// months clamps to [1, 36] with a default of 12.
func (s *Service) MonthlySales(ctx context.Context, companyID int64, months int) ([]dashboard.MonthlyTotal, error) {
	if months <= 0 {
		months = 12
	}
	if months > 36 {
		months = 36
	}
	return s.repo.MonthlySales(ctx, companyID, months)
}

// InvoicesByPaymentStatus counts sales invoices per payment status.
func (s *Service) InvoicesByPaymentStatus(ctx context.Context, companyID int64) ([]dashboard.StatusCount, error) {
	return s.repo.InvoicesByPaymentStatus(ctx, companyID)
}

// TopProjects ranks projects by invoiced amount. limit clamps to [1, 50]
// with a default of 5.
func (s *Service) TopProjects(ctx context.Context, companyID int64, limit int) ([]dashboard.ProjectTotal, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}
	return s.repo.TopProjects(ctx, companyID, limit)
}

// CostCenterSpend compares each cost center's budget against its spend.
func (s *Service) CostCenterSpend(ctx context.Context, companyID int64) ([]dashboard.CostCenterSpend, error) {
	return s.repo.CostCenterSpend(ctx, companyID)
}
