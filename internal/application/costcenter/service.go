// Package costcenter implements cost center and expense tracking use cases.
package costcenter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"obrasoft/ms_gestion_core/internal/core/costcenter"
	"obrasoft/ms_gestion_core/internal/core/errs"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CostCenterRequest carries the fields to create or update a cost center.
type CostCenterRequest struct {
	ProjectID *int64           `json:"projectId"`
	Name      string           `json:"name"`
	Code      string           `json:"code"`
	Budget    *decimal.Decimal `json:"budget"`
}

// ExpenseRequest carries the fields to record an expense.
type ExpenseRequest struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expenseDate"`
}

// Service orchestrates cost center operations.
type Service struct {
	repo costcenter.Repository
	log  *slog.Logger
}

// NewService creates the cost center service.
func NewService(repo costcenter.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (r CostCenterRequest) build(companyID, id int64) (costcenter.CostCenter, error) {
	if r.Name == "" {
		return costcenter.CostCenter{}, errs.Validation("el nombre del centro de costos es requerido")
	}
	budget := decimal.Zero
	if r.Budget != nil {
		if r.Budget.IsNegative() {
			return costcenter.CostCenter{}, errs.Validation("el presupuesto no puede ser negativo")
		}
		budget = *r.Budget
	}
	return costcenter.CostCenter{
		ID:        id,
		CompanyID: companyID,
		ProjectID: r.ProjectID,
		Name:      r.Name,
		Code:      r.Code,
		Budget:    budget,
	}, nil
}

// Create validates and persists a new cost center.
func (s *Service) Create(ctx context.Context, companyID int64, req CostCenterRequest) (*costcenter.CostCenter, error) {
	cc, err := req.build(companyID, 0)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creando centro de costos: %w", err)
	}
	return created, nil
}

// Update replaces the fields of an existing cost center.
func (s *Service) Update(ctx context.Context, companyID, id int64, req CostCenterRequest) (*costcenter.CostCenter, error) {
	cc, err := req.build(companyID, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, cc)
}

// Delete removes a cost center and its expenses.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	return s.repo.Delete(ctx, companyID, id)
}

// Get retrieves one cost center.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*costcenter.CostCenter, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// List retrieves cost centers matching the search plus the total count.
func (s *Service) List(ctx context.Context, companyID int64, search string, limit, offset int) ([]costcenter.CostCenter, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, companyID, search, limit, offset)
}

// AddExpense validates and records an expense against a cost center.
func (s *Service) AddExpense(ctx context.Context, companyID, costCenterID int64, req ExpenseRequest) (*costcenter.Expense, error) {
	if req.Description == "" {
		return nil, errs.Validation("la descripción del gasto es requerida")
	}
	if !req.Amount.IsPositive() {
		return nil, errs.Validation("el monto del gasto debe ser mayor que cero")
	}
	expenseDate := time.Now()
	if req.ExpenseDate != "" {
		parsed, err := time.Parse(dateLayout, req.ExpenseDate)
		if err != nil {
			return nil, errs.Validation("el campo expenseDate debe tener formato AAAA-MM-DD")
		}
		expenseDate = parsed
	}

	created, err := s.repo.AddExpense(ctx, costcenter.Expense{
		CompanyID:    companyID,
		CostCenterID: costCenterID,
		Description:  req.Description,
		Category:     req.Category,
		Supplier:     req.Supplier,
		Amount:       req.Amount,
		ExpenseDate:  expenseDate,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, companyID, expenseID int64) error {
	return s.repo.DeleteExpense(ctx, companyID, expenseID)
}

// ListExpenses retrieves the expenses of a cost center, newest first.
func (s *Service) ListExpenses(ctx context.Context, companyID, costCenterID int64) ([]costcenter.Expense, error) {
	if _, err := s.repo.FindByID(ctx, companyID, costCenterID); err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, companyID, costCenterID)
}
