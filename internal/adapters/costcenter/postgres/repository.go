// Package postgres implements the cost center repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/costcenter"
	"obrasoft/ms_gestion_core/internal/core/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the costcenter.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL cost center repository.
func NewRepository(pool *pgxpool.Pool) costcenter.Repository {
	return &Repository{pool: pool}
}

const costCenterColumns = `
	id, company_id, project_id, name, COALESCE(code, ''), budget, created_at, updated_at`

func scanCostCenter(row pgx.Row) (*costcenter.CostCenter, error) {
	var cc costcenter.CostCenter
	err := row.Scan(
		&cc.ID, &cc.CompanyID, &cc.ProjectID, &cc.Name, &cc.Code,
		&cc.Budget, &cc.CreatedAt, &cc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// Create persists a new cost center.
func (r *Repository) Create(ctx context.Context, cc costcenter.CostCenter) (*costcenter.CostCenter, error) {
	created, err := scanCostCenter(r.pool.QueryRow(ctx,
		`INSERT INTO cost_centers (company_id, project_id, name, code, budget)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+costCenterColumns,
		cc.CompanyID, cc.ProjectID, cc.Name, nullIfEmpty(cc.Code), cc.Budget,
	))
	if err != nil {
		return nil, fmt.Errorf("insert cost center: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of a cost center.
func (r *Repository) Update(ctx context.Context, cc costcenter.CostCenter) (*costcenter.CostCenter, error) {
	updated, err := scanCostCenter(r.pool.QueryRow(ctx,
		`UPDATE cost_centers SET
			project_id = $1, name = $2, code = $3, budget = $4, updated_at = now()
		 WHERE id = $5 AND company_id = $6
		 RETURNING `+costCenterColumns,
		cc.ProjectID, cc.Name, nullIfEmpty(cc.Code), cc.Budget, cc.ID, cc.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update cost center: %w", err)
	}
	return updated, nil
}

// Delete removes a cost center and, by cascade, its expenses.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cost_centers WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete cost center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindByID retrieves a cost center, tenant scoped.
func (r *Repository) FindByID(ctx context.Context, companyID, id int64) (*costcenter.CostCenter, error) {
	cc, err := scanCostCenter(r.pool.QueryRow(ctx,
		`SELECT `+costCenterColumns+` FROM cost_centers WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find cost center: %w", err)
	}
	return cc, nil
}

// List retrieves cost centers by name or code search plus the total count.
func (r *Repository) List(ctx context.Context, companyID int64, search string, limit, offset int) ([]costcenter.CostCenter, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if search != "" {
		where += ` AND (name ILIKE $2 OR code ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cost_centers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cost centers: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM cost_centers WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		costCenterColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cost centers: %w", err)
	}
	defer rows.Close()

	var centers []costcenter.CostCenter
	for rows.Next() {
		cc, err := scanCostCenter(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan cost center: %w", err)
		}
		centers = append(centers, *cc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cost centers: %w", err)
	}
	return centers, total, nil
}

// AddExpense records a spend against a cost center.
func (r *Repository) AddExpense(ctx context.Context, e costcenter.Expense) (*costcenter.Expense, error) {
	// The cost center must belong to the tenant before the expense lands.
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cost_centers WHERE id = $1 AND company_id = $2)`,
		e.CostCenterID, e.CompanyID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check cost center: %w", err)
	}
	if !exists {
		return nil, errs.ErrNotFound
	}

	var created costcenter.Expense
	err = r.pool.QueryRow(ctx,
		`INSERT INTO expenses (company_id, cost_center_id, description, category, supplier, amount, expense_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, company_id, cost_center_id, description,
			COALESCE(category, ''), COALESCE(supplier, ''), amount, expense_date, created_at`,
		e.CompanyID, e.CostCenterID, e.Description, nullIfEmpty(e.Category),
		nullIfEmpty(e.Supplier), e.Amount, e.ExpenseDate,
	).Scan(
		&created.ID, &created.CompanyID, &created.CostCenterID, &created.Description,
		&created.Category, &created.Supplier, &created.Amount, &created.ExpenseDate, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &created, nil
}

// DeleteExpense removes an expense, tenant scoped.
func (r *Repository) DeleteExpense(ctx context.Context, companyID, expenseID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND company_id = $2`, expenseID, companyID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListExpenses retrieves the expenses of a cost center, newest first.
func (r *Repository) ListExpenses(ctx context.Context, companyID, costCenterID int64) ([]costcenter.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, cost_center_id, description,
			COALESCE(category, ''), COALESCE(supplier, ''), amount, expense_date, created_at
		 FROM expenses
		 WHERE company_id = $1 AND cost_center_id = $2
		 ORDER BY expense_date DESC, id DESC`,
		companyID, costCenterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []costcenter.Expense
	for rows.Next() {
		var e costcenter.Expense
		err := rows.Scan(
			&e.ID, &e.CompanyID, &e.CostCenterID, &e.Description,
			&e.Category, &e.Supplier, &e.Amount, &e.ExpenseDate, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
