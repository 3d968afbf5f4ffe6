// Package postgres runs the aggregate queries behind the dashboard endpoints.
// Every query is tenant scoped and excludes CANCELLED documents, so annulled
// invoices never inflate the numbers.
package postgres

import (
	"context"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/dashboard"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the dashboard.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL dashboard repository.
func NewRepository(pool *pgxpool.Pool) dashboard.Repository {
	return &Repository{pool: pool}
}

// Summary computes the front page aggregate.
func (r *Repository) Summary(ctx context.Context, companyID int64) (*dashboard.Summary, error) {
	var s dashboard.Summary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(i.total_amount) FILTER (WHERE i.type = 'VENTA'), 0),
			COALESCE((
				SELECT SUM(p.amount) FROM payments p
				JOIN invoices pi ON pi.id = p.invoice_id
				WHERE pi.company_id = $1 AND pi.type = 'VENTA' AND pi.status <> 'CANCELLED'
			), 0),
			COUNT(*) FILTER (WHERE i.type = 'VENTA' AND i.payment_status <> 'PAID')
		FROM invoices i
		WHERE i.company_id = $1 AND i.status <> 'CANCELLED'`,
		companyID,
	).Scan(&s.TotalInvoiced, &s.TotalCollected, &s.PendingInvoices)
	if err != nil {
		return nil, fmt.Errorf("summary aggregates: %w", err)
	}
	s.TotalOutstanding = s.TotalInvoiced.Sub(s.TotalCollected)

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE company_id = $1 AND status = 'ACTIVO'`,
		companyID,
	).Scan(&s.ActiveProjects); err != nil {
		return nil, fmt.Errorf("count active projects: %w", err)
	}
	return &s, nil
}

// MonthlySales returns invoiced amounts per month, sales against purchases,
// for the trailing N months.
func (r *Repository) MonthlySales(ctx context.Context, companyID int64, months int) ([]dashboard.MonthlyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			date_trunc('month', issue_date) AS month,
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'VENTA'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'COMPRA'), 0)
		FROM invoices
		WHERE company_id = $1
			AND status <> 'CANCELLED'
			AND issue_date >= date_trunc('month', CURRENT_DATE) - ($2 - 1) * INTERVAL '1 month'
		GROUP BY month
		ORDER BY month`,
		companyID, months,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	defer rows.Close()

	var totals []dashboard.MonthlyTotal
	for rows.Next() {
		var mt dashboard.MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Sales, &mt.Purchases); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return totals, nil
}

// InvoicesByPaymentStatus counts sales invoices per payment status.
func (r *Repository) InvoicesByPaymentStatus(ctx context.Context, companyID int64) ([]dashboard.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT payment_status, COUNT(*)
		FROM invoices
		WHERE company_id = $1 AND type = 'VENTA' AND status <> 'CANCELLED'
		GROUP BY payment_status
		ORDER BY payment_status`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("invoices by payment status: %w", err)
	}
	defer rows.Close()

	var counts []dashboard.StatusCount
	for rows.Next() {
		var sc dashboard.StatusCount
		if err := rows.Scan(&sc.PaymentStatus, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// TopProjects ranks projects by invoiced sales amount.
func (r *Repository) TopProjects(ctx context.Context, companyID int64, limit int) ([]dashboard.ProjectTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(i.total_amount), 0) AS total
		FROM projects p
		JOIN invoices i ON i.project_id = p.id AND i.type = 'VENTA' AND i.status <> 'CANCELLED'
		WHERE p.company_id = $1
		GROUP BY p.id, p.name
		ORDER BY total DESC
		LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	defer rows.Close()

	var totals []dashboard.ProjectTotal
	for rows.Next() {
		var pt dashboard.ProjectTotal
		if err := rows.Scan(&pt.ProjectID, &pt.ProjectName, &pt.Total); err != nil {
			return nil, fmt.Errorf("scan project total: %w", err)
		}
		totals = append(totals, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project totals: %w", err)
	}
	return totals, nil
}

// CostCenterSpend compares each cost center's budget against its expenses.
func (r *Repository) CostCenterSpend(ctx context.Context, companyID int64) ([]dashboard.CostCenterSpend, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cc.id, cc.name, cc.budget, COALESCE(SUM(e.amount), 0)
		FROM cost_centers cc
		LEFT JOIN expenses e ON e.cost_center_id = cc.id
		WHERE cc.company_id = $1
		GROUP BY cc.id, cc.name, cc.budget
		ORDER BY cc.name`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("cost center spend: %w", err)
	}
	defer rows.Close()

	var spends []dashboard.CostCenterSpend
	for rows.Next() {
		var cs dashboard.CostCenterSpend
		if err := rows.Scan(&cs.CostCenterID, &cs.Name, &cs.Budget, &cs.Spent); err != nil {
			return nil, fmt.Errorf("scan cost center spend: %w", err)
		}
		spends = append(spends, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost center spends: %w", err)
	}
	return spends, nil
}
