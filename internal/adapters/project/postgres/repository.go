// Package postgres implements the project repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/project"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the project.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL project repository.
func NewRepository(pool *pgxpool.Pool) project.Repository {
	return &Repository{pool: pool}
}

const projectColumns = `
	id, company_id, client_id, name, COALESCE(code, ''), status, budget,
	start_date, end_date, created_at, updated_at`

func scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.ClientID, &p.Name, &p.Code, &p.Status,
		&p.Budget, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persists a new project.
func (r *Repository) Create(ctx context.Context, p project.Project) (*project.Project, error) {
	created, err := scanProject(r.pool.QueryRow(ctx,
		`INSERT INTO projects (company_id, client_id, name, code, status, budget, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+projectColumns,
		p.CompanyID, p.ClientID, p.Name, nullIfEmpty(p.Code), p.Status, p.Budget, p.StartDate, p.EndDate,
	))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of a project.
func (r *Repository) Update(ctx context.Context, p project.Project) (*project.Project, error) {
	updated, err := scanProject(r.pool.QueryRow(ctx,
		`UPDATE projects SET
			client_id = $1, name = $2, code = $3, status = $4, budget = $5,
			start_date = $6, end_date = $7, updated_at = now()
		 WHERE id = $8 AND company_id = $9
		 RETURNING `+projectColumns,
		p.ClientID, p.Name, nullIfEmpty(p.Code), p.Status, p.Budget,
		p.StartDate, p.EndDate, p.ID, p.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

// Delete removes a project, tenant scoped.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindByID retrieves a project, tenant scoped.
func (r *Repository) FindByID(ctx context.Context, companyID, id int64) (*project.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

// List retrieves projects filtered by status and search plus the total count.
func (r *Repository) List(ctx context.Context, companyID int64, status project.Status, search string, limit, offset int) ([]project.Project, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM projects WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		projectColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, total, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
