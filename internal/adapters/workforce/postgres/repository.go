// Package postgres implements the workforce repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/workforce"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the workforce.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL workforce repository.
func NewRepository(pool *pgxpool.Pool) workforce.Repository {
	return &Repository{pool: pool}
}

const workerColumns = `
	id, company_id, crew_id, name, COALESCE(rut, ''), COALESCE(trade, ''),
	hourly_rate, status, created_at, updated_at`

func scanWorker(row pgx.Row) (*workforce.Worker, error) {
	var w workforce.Worker
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.CrewID, &w.Name, &w.RUT, &w.Trade,
		&w.HourlyRate, &w.Status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWorker persists a new worker.
func (r *Repository) CreateWorker(ctx context.Context, w workforce.Worker) (*workforce.Worker, error) {
	created, err := scanWorker(r.pool.QueryRow(ctx,
		`INSERT INTO workers (company_id, crew_id, name, rut, trade, hourly_rate, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+workerColumns,
		w.CompanyID, w.CrewID, w.Name, nullIfEmpty(w.RUT), nullIfEmpty(w.Trade), w.HourlyRate, w.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("insert worker: %w", err)
	}
	return created, nil
}

// UpdateWorker replaces the mutable fields of a worker.
func (r *Repository) UpdateWorker(ctx context.Context, w workforce.Worker) (*workforce.Worker, error) {
	updated, err := scanWorker(r.pool.QueryRow(ctx,
		`UPDATE workers SET
			crew_id = $1, name = $2, rut = $3, trade = $4, hourly_rate = $5, status = $6,
			updated_at = now()
		 WHERE id = $7 AND company_id = $8
		 RETURNING `+workerColumns,
		w.CrewID, w.Name, nullIfEmpty(w.RUT), nullIfEmpty(w.Trade), w.HourlyRate, w.Status,
		w.ID, w.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update worker: %w", err)
	}
	return updated, nil
}

// DeleteWorker removes a worker, tenant scoped.
func (r *Repository) DeleteWorker(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workers WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindWorkerByID retrieves a worker, tenant scoped.
func (r *Repository) FindWorkerByID(ctx context.Context, companyID, id int64) (*workforce.Worker, error) {
	w, err := scanWorker(r.pool.QueryRow(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find worker: %w", err)
	}
	return w, nil
}

// ListWorkers retrieves workers filtered by crew and search.
func (r *Repository) ListWorkers(ctx context.Context, companyID int64, crewID *int64, search string, limit, offset int) ([]workforce.Worker, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if crewID != nil {
		args = append(args, *crewID)
		where += fmt.Sprintf(` AND crew_id = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR rut ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workers: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM workers WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		workerColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var workers []workforce.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate workers: %w", err)
	}
	return workers, total, nil
}

const crewColumns = `id, company_id, project_id, name, supervisor_id, created_at, updated_at`

func scanCrew(row pgx.Row) (*workforce.Crew, error) {
	var c workforce.Crew
	err := row.Scan(&c.ID, &c.CompanyID, &c.ProjectID, &c.Name, &c.SupervisorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCrew persists a new crew.
func (r *Repository) CreateCrew(ctx context.Context, c workforce.Crew) (*workforce.Crew, error) {
	created, err := scanCrew(r.pool.QueryRow(ctx,
		`INSERT INTO crews (company_id, project_id, name, supervisor_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+crewColumns,
		c.CompanyID, c.ProjectID, c.Name, c.SupervisorID,
	))
	if err != nil {
		return nil, fmt.Errorf("insert crew: %w", err)
	}
	return created, nil
}

// UpdateCrew replaces the mutable fields of a crew.
func (r *Repository) UpdateCrew(ctx context.Context, c workforce.Crew) (*workforce.Crew, error) {
	updated, err := scanCrew(r.pool.QueryRow(ctx,
		`UPDATE crews SET project_id = $1, name = $2, supervisor_id = $3, updated_at = now()
		 WHERE id = $4 AND company_id = $5
		 RETURNING `+crewColumns,
		c.ProjectID, c.Name, c.SupervisorID, c.ID, c.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update crew: %w", err)
	}
	return updated, nil
}

// DeleteCrew removes a crew; its workers stay, unassigned.
func (r *Repository) DeleteCrew(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crews WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete crew: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindCrewByID retrieves a crew, tenant scoped.
func (r *Repository) FindCrewByID(ctx context.Context, companyID, id int64) (*workforce.Crew, error) {
	c, err := scanCrew(r.pool.QueryRow(ctx,
		`SELECT `+crewColumns+` FROM crews WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find crew: %w", err)
	}
	return c, nil
}

// ListCrews retrieves every crew of the company.
func (r *Repository) ListCrews(ctx context.Context, companyID int64) ([]workforce.Crew, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+crewColumns+` FROM crews WHERE company_id = $1 ORDER BY name`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list crews: %w", err)
	}
	defer rows.Close()

	var crews []workforce.Crew
	for rows.Next() {
		c, err := scanCrew(rows)
		if err != nil {
			return nil, fmt.Errorf("scan crew: %w", err)
		}
		crews = append(crews, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crews: %w", err)
	}
	return crews, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
