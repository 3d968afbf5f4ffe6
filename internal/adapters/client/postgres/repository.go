// Package postgres implements the client repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/client"
	"obrasoft/ms_gestion_core/internal/core/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the client.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL client repository.
func NewRepository(pool *pgxpool.Pool) client.Repository {
	return &Repository{pool: pool}
}

const clientColumns = `
	id, company_id, name, COALESCE(rut, ''), COALESCE(contact, ''),
	COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''),
	created_at, updated_at`

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.RUT, &c.Contact,
		&c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new client.
func (r *Repository) Create(ctx context.Context, c client.Client) (*client.Client, error) {
	created, err := scanClient(r.pool.QueryRow(ctx,
		`INSERT INTO clients (company_id, name, rut, contact, phone, email, address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+clientColumns,
		c.CompanyID, c.Name, nullIfEmpty(c.RUT), nullIfEmpty(c.Contact),
		nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address),
	))
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of a client.
func (r *Repository) Update(ctx context.Context, c client.Client) (*client.Client, error) {
	updated, err := scanClient(r.pool.QueryRow(ctx,
		`UPDATE clients SET
			name = $1, rut = $2, contact = $3, phone = $4, email = $5, address = $6,
			updated_at = now()
		 WHERE id = $7 AND company_id = $8
		 RETURNING `+clientColumns,
		c.Name, nullIfEmpty(c.RUT), nullIfEmpty(c.Contact), nullIfEmpty(c.Phone),
		nullIfEmpty(c.Email), nullIfEmpty(c.Address), c.ID, c.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return updated, nil
}

// Delete removes a client, tenant scoped.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindByID retrieves a client, tenant scoped.
func (r *Repository) FindByID(ctx context.Context, companyID, id int64) (*client.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

// List retrieves clients by name or RUT search plus the total row count.
func (r *Repository) List(ctx context.Context, companyID int64, search string, limit, offset int) ([]client.Client, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if search != "" {
		where += ` AND (name ILIKE $2 OR rut ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM clients WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		clientColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, total, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
