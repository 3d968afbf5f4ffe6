// Package postgres implements the company and user repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"obrasoft/ms_gestion_core/internal/core/company"
	"obrasoft/ms_gestion_core/internal/core/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the company.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL company repository.
func NewRepository(pool *pgxpool.Pool) company.Repository {
	return &Repository{pool: pool}
}

const companyColumns = `
	id, name, rut, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(email, ''),
	created_at, updated_at`

func scanCompany(row pgx.Row) (*company.Company, error) {
	var c company.Company
	err := row.Scan(&c.ID, &c.Name, &c.RUT, &c.Address, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCompany persists a new company.
func (r *Repository) CreateCompany(ctx context.Context, c company.Company) (*company.Company, error) {
	created, err := scanCompany(r.pool.QueryRow(ctx,
		`INSERT INTO companies (name, rut, address, phone, email)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+companyColumns,
		c.Name, c.RUT, nullIfEmpty(c.Address), nullIfEmpty(c.Phone), nullIfEmpty(c.Email),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe una empresa con RUT %s", c.RUT)
		}
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return created, nil
}

// UpdateCompany replaces the mutable fields of a company.
func (r *Repository) UpdateCompany(ctx context.Context, c company.Company) (*company.Company, error) {
	updated, err := scanCompany(r.pool.QueryRow(ctx,
		`UPDATE companies SET name = $1, rut = $2, address = $3, phone = $4, email = $5, updated_at = now()
		 WHERE id = $6
		 RETURNING `+companyColumns,
		c.Name, c.RUT, nullIfEmpty(c.Address), nullIfEmpty(c.Phone), nullIfEmpty(c.Email), c.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe una empresa con RUT %s", c.RUT)
		}
		return nil, fmt.Errorf("update company: %w", err)
	}
	return updated, nil
}

// FindCompanyByID retrieves a company.
func (r *Repository) FindCompanyByID(ctx context.Context, id int64) (*company.Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	return c, nil
}

// CompanyRUTExists checks RUT uniqueness across all tenants.
func (r *Repository) CompanyRUTExists(ctx context.Context, rut string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM companies WHERE rut = $1)`, rut,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check company rut: %w", err)
	}
	return exists, nil
}

const userColumns = `
	id, company_id, email, full_name, password_hash, role, active, created_at, updated_at`

func scanUser(row pgx.Row) (*company.User, error) {
	var u company.User
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser persists a new user account.
func (r *Repository) CreateUser(ctx context.Context, u company.User) (*company.User, error) {
	created, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (company_id, email, full_name, password_hash, role, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		u.CompanyID, u.Email, u.FullName, u.PasswordHash, u.Role, u.Active,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe un usuario con correo %s", u.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// UpdateUser replaces the mutable fields of a user.
func (r *Repository) UpdateUser(ctx context.Context, u company.User) (*company.User, error) {
	updated, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET email = $1, full_name = $2, password_hash = $3, role = $4, active = $5, updated_at = now()
		 WHERE id = $6 AND company_id = $7
		 RETURNING `+userColumns,
		u.Email, u.FullName, u.PasswordHash, u.Role, u.Active, u.ID, u.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe un usuario con correo %s", u.Email)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// DeleteUser removes a user account, tenant scoped.
func (r *Repository) DeleteUser(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindUserByID retrieves a user, tenant scoped.
func (r *Repository) FindUserByID(ctx context.Context, companyID, id int64) (*company.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND company_id = $2`, id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// FindUserByEmail retrieves a user by email within the tenant.
func (r *Repository) FindUserByEmail(ctx context.Context, companyID int64, email string) (*company.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = $1 AND lower(email) = lower($2)`,
		companyID, email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// ListUsers retrieves every user of the company.
func (r *Repository) ListUsers(ctx context.Context, companyID int64) ([]company.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY full_name`, companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []company.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint")
}
