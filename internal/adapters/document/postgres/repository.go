// Package postgres implements the document metadata repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/document"
	"obrasoft/ms_gestion_core/internal/core/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the document.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL document repository.
func NewRepository(pool *pgxpool.Pool) document.Repository {
	return &Repository{pool: pool}
}

const documentColumns = `
	id, company_id, project_id, invoice_id, name, mime_type, size_bytes,
	storage_state, COALESCE(drive_file_id, ''), created_at, updated_at`

func scanDocument(row pgx.Row) (*document.Document, error) {
	var d document.Document
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.ProjectID, &d.InvoiceID, &d.Name, &d.MimeType,
		&d.SizeBytes, &d.State, &d.DriveFileID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persists document metadata in PENDIENTE state.
func (r *Repository) Create(ctx context.Context, d document.Document) (*document.Document, error) {
	created, err := scanDocument(r.pool.QueryRow(ctx,
		`INSERT INTO documents (company_id, project_id, invoice_id, name, mime_type, size_bytes, storage_state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+documentColumns,
		d.CompanyID, d.ProjectID, d.InvoiceID, d.Name, d.MimeType, d.SizeBytes, d.State,
	))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return created, nil
}

// Delete removes document metadata, tenant scoped.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindByID retrieves document metadata, tenant scoped.
func (r *Repository) FindByID(ctx context.Context, companyID, id int64) (*document.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return d, nil
}

// List retrieves documents, newest first, optionally scoped to a project.
func (r *Repository) List(ctx context.Context, companyID int64, projectID *int64, limit, offset int) ([]document.Document, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if projectID != nil {
		args = append(args, *projectID)
		where += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		documentColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var documents []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}
	return documents, total, nil
}

// SetStorageResult records the outcome of the background upload.
func (r *Repository) SetStorageResult(ctx context.Context, documentID int64, state document.StorageState, driveFileID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET storage_state = $1, drive_file_id = $2, updated_at = now() WHERE id = $3`,
		state, nullIfEmpty(driveFileID), documentID,
	)
	if err != nil {
		return fmt.Errorf("update storage result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
