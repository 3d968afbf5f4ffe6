// Package postgres implements the audit trail repository on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"obrasoft/ms_gestion_core/internal/core/audit"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the audit.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL audit repository.
func NewRepository(pool *pgxpool.Pool) audit.Repository {
	return &Repository{pool: pool}
}

// Save persists one audit entry.
func (r *Repository) Save(ctx context.Context, entry audit.Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_log (company_id, correlation_id, entity, entity_id, action, detail)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.CompanyID, nullIfEmpty(entry.CorrelationID), entry.Entity, entry.EntityID, entry.Action, entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// FindByEntity retrieves the trail of one entity, newest first.
func (r *Repository) FindByEntity(ctx context.Context, companyID int64, entity string, entityID int64) ([]audit.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, COALESCE(correlation_id, ''), entity, entity_id, action, detail, created_at
		 FROM audit_log
		 WHERE company_id = $1 AND entity = $2 AND entity_id = $3
		 ORDER BY created_at DESC, id DESC`,
		companyID, entity, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		err := rows.Scan(
			&e.ID, &e.CompanyID, &e.CorrelationID, &e.Entity, &e.EntityID,
			&e.Action, &e.Detail, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
