// Package postgres implements the inventory repository on PostgreSQL. Stock
// on the material row is adjusted in the same transaction as the movement
// write, so the derived stock never drifts from the ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/inventory"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository implements the inventory.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL inventory repository.
func NewRepository(pool *pgxpool.Pool) inventory.Repository {
	return &Repository{pool: pool}
}

const materialColumns = `
	id, company_id, name, sku, unit, stock, minimum_stock, unit_cost, created_at, updated_at`

func scanMaterial(row pgx.Row) (*inventory.Material, error) {
	var m inventory.Material
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.Name, &m.SKU, &m.Unit,
		&m.Stock, &m.MinimumStock, &m.UnitCost, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMaterial persists a new material with zero stock.
func (r *Repository) CreateMaterial(ctx context.Context, m inventory.Material) (*inventory.Material, error) {
	created, err := scanMaterial(r.pool.QueryRow(ctx,
		`INSERT INTO materials (company_id, name, sku, unit, minimum_stock, unit_cost)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+materialColumns,
		m.CompanyID, m.Name, m.SKU, m.Unit, m.MinimumStock, m.UnitCost,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe un material con SKU %s", m.SKU)
		}
		return nil, fmt.Errorf("insert material: %w", err)
	}
	return created, nil
}

// UpdateMaterial replaces the catalog fields of a material. Stock is owned
// by the movement ledger and never written here.
func (r *Repository) UpdateMaterial(ctx context.Context, m inventory.Material) (*inventory.Material, error) {
	updated, err := scanMaterial(r.pool.QueryRow(ctx,
		`UPDATE materials SET
			name = $1, sku = $2, unit = $3, minimum_stock = $4, unit_cost = $5, updated_at = now()
		 WHERE id = $6 AND company_id = $7
		 RETURNING `+materialColumns,
		m.Name, m.SKU, m.Unit, m.MinimumStock, m.UnitCost, m.ID, m.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe un material con SKU %s", m.SKU)
		}
		return nil, fmt.Errorf("update material: %w", err)
	}
	return updated, nil
}

// DeleteMaterial removes a material and, by cascade, its movements.
func (r *Repository) DeleteMaterial(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindMaterialByID retrieves a material, tenant scoped.
func (r *Repository) FindMaterialByID(ctx context.Context, companyID, id int64) (*inventory.Material, error) {
	m, err := scanMaterial(r.pool.QueryRow(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find material: %w", err)
	}
	return m, nil
}

// ListMaterials retrieves materials by name or SKU search plus the total count.
func (r *Repository) ListMaterials(ctx context.Context, companyID int64, search string, limit, offset int) ([]inventory.Material, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if search != "" {
		where += ` AND (name ILIKE $2 OR sku ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM materials WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM materials WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		materialColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []inventory.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, total, nil
}

// stockDelta maps a movement to its effect on stock. AJUSTE carries a signed
// quantity and applies as-is.
func stockDelta(mv inventory.Movement) decimal.Decimal {
	switch mv.Type {
	case inventory.MovementSalida:
		return mv.Quantity.Neg()
	default:
		return mv.Quantity
	}
}

// RecordMovement appends a ledger entry and adjusts the material's stock in
// one transaction. A SALIDA that would leave negative stock is rejected.
func (r *Repository) RecordMovement(ctx context.Context, mv inventory.Movement) (*inventory.Movement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := recordMovementInTx(ctx, tx, mv)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// RecordMovementInTx is used by the purchase order reception flow, which
// owns a wider transaction.
func RecordMovementInTx(ctx context.Context, tx pgx.Tx, mv inventory.Movement) (*inventory.Movement, error) {
	return recordMovementInTx(ctx, tx, mv)
}

func recordMovementInTx(ctx context.Context, tx pgx.Tx, mv inventory.Movement) (*inventory.Movement, error) {
	var stock decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT stock FROM materials WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		mv.MaterialID, mv.CompanyID,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find material: %w", err)
	}

	newStock := stock.Add(stockDelta(mv))
	if newStock.IsNegative() {
		return nil, errs.Validation("stock insuficiente: disponible %s, solicitado %s", stock, mv.Quantity)
	}

	var created inventory.Movement
	err = tx.QueryRow(ctx,
		`INSERT INTO inventory_movements (company_id, material_id, project_id, cost_center_id, type, quantity, movement_date, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, company_id, material_id, project_id, cost_center_id, type, quantity, movement_date, COALESCE(note, ''), created_at`,
		mv.CompanyID, mv.MaterialID, mv.ProjectID, mv.CostCenterID, mv.Type, mv.Quantity, mv.Date, nullIfEmpty(mv.Note),
	).Scan(
		&created.ID, &created.CompanyID, &created.MaterialID, &created.ProjectID, &created.CostCenterID,
		&created.Type, &created.Quantity, &created.Date, &created.Note, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE materials SET stock = $1, updated_at = now() WHERE id = $2`,
		newStock, mv.MaterialID,
	); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return &created, nil
}

// DeleteMovement removes a ledger entry and reverses its stock effect in one
// transaction.
func (r *Repository) DeleteMovement(ctx context.Context, companyID, movementID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var mv inventory.Movement
	err = tx.QueryRow(ctx,
		`SELECT id, company_id, material_id, type, quantity FROM inventory_movements
		 WHERE id = $1 AND company_id = $2`,
		movementID, companyID,
	).Scan(&mv.ID, &mv.CompanyID, &mv.MaterialID, &mv.Type, &mv.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("find movement: %w", err)
	}

	var stock decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT stock FROM materials WHERE id = $1 FOR UPDATE`, mv.MaterialID,
	).Scan(&stock)
	if err != nil {
		return fmt.Errorf("find material: %w", err)
	}

	newStock := stock.Sub(stockDelta(mv))
	if newStock.IsNegative() {
		return errs.Validation("no se puede eliminar el movimiento: dejaría stock negativo")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM inventory_movements WHERE id = $1`, movementID); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE materials SET stock = $1, updated_at = now() WHERE id = $2`,
		newStock, mv.MaterialID,
	); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListMovements retrieves ledger entries, newest first, plus the total count.
func (r *Repository) ListMovements(ctx context.Context, companyID int64, materialID *int64, limit, offset int) ([]inventory.Movement, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if materialID != nil {
		args = append(args, *materialID)
		where += fmt.Sprintf(` AND material_id = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_movements WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, company_id, material_id, project_id, cost_center_id, type, quantity, movement_date, COALESCE(note, ''), created_at
		 FROM inventory_movements WHERE %s
		 ORDER BY movement_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []inventory.Movement
	for rows.Next() {
		var mv inventory.Movement
		err := rows.Scan(
			&mv.ID, &mv.CompanyID, &mv.MaterialID, &mv.ProjectID, &mv.CostCenterID,
			&mv.Type, &mv.Quantity, &mv.Date, &mv.Note, &mv.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, total, nil
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
