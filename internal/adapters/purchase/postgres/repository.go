// Package postgres implements the purchase order repository on PostgreSQL.
// Marking an order RECIBIDA records the inventory entries for its material
// linked lines inside the same transaction as the status change.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/inventory"
	"obrasoft/ms_gestion_core/internal/core/purchase"

	inventorypg "obrasoft/ms_gestion_core/internal/adapters/inventory/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the purchase.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL purchase order repository.
func NewRepository(pool *pgxpool.Pool) purchase.Repository {
	return &Repository{pool: pool}
}

const orderColumns = `
	id, company_id, client_id, project_id, number, COALESCE(supplier, ''), status,
	net_amount, tax_amount, total_amount, order_date, created_at, updated_at`

func scanOrder(row pgx.Row) (*purchase.Order, error) {
	var o purchase.Order
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.ClientID, &o.ProjectID, &o.Number, &o.Supplier, &o.Status,
		&o.NetAmount, &o.TaxAmount, &o.TotalAmount, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists a new purchase order with its items.
func (r *Repository) Create(ctx context.Context, o purchase.Order) (*purchase.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanOrder(tx.QueryRow(ctx,
		`INSERT INTO purchase_orders (company_id, client_id, project_id, number, supplier, status, net_amount, tax_amount, total_amount, order_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+orderColumns,
		o.CompanyID, o.ClientID, o.ProjectID, o.Number, nullIfEmpty(o.Supplier), o.Status,
		o.NetAmount, o.TaxAmount, o.TotalAmount, o.OrderDate,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe una orden de compra con número %s", o.Number)
		}
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	if created.Items, err = insertOrderItems(ctx, tx, created.ID, o.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of a purchase order and its items.
func (r *Repository) Update(ctx context.Context, o purchase.Order) (*purchase.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := scanOrder(tx.QueryRow(ctx,
		`UPDATE purchase_orders SET
			client_id = $1, project_id = $2, number = $3, supplier = $4,
			net_amount = $5, tax_amount = $6, total_amount = $7, order_date = $8,
			updated_at = now()
		 WHERE id = $9 AND company_id = $10
		 RETURNING `+orderColumns,
		o.ClientID, o.ProjectID, o.Number, nullIfEmpty(o.Supplier),
		o.NetAmount, o.TaxAmount, o.TotalAmount, o.OrderDate,
		o.ID, o.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe una orden de compra con número %s", o.Number)
		}
		return nil, fmt.Errorf("update purchase order: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, o.ID); err != nil {
		return nil, fmt.Errorf("delete purchase order items: %w", err)
	}
	if updated.Items, err = insertOrderItems(ctx, tx, o.ID, o.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

// Delete removes a purchase order and its items.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindByID retrieves a purchase order with its items, tenant scoped.
func (r *Repository) FindByID(ctx context.Context, companyID, id int64) (*purchase.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase order: %w", err)
	}

	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// List retrieves purchase orders filtered by status and search.
func (r *Repository) List(ctx context.Context, companyID int64, status purchase.Status, search string, limit, offset int) ([]purchase.Order, int, error) {
	where := `company_id = $1`
	args := []any{companyID}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (number ILIKE $%d OR supplier ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM purchase_orders WHERE %s ORDER BY order_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []purchase.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate purchase orders: %w", err)
	}

	for i := range orders {
		if orders[i].Items, err = r.loadItems(ctx, orders[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// NumberExists checks order number uniqueness within the tenant.
func (r *Repository) NumberExists(ctx context.Context, companyID int64, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE company_id = $1 AND number = $2)`,
		companyID, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return exists, nil
}

// SetStatus moves an order to a new status. The transition into RECIBIDA
// records an ENTRADA movement for every material linked line atomically with
// the status change; re-receiving an already received order is rejected so
// stock is never counted twice.
func (r *Repository) SetStatus(ctx context.Context, companyID, id int64, status purchase.Status) (*purchase.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase order: %w", err)
	}

	if status == purchase.StatusRecibida {
		if current.Status == purchase.StatusRecibida {
			return nil, errs.Conflict("la orden %s ya fue recibida", current.Number)
		}
		if current.Status == purchase.StatusCancelada {
			return nil, errs.Validation("no se puede recibir una orden cancelada")
		}
		if err := r.receiveItems(ctx, tx, current, companyID); err != nil {
			return nil, err
		}
	}

	updated, err := scanOrder(tx.QueryRow(ctx,
		`UPDATE purchase_orders SET status = $1, updated_at = now()
		 WHERE id = $2 AND company_id = $3
		 RETURNING `+orderColumns,
		status, id, companyID,
	))
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if updated.Items, err = r.loadItems(ctx, updated.ID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) receiveItems(ctx context.Context, tx pgx.Tx, order *purchase.Order, companyID int64) error {
	items, err := loadItemsTx(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, item := range items {
		if item.MaterialID == nil {
			continue
		}
		mv := inventory.Movement{
			CompanyID:  companyID,
			MaterialID: *item.MaterialID,
			ProjectID:  order.ProjectID,
			Type:       inventory.MovementEntrada,
			Quantity:   item.Quantity,
			Date:       now,
			Note:       fmt.Sprintf("Recepción orden de compra %s", order.Number),
		}
		if _, err := inventorypg.RecordMovementInTx(ctx, tx, mv); err != nil {
			return fmt.Errorf("receive item %d: %w", item.ID, err)
		}
	}
	return nil
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, orderID int64, items []purchase.Item) ([]purchase.Item, error) {
	out := make([]purchase.Item, 0, len(items))
	for _, item := range items {
		var stored purchase.Item
		err := tx.QueryRow(ctx,
			`INSERT INTO purchase_order_items (purchase_order_id, material_id, description, quantity, unit_price, total)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, purchase_order_id, material_id, description, quantity, unit_price, total`,
			orderID, item.MaterialID, item.Description, item.Quantity, item.UnitPrice, item.Total,
		).Scan(
			&stored.ID, &stored.OrderID, &stored.MaterialID, &stored.Description,
			&stored.Quantity, &stored.UnitPrice, &stored.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("insert purchase order item: %w", err)
		}
		out = append(out, stored)
	}
	return out, nil
}

const itemQuery = `
	SELECT id, purchase_order_id, material_id, description, quantity, unit_price, total
	FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY id`

func (r *Repository) loadItems(ctx context.Context, orderID int64) ([]purchase.Item, error) {
	rows, err := r.pool.Query(ctx, itemQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func loadItemsTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]purchase.Item, error) {
	rows, err := tx.Query(ctx, itemQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]purchase.Item, error) {
	var items []purchase.Item
	for rows.Next() {
		var item purchase.Item
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.MaterialID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase order items: %w", err)
	}
	return items, nil
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
