// Package postgres implements the invoice repository on PostgreSQL. All
// multi-row mutations run inside a single transaction so the derived payment
// state is never observable apart from the ledger change that produced it.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/invoice"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository implements the invoice.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL invoice repository.
func NewRepository(pool *pgxpool.Pool) invoice.Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `
	id, company_id, number, type, status, payment_status, is_paid,
	net_amount, tax_amount, total_amount,
	related_invoice_id, client_id, project_id, cost_center_id,
	issue_date, due_date, COALESCE(notes, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.Number, &inv.Type, &inv.Status,
		&inv.PaymentStatus, &inv.IsPaid,
		&inv.NetAmount, &inv.TaxAmount, &inv.TotalAmount,
		&inv.RelatedInvoiceID, &inv.ClientID, &inv.ProjectID, &inv.CostCenterID,
		&inv.IssueDate, &inv.DueDate, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persists a new invoice with its items. When annulRelated is true
// and the invoice points at a related document, that document is set to
// CANCELLED in the same transaction.
func (r *Repository) Create(ctx context.Context, inv invoice.Invoice, annulRelated bool) (*invoice.Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO invoices (
			company_id, number, type, status, payment_status, is_paid,
			net_amount, tax_amount, total_amount,
			related_invoice_id, client_id, project_id, cost_center_id,
			issue_date, due_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + invoiceColumns

	created, err := scanInvoice(tx.QueryRow(ctx, query,
		inv.CompanyID, inv.Number, inv.Type, inv.Status, inv.PaymentStatus, inv.IsPaid,
		inv.NetAmount, inv.TaxAmount, inv.TotalAmount,
		inv.RelatedInvoiceID, inv.ClientID, inv.ProjectID, inv.CostCenterID,
		inv.IssueDate, inv.DueDate, nullIfEmpty(inv.Notes),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe un documento %s con folio %s", inv.Type, inv.Number)
		}
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	if created.Items, err = insertItems(ctx, tx, created.ID, inv.Items); err != nil {
		return nil, err
	}

	if annulRelated && inv.RelatedInvoiceID != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE invoices SET status = $1, updated_at = now() WHERE id = $2 AND company_id = $3`,
			invoice.StatusCancelled, *inv.RelatedInvoiceID, inv.CompanyID,
		)
		if err != nil {
			return nil, fmt.Errorf("annul related invoice: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, errs.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// Update replaces the mutable fields of an invoice and rewrites its items.
func (r *Repository) Update(ctx context.Context, inv invoice.Invoice) (*invoice.Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE invoices SET
			number = $1, status = $2,
			net_amount = $3, tax_amount = $4, total_amount = $5,
			client_id = $6, project_id = $7, cost_center_id = $8,
			issue_date = $9, due_date = $10, notes = $11,
			updated_at = now()
		WHERE id = $12 AND company_id = $13
		RETURNING ` + invoiceColumns

	updated, err := scanInvoice(tx.QueryRow(ctx, query,
		inv.Number, inv.Status,
		inv.NetAmount, inv.TaxAmount, inv.TotalAmount,
		inv.ClientID, inv.ProjectID, inv.CostCenterID,
		inv.IssueDate, inv.DueDate, nullIfEmpty(inv.Notes),
		inv.ID, inv.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.Conflict("ya existe un documento %s con folio %s", inv.Type, inv.Number)
		}
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return nil, fmt.Errorf("delete invoice items: %w", err)
	}
	if updated.Items, err = insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

// Delete removes an invoice. If it is a credit note whose related document is
// still CANCELLED, the related document reverts to PENDING first; a related
// document that was moved to any other status in the meantime is left alone.
func (r *Repository) Delete(ctx context.Context, companyID, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanInvoice(tx.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("find invoice: %w", err)
	}

	if current.IsCreditNote() && current.RelatedInvoiceID != nil {
		_, err := tx.Exec(ctx,
			`UPDATE invoices SET status = $1, updated_at = now()
			 WHERE id = $2 AND company_id = $3 AND status = $4`,
			invoice.StatusPending, *current.RelatedInvoiceID, companyID, invoice.StatusCancelled,
		)
		if err != nil {
			return fmt.Errorf("restore related invoice: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND company_id = $2`, id, companyID); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FindByID retrieves an invoice with its items, tenant scoped.
func (r *Repository) FindByID(ctx context.Context, companyID, id int64) (*invoice.Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}

	if inv.Items, err = r.loadItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// List retrieves invoices matching the filter, newest first, plus the total
// row count before pagination.
func (r *Repository) List(ctx context.Context, companyID int64, filter invoice.ListFilter) ([]invoice.Invoice, int, error) {
	conditions := []string{"company_id = $1"}
	args := []any{companyID}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Type != "" {
		addCondition("type = $%d", filter.Type)
	}
	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.PaymentStatus != "" {
		addCondition("payment_status = $%d", filter.PaymentStatus)
	}
	if filter.ClientID != nil {
		addCondition("client_id = $%d", *filter.ClientID)
	}
	if filter.ProjectID != nil {
		addCondition("project_id = $%d", *filter.ProjectID)
	}
	if filter.From != nil {
		addCondition("issue_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("issue_date <= $%d", *filter.To)
	}
	if filter.Search != "" {
		addCondition("number ILIKE $%d", "%"+filter.Search+"%")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM invoices WHERE %s ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate invoices: %w", err)
	}

	for i := range invoices {
		if invoices[i].Items, err = r.loadItems(ctx, invoices[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return invoices, total, nil
}

// FolioExists checks the folio uniqueness rule. COMPRA documents are scoped
// by supplier on top of the per-tenant, per-type rule.
func (r *Repository) FolioExists(ctx context.Context, companyID int64, number string, docType invoice.DocumentType, clientID *int64) (bool, error) {
	var exists bool
	var err error
	if docType == invoice.TypeCompra {
		err = r.pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM invoices
				WHERE company_id = $1 AND type = $2 AND number = $3 AND client_id = $4
			)`,
			companyID, docType, number, clientID,
		).Scan(&exists)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM invoices
				WHERE company_id = $1 AND type = $2 AND number = $3
			)`,
			companyID, docType, number,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check folio: %w", err)
	}
	return exists, nil
}

// AddPayment inserts a payment and recomputes the owning invoice in one
// transaction.
func (r *Repository) AddPayment(ctx context.Context, companyID, invoiceID int64, payment invoice.Payment) (*invoice.Payment, *invoice.Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the invoice row so concurrent payments serialize on it.
	var total decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT total_amount FROM invoices WHERE id = $1 AND company_id = $2 FOR UPDATE`,
		invoiceID, companyID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, errs.ErrNotFound
		}
		return nil, nil, fmt.Errorf("find invoice: %w", err)
	}

	query := `
		INSERT INTO payments (invoice_id, amount, payment_date, method, reference, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, invoice_id, amount, payment_date,
			COALESCE(method, ''), COALESCE(reference, ''), COALESCE(comment, ''), created_at`

	var created invoice.Payment
	err = tx.QueryRow(ctx, query,
		invoiceID, payment.Amount, payment.Date,
		nullIfEmpty(payment.Method), nullIfEmpty(payment.Reference), nullIfEmpty(payment.Comment),
	).Scan(
		&created.ID, &created.InvoiceID, &created.Amount, &created.Date,
		&created.Method, &created.Reference, &created.Comment, &created.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert payment: %w", err)
	}

	inv, err := recomputeInTx(ctx, tx, companyID, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &created, inv, nil
}

// DeletePayment removes a payment and recomputes the owning invoice in one
// transaction.
func (r *Repository) DeletePayment(ctx context.Context, companyID, paymentID int64) (*invoice.Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var invoiceID int64
	err = tx.QueryRow(ctx,
		`SELECT p.invoice_id FROM payments p
		 JOIN invoices i ON i.id = p.invoice_id
		 WHERE p.id = $1 AND i.company_id = $2
		 FOR UPDATE OF i`,
		paymentID, companyID,
	).Scan(&invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE id = $1`, paymentID); err != nil {
		return nil, fmt.Errorf("delete payment: %w", err)
	}

	inv, err := recomputeInTx(ctx, tx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return inv, nil
}

// RecomputePaymentStatus re-derives paymentStatus/isPaid from the current
// ledger and persists the result.
func (r *Repository) RecomputePaymentStatus(ctx context.Context, companyID, invoiceID int64) (*invoice.Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := recomputeInTx(ctx, tx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return inv, nil
}

// ListPayments returns the ledger of an invoice, oldest first.
func (r *Repository) ListPayments(ctx context.Context, companyID, invoiceID int64) ([]invoice.Payment, error) {
	query := `
		SELECT p.id, p.invoice_id, p.amount, p.payment_date,
			COALESCE(p.method, ''), COALESCE(p.reference, ''), COALESCE(p.comment, ''), p.created_at
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.invoice_id = $1 AND i.company_id = $2
		ORDER BY p.payment_date, p.id`

	rows, err := r.pool.Query(ctx, query, invoiceID, companyID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []invoice.Payment
	for rows.Next() {
		var p invoice.Payment
		err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.Amount, &p.Date,
			&p.Method, &p.Reference, &p.Comment, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

// recomputeInTx sums the ledger and writes the derived fields back, returning
// the invoice as persisted. The caller owns the transaction.
func recomputeInTx(ctx context.Context, tx pgx.Tx, companyID, invoiceID int64) (*invoice.Invoice, error) {
	var totalPaid, total decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT COALESCE((SELECT SUM(amount) FROM payments WHERE invoice_id = i.id), 0), i.total_amount
		 FROM invoices i WHERE i.id = $1 AND i.company_id = $2`,
		invoiceID, companyID,
	).Scan(&totalPaid, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	status, isPaid := invoice.ComputePaymentStatus(totalPaid, total)

	inv, err := scanInvoice(tx.QueryRow(ctx,
		`UPDATE invoices SET payment_status = $1, is_paid = $2, updated_at = now()
		 WHERE id = $3 AND company_id = $4
		 RETURNING `+invoiceColumns,
		status, isPaid, invoiceID, companyID,
	))
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return inv, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID int64, items []invoice.Item) ([]invoice.Item, error) {
	out := make([]invoice.Item, 0, len(items))
	for i, item := range items {
		var stored invoice.Item
		err := tx.QueryRow(ctx,
			`INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, total, position)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, invoice_id, description, quantity, unit_price, total, position`,
			invoiceID, item.Description, item.Quantity, item.UnitPrice, item.Total, i,
		).Scan(
			&stored.ID, &stored.InvoiceID, &stored.Description,
			&stored.Quantity, &stored.UnitPrice, &stored.Total, &stored.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("insert invoice item: %w", err)
		}
		out = append(out, stored)
	}
	return out, nil
}

func (r *Repository) loadItems(ctx context.Context, invoiceID int64) ([]invoice.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, invoice_id, description, quantity, unit_price, total, position
		 FROM invoice_items WHERE invoice_id = $1 ORDER BY position`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	defer rows.Close()

	var items []invoice.Item
	for rows.Next() {
		var item invoice.Item
		err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.Total, &item.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
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
