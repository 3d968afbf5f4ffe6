// Package purchase implements the purchase order lifecycle, including the
// reception flow that feeds received material into the inventory ledger.
package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/purchase"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ItemRequest is one purchase order line as sent by the frontend.
type ItemRequest struct {
	MaterialID  *int64          `json:"materialId"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// OrderRequest carries the fields to create or update a purchase order.
type OrderRequest struct {
	ClientID  *int64           `json:"clientId"`
	ProjectID *int64           `json:"projectId"`
	Number    string           `json:"number"`
	Supplier  string           `json:"supplier"`
	NetAmount *decimal.Decimal `json:"netAmount"`
	TaxAmount *decimal.Decimal `json:"taxAmount"`
	OrderDate string           `json:"orderDate"`
	Items     []ItemRequest    `json:"items"`
}

// Service orchestrates purchase order operations.
type Service struct {
	repo purchase.Repository
	log  *slog.Logger
}

// NewService creates the purchase order service.
func NewService(repo purchase.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (r OrderRequest) build(companyID, id int64) (purchase.Order, error) {
	if r.Number == "" {
		return purchase.Order{}, errs.Validation("el número de la orden es requerido")
	}

	o := purchase.Order{
		ID:        id,
		CompanyID: companyID,
		ClientID:  r.ClientID,
		ProjectID: r.ProjectID,
		Number:    r.Number,
		Supplier:  r.Supplier,
		OrderDate: time.Now(),
	}
	if r.OrderDate != "" {
		parsed, err := time.Parse(dateLayout, r.OrderDate)
		if err != nil {
			return purchase.Order{}, errs.Validation("el campo orderDate debe tener formato AAAA-MM-DD")
		}
		o.OrderDate = parsed
	}
	if r.NetAmount != nil {
		o.NetAmount = *r.NetAmount
	}
	if r.TaxAmount != nil {
		o.TaxAmount = *r.TaxAmount
	}

	total := decimal.Zero
	for i, item := range r.Items {
		if item.Description == "" {
			return purchase.Order{}, errs.Validation("la descripción del ítem %d es requerida", i+1)
		}
		if !item.Quantity.IsPositive() {
			return purchase.Order{}, errs.Validation("la cantidad del ítem %d debe ser mayor que cero", i+1)
		}
		lineTotal := item.Quantity.Mul(item.UnitPrice)
		total = total.Add(lineTotal)
		o.Items = append(o.Items, purchase.Item{
			MaterialID:  item.MaterialID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       lineTotal,
		})
	}
	o.TotalAmount = o.NetAmount.Add(o.TaxAmount)
	if o.TotalAmount.IsZero() {
		o.TotalAmount = total
	}
	return o, nil
}

// Create validates and persists a new purchase order in BORRADOR state.
func (s *Service) Create(ctx context.Context, companyID int64, req OrderRequest) (*purchase.Order, error) {
	o, err := req.build(companyID, 0)
	if err != nil {
		return nil, err
	}
	o.Status = purchase.StatusBorrador

	exists, err := s.repo.NumberExists(ctx, companyID, o.Number)
	if err != nil {
		return nil, fmt.Errorf("verificando número de orden: %w", err)
	}
	if exists {
		return nil, errs.Conflict("ya existe una orden de compra con número %s", o.Number)
	}

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("creando orden de compra: %w", err)
	}
	return created, nil
}

// Update replaces the fields of an order. Received orders are immutable.
func (s *Service) Update(ctx context.Context, companyID, id int64, req OrderRequest) (*purchase.Order, error) {
	current, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if current.Status == purchase.StatusRecibida {
		return nil, errs.Validation("no se puede modificar una orden ya recibida")
	}

	o, err := req.build(companyID, id)
	if err != nil {
		return nil, err
	}
	if o.Number != current.Number {
		exists, err := s.repo.NumberExists(ctx, companyID, o.Number)
		if err != nil {
			return nil, fmt.Errorf("verificando número de orden: %w", err)
		}
		if exists {
			return nil, errs.Conflict("ya existe una orden de compra con número %s", o.Number)
		}
	}
	return s.repo.Update(ctx, o)
}

// Delete removes a purchase order. Received orders stay, for traceability of
// the stock they produced.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	current, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if current.Status == purchase.StatusRecibida {
		return errs.Validation("no se puede eliminar una orden ya recibida")
	}
	return s.repo.Delete(ctx, companyID, id)
}

// Get retrieves one purchase order with its items.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*purchase.Order, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// List retrieves purchase orders filtered by status and search.
func (s *Service) List(ctx context.Context, companyID int64, status, search string, limit, offset int) ([]purchase.Order, int, error) {
	var st purchase.Status
	if status != "" {
		st = purchase.Status(status)
		if !purchase.ValidStatus(st) {
			return nil, 0, errs.Validation("estado de orden inválido: %s", status)
		}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, companyID, st, search, limit, offset)
}

// SetStatus moves an order through its lifecycle. Receiving an order records
// the inventory entries for its material linked lines atomically.
func (s *Service) SetStatus(ctx context.Context, companyID, id int64, status string) (*purchase.Order, error) {
	st := purchase.Status(status)
	if !purchase.ValidStatus(st) {
		return nil, errs.Validation("estado de orden inválido: %s", status)
	}
	return s.repo.SetStatus(ctx, companyID, id, st)
}
