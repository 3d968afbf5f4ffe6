// Package inventory implements the material catalog and stock ledger use
// cases.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/inventory"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// MaterialRequest carries the fields to create or update a material.
type MaterialRequest struct {
	Name         string           `json:"name"`
	SKU          string           `json:"sku"`
	Unit         string           `json:"unit"`
	MinimumStock *decimal.Decimal `json:"minimumStock"`
	UnitCost     *decimal.Decimal `json:"unitCost"`
}

// MovementRequest carries the fields to record an inventory movement.
type MovementRequest struct {
	MaterialID   int64           `json:"materialId"`
	ProjectID    *int64          `json:"projectId"`
	CostCenterID *int64          `json:"costCenterId"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         string          `json:"date"`
	Note         string          `json:"note"`
}

// Service orchestrates inventory operations.
type Service struct {
	repo inventory.Repository
	log  *slog.Logger
}

// NewService creates the inventory service.
func NewService(repo inventory.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (r MaterialRequest) build(companyID, id int64) (inventory.Material, error) {
	if r.Name == "" {
		return inventory.Material{}, errs.Validation("el nombre del material es requerido")
	}
	if r.SKU == "" {
		return inventory.Material{}, errs.Validation("el SKU del material es requerido")
	}
	unit := r.Unit
	if unit == "" {
		unit = "UN"
	}
	m := inventory.Material{
		ID:        id,
		CompanyID: companyID,
		Name:      r.Name,
		SKU:       r.SKU,
		Unit:      unit,
	}
	if r.MinimumStock != nil {
		if r.MinimumStock.IsNegative() {
			return inventory.Material{}, errs.Validation("el stock mínimo no puede ser negativo")
		}
		m.MinimumStock = *r.MinimumStock
	}
	if r.UnitCost != nil {
		if r.UnitCost.IsNegative() {
			return inventory.Material{}, errs.Validation("el costo unitario no puede ser negativo")
		}
		m.UnitCost = *r.UnitCost
	}
	return m, nil
}

// CreateMaterial validates and persists a new material.
func (s *Service) CreateMaterial(ctx context.Context, companyID int64, req MaterialRequest) (*inventory.Material, error) {
	m, err := req.build(companyID, 0)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateMaterial(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("creando material: %w", err)
	}
	return created, nil
}

// UpdateMaterial replaces the catalog fields of a material. Stock is owned
// by the movement ledger.
func (s *Service) UpdateMaterial(ctx context.Context, companyID, id int64, req MaterialRequest) (*inventory.Material, error) {
	m, err := req.build(companyID, id)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateMaterial(ctx, m)
}

// DeleteMaterial removes a material and its movement history.
func (s *Service) DeleteMaterial(ctx context.Context, companyID, id int64) error {
	return s.repo.DeleteMaterial(ctx, companyID, id)
}

// GetMaterial retrieves one material.
func (s *Service) GetMaterial(ctx context.Context, companyID, id int64) (*inventory.Material, error) {
	return s.repo.FindMaterialByID(ctx, companyID, id)
}

// ListMaterials retrieves materials matching the search plus the total count.
func (s *Service) ListMaterials(ctx context.Context, companyID int64, search string, limit, offset int) ([]inventory.Material, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMaterials(ctx, companyID, search, limit, offset)
}

// RecordMovement validates and appends a stock movement. ENTRADA and SALIDA
// require a positive quantity; AJUSTE accepts a signed one.
func (s *Service) RecordMovement(ctx context.Context, companyID int64, req MovementRequest) (*inventory.Movement, error) {
	mvType := inventory.MovementType(req.Type)
	if !inventory.ValidMovementType(mvType) {
		return nil, errs.Validation("tipo de movimiento inválido: %s", req.Type)
	}
	if mvType != inventory.MovementAjuste && !req.Quantity.IsPositive() {
		return nil, errs.Validation("la cantidad debe ser mayor que cero")
	}
	if req.Quantity.IsZero() {
		return nil, errs.Validation("la cantidad no puede ser cero")
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, errs.Validation("el campo date debe tener formato AAAA-MM-DD")
		}
		date = parsed
	}

	created, err := s.repo.RecordMovement(ctx, inventory.Movement{
		CompanyID:    companyID,
		MaterialID:   req.MaterialID,
		ProjectID:    req.ProjectID,
		CostCenterID: req.CostCenterID,
		Type:         mvType,
		Quantity:     req.Quantity,
		Date:         date,
		Note:         req.Note,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteMovement removes a ledger entry, reversing its stock effect.
func (s *Service) DeleteMovement(ctx context.Context, companyID, movementID int64) error {
	return s.repo.DeleteMovement(ctx, companyID, movementID)
}

// ListMovements retrieves ledger entries, newest first.
func (s *Service) ListMovements(ctx context.Context, companyID int64, materialID *int64, limit, offset int) ([]inventory.Movement, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMovements(ctx, companyID, materialID, limit, offset)
}
