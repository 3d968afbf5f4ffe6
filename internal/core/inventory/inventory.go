package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies an inventory movement.
type MovementType string

const (
	MovementEntrada MovementType = "ENTRADA"
	MovementSalida  MovementType = "SALIDA"
	MovementAjuste  MovementType = "AJUSTE"
)

// ValidMovementType reports whether t is a known movement type.
func ValidMovementType(t MovementType) bool {
	switch t {
	case MovementEntrada, MovementSalida, MovementAjuste:
		return true
	}
	return false
}

// Material is a stocked item. Stock is derived from the movement ledger and
// maintained by the repository together with each movement write.
type Material struct {
	ID           int64           `json:"id"`
	CompanyID    int64           `json:"companyId"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	Stock        decimal.Decimal `json:"stock"`
	MinimumStock decimal.Decimal `json:"minimumStock"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Movement is one entry of the inventory ledger.
type Movement struct {
	ID           int64           `json:"id"`
	CompanyID    int64           `json:"companyId"`
	MaterialID   int64           `json:"materialId"`
	ProjectID    *int64          `json:"projectId,omitempty"`
	CostCenterID *int64          `json:"costCenterId,omitempty"`
	Type         MovementType    `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         time.Time       `json:"date"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Repository defines material and movement persistence, tenant scoped.
// RecordMovement and DeleteMovement adjust the material's stock in the same
// transaction as the ledger write.
type Repository interface {
	CreateMaterial(ctx context.Context, m Material) (*Material, error)
	UpdateMaterial(ctx context.Context, m Material) (*Material, error)
	DeleteMaterial(ctx context.Context, companyID, id int64) error
	FindMaterialByID(ctx context.Context, companyID, id int64) (*Material, error)
	ListMaterials(ctx context.Context, companyID int64, search string, limit, offset int) ([]Material, int, error)

	RecordMovement(ctx context.Context, mv Movement) (*Movement, error)
	DeleteMovement(ctx context.Context, companyID, movementID int64) error
	ListMovements(ctx context.Context, companyID int64, materialID *int64, limit, offset int) ([]Movement, int, error)
}
