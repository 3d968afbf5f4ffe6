package project

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActivo    Status = "ACTIVO"
	StatusPausado   Status = "PAUSADO"
	StatusTerminado Status = "TERMINADO"
)

// ValidStatus reports whether s is a known project status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActivo, StatusPausado, StatusTerminado:
		return true
	}
	return false
}

// Project is a construction site or contract being tracked.
type Project struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"companyId"`
	ClientID  *int64          `json:"clientId,omitempty"`
	Name      string          `json:"name"`
	Code      string          `json:"code,omitempty"`
	Status    Status          `json:"status"`
	Budget    decimal.Decimal `json:"budget"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Repository defines project persistence, tenant scoped.
type Repository interface {
	Create(ctx context.Context, p Project) (*Project, error)
	Update(ctx context.Context, p Project) (*Project, error)
	Delete(ctx context.Context, companyID, id int64) error
	FindByID(ctx context.Context, companyID, id int64) (*Project, error)
	List(ctx context.Context, companyID int64, status Status, search string, limit, offset int) ([]Project, int, error)
}
