package workforce

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Worker is a field or office employee of the company.
type Worker struct {
	ID         int64           `json:"id"`
	CompanyID  int64           `json:"companyId"`
	CrewID     *int64          `json:"crewId,omitempty"`
	Name       string          `json:"name"`
	RUT        string          `json:"rut,omitempty"`
	Trade      string          `json:"trade,omitempty"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Crew is a group of workers, optionally assigned to a project.
type Crew struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"companyId"`
	ProjectID    *int64    `json:"projectId,omitempty"`
	Name         string    `json:"name"`
	SupervisorID *int64    `json:"supervisorId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Repository defines worker and crew persistence, tenant scoped.
type Repository interface {
	CreateWorker(ctx context.Context, w Worker) (*Worker, error)
	UpdateWorker(ctx context.Context, w Worker) (*Worker, error)
	DeleteWorker(ctx context.Context, companyID, id int64) error
	FindWorkerByID(ctx context.Context, companyID, id int64) (*Worker, error)
	ListWorkers(ctx context.Context, companyID int64, crewID *int64, search string, limit, offset int) ([]Worker, int, error)

	CreateCrew(ctx context.Context, c Crew) (*Crew, error)
	UpdateCrew(ctx context.Context, c Crew) (*Crew, error)
	DeleteCrew(ctx context.Context, companyID, id int64) error
	FindCrewByID(ctx context.Context, companyID, id int64) (*Crew, error)
	ListCrews(ctx context.Context, companyID int64) ([]Crew, error)
}
