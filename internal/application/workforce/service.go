// Package workforce implements worker and crew management use cases.
package workforce

import (
	"context"
	"fmt"
	"log/slog"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/workforce"

	"github.com/shopspring/decimal"
)

// WorkerRequest carries the fields to create or update a worker.
type WorkerRequest struct {
	CrewID     *int64           `json:"crewId"`
	Name       string           `json:"name"`
	RUT        string           `json:"rut"`
	Trade      string           `json:"trade"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	Status     string           `json:"status"`
}

// CrewRequest carries the fields to create or update a crew.
type CrewRequest struct {
	ProjectID    *int64 `json:"projectId"`
	Name         string `json:"name"`
	SupervisorID *int64 `json:"supervisorId"`
}

// Service orchestrates workforce operations.
type Service struct {
	repo workforce.Repository
	log  *slog.Logger
}

// NewService creates the workforce service.
func NewService(repo workforce.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (r WorkerRequest) build(ctx context.Context, s *Service, companyID, id int64) (workforce.Worker, error) {
	if r.Name == "" {
		return workforce.Worker{}, errs.Validation("el nombre del trabajador es requerido")
	}
	rate := decimal.Zero
	if r.HourlyRate != nil {
		if r.HourlyRate.IsNegative() {
			return workforce.Worker{}, errs.Validation("la tarifa por hora no puede ser negativa")
		}
		rate = *r.HourlyRate
	}
	status := r.Status
	if status == "" {
		status = "ACTIVO"
	}
	if r.CrewID != nil {
		if _, err := s.repo.FindCrewByID(ctx, companyID, *r.CrewID); err != nil {
			return workforce.Worker{}, fmt.Errorf("buscando cuadrilla: %w", err)
		}
	}
	return workforce.Worker{
		ID:         id,
		CompanyID:  companyID,
		CrewID:     r.CrewID,
		Name:       r.Name,
		RUT:        r.RUT,
		Trade:      r.Trade,
		HourlyRate: rate,
		Status:     status,
	}, nil
}

// CreateWorker validates and persists a new worker.
func (s *Service) CreateWorker(ctx context.Context, companyID int64, req WorkerRequest) (*workforce.Worker, error) {
	w, err := req.build(ctx, s, companyID, 0)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateWorker(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("creando trabajador: %w", err)
	}
	return created, nil
}

// UpdateWorker replaces the fields of an existing worker.
func (s *Service) UpdateWorker(ctx context.Context, companyID, id int64, req WorkerRequest) (*workforce.Worker, error) {
	w, err := req.build(ctx, s, companyID, id)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateWorker(ctx, w)
}

// DeleteWorker removes a worker.
func (s *Service) DeleteWorker(ctx context.Context, companyID, id int64) error {
	return s.repo.DeleteWorker(ctx, companyID, id)
}

// GetWorker retrieves one worker.
func (s *Service) GetWorker(ctx context.Context, companyID, id int64) (*workforce.Worker, error) {
	return s.repo.FindWorkerByID(ctx, companyID, id)
}

// ListWorkers retrieves workers filtered by crew and search.
func (s *Service) ListWorkers(ctx context.Context, companyID int64, crewID *int64, search string, limit, offset int) ([]workforce.Worker, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListWorkers(ctx, companyID, crewID, search, limit, offset)
}

// CreateCrew validates and persists a new crew.
func (s *Service) CreateCrew(ctx context.Context, companyID int64, req CrewRequest) (*workforce.Crew, error) {
	if req.Name == "" {
		return nil, errs.Validation("el nombre de la cuadrilla es requerido")
	}
	created, err := s.repo.CreateCrew(ctx, workforce.Crew{
		CompanyID:    companyID,
		ProjectID:    req.ProjectID,
		Name:         req.Name,
		SupervisorID: req.SupervisorID,
	})
	if err != nil {
		return nil, fmt.Errorf("creando cuadrilla: %w", err)
	}
	return created, nil
}

// UpdateCrew replaces the fields of an existing crew.
func (s *Service) UpdateCrew(ctx context.Context, companyID, id int64, req CrewRequest) (*workforce.Crew, error) {
	if req.Name == "" {
		return nil, errs.Validation("el nombre de la cuadrilla es requerido")
	}
	return s.repo.UpdateCrew(ctx, workforce.Crew{
		ID:           id,
		CompanyID:    companyID,
		ProjectID:    req.ProjectID,
		Name:         req.Name,
		SupervisorID: req.SupervisorID,
	})
}

// DeleteCrew removes a crew; its workers stay, unassigned.
func (s *Service) DeleteCrew(ctx context.Context, companyID, id int64) error {
	return s.repo.DeleteCrew(ctx, companyID, id)
}

// GetCrew retrieves one crew.
func (s *Service) GetCrew(ctx context.Context, companyID, id int64) (*workforce.Crew, error) {
	return s.repo.FindCrewByID(ctx, companyID, id)
}

// ListCrews retrieves every crew of the company.
func (s *Service) ListCrews(ctx context.Context, companyID int64) ([]workforce.Crew, error) {
	return s.repo.ListCrews(ctx, companyID)
}
