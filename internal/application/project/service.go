// Package project implements the project portfolio use cases.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/project"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ProjectRequest carries the fields to create or update a project.
type ProjectRequest struct {
	ClientID  *int64           `json:"clientId"`
	Name      string           `json:"name"`
	Code      string           `json:"code"`
	Status    string           `json:"status"`
	Budget    *decimal.Decimal `json:"budget"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
}

// Service orchestrates project operations.
type Service struct {
	repo project.Repository
	log  *slog.Logger
}

// NewService creates the project service.
func NewService(repo project.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (r ProjectRequest) build(companyID, id int64) (project.Project, error) {
	if r.Name == "" {
		return project.Project{}, errs.Validation("el nombre del proyecto es requerido")
	}
	status := project.StatusActivo
	if r.Status != "" {
		status = project.Status(r.Status)
		if !project.ValidStatus(status) {
			return project.Project{}, errs.Validation("estado de proyecto inválido: %s", r.Status)
		}
	}
	budget := decimal.Zero
	if r.Budget != nil {
		if r.Budget.IsNegative() {
			return project.Project{}, errs.Validation("el presupuesto no puede ser negativo")
		}
		budget = *r.Budget
	}

	p := project.Project{
		ID:        id,
		CompanyID: companyID,
		ClientID:  r.ClientID,
		Name:      r.Name,
		Code:      r.Code,
		Status:    status,
		Budget:    budget,
	}
	if r.StartDate != "" {
		parsed, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			return project.Project{}, errs.Validation("el campo startDate debe tener formato AAAA-MM-DD")
		}
		p.StartDate = &parsed
	}
	if r.EndDate != "" {
		parsed, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			return project.Project{}, errs.Validation("el campo endDate debe tener formato AAAA-MM-DD")
		}
		p.EndDate = &parsed
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return project.Project{}, errs.Validation("la fecha de término no puede ser anterior al inicio")
	}
	return p, nil
}

// Create validates and persists a new project.
func (s *Service) Create(ctx context.Context, companyID int64, req ProjectRequest) (*project.Project, error) {
	p, err := req.build(companyID, 0)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("creando proyecto: %w", err)
	}
	return created, nil
}

// Update replaces the fields of an existing project.
func (s *Service) Update(ctx context.Context, companyID, id int64, req ProjectRequest) (*project.Project, error) {
	p, err := req.build(companyID, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	return s.repo.Delete(ctx, companyID, id)
}

// Get retrieves one project.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*project.Project, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// List retrieves projects filtered by status and search plus the total count.
func (s *Service) List(ctx context.Context, companyID int64, status, search string, limit, offset int) ([]project.Project, int, error) {
	var st project.Status
	if status != "" {
		st = project.Status(status)
		if !project.ValidStatus(st) {
			return nil, 0, errs.Validation("estado de proyecto inválido: %s", status)
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
