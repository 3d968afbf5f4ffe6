// Package client implements the client directory use cases.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"obrasoft/ms_gestion_core/internal/core/client"
	"obrasoft/ms_gestion_core/internal/core/errs"
)

// ClientRequest carries the fields to create or update a client.
type ClientRequest struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Service orchestrates client operations.
type Service struct {
	repo client.Repository
	log  *slog.Logger
}

// NewService creates the client service.
func NewService(repo client.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (r ClientRequest) validate() error {
	if r.Name == "" {
		return errs.Validation("el nombre del cliente es requerido")
	}
	return nil
}

// Create validates and persists a new client.
func (s *Service) Create(ctx context.Context, companyID int64, req ClientRequest) (*client.Client, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, client.Client{
		CompanyID: companyID,
		Name:      req.Name,
		RUT:       req.RUT,
		Contact:   req.Contact,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("creando cliente: %w", err)
	}
	return created, nil
}

// Update replaces the fields of an existing client.
func (s *Service) Update(ctx context.Context, companyID, id int64, req ClientRequest) (*client.Client, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, client.Client{
		ID:        id,
		CompanyID: companyID,
		Name:      req.Name,
		RUT:       req.RUT,
		Contact:   req.Contact,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	return s.repo.Delete(ctx, companyID, id)
}

// Get retrieves one client.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*client.Client, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// List retrieves clients matching the search plus the total count.
func (s *Service) List(ctx context.Context, companyID int64, search string, limit, offset int) ([]client.Client, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, companyID, search, limit, offset)
}
