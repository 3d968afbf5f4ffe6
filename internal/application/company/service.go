// Package company implements company onboarding and user account
// management. User passwords hash with bcrypt before they ever touch the
// repository.
package company

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"obrasoft/ms_gestion_core/internal/core/company"
	"obrasoft/ms_gestion_core/internal/core/errs"

	"golang.org/x/crypto/bcrypt"
)

// CompanyRequest carries the fields to create or update a company.
type CompanyRequest struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// UserRequest carries the fields to create or update a user account.
// Password is optional on update; empty keeps the current hash.
type UserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

// Service orchestrates company and user operations.
type Service struct {
	repo company.Repository
	log  *slog.Logger
}

// NewService creates the company service.
func NewService(repo company.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateCompany validates and persists a new company.
func (s *Service) CreateCompany(ctx context.Context, req CompanyRequest) (*company.Company, error) {
	if req.Name == "" {
		return nil, errs.Validation("el nombre de la empresa es requerido")
	}
	if req.RUT == "" {
		return nil, errs.Validation("el RUT de la empresa es requerido")
	}

	exists, err := s.repo.CompanyRUTExists(ctx, req.RUT)
	if err != nil {
		return nil, fmt.Errorf("verificando RUT: %w", err)
	}
	if exists {
		return nil, errs.Conflict("ya existe una empresa con RUT %s", req.RUT)
	}

	created, err := s.repo.CreateCompany(ctx, company.Company{
		Name:    req.Name,
		RUT:     req.RUT,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("creando empresa: %w", err)
	}
	return created, nil
}

// UpdateCompany replaces the fields of a company.
func (s *Service) UpdateCompany(ctx context.Context, id int64, req CompanyRequest) (*company.Company, error) {
	if req.Name == "" {
		return nil, errs.Validation("el nombre de la empresa es requerido")
	}
	if req.RUT == "" {
		return nil, errs.Validation("el RUT de la empresa es requerido")
	}
	return s.repo.UpdateCompany(ctx, company.Company{
		ID:      id,
		Name:    req.Name,
		RUT:     req.RUT,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
}

// GetCompany retrieves one company.
func (s *Service) GetCompany(ctx context.Context, id int64) (*company.Company, error) {
	return s.repo.FindCompanyByID(ctx, id)
}

// CreateUser validates, hashes the password and persists a new user.
func (s *Service) CreateUser(ctx context.Context, companyID int64, req UserRequest) (*company.User, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, errs.Validation("el correo electrónico no es válido")
	}
	if req.FullName == "" {
		return nil, errs.Validation("el nombre completo es requerido")
	}
	if len(req.Password) < 8 {
		return nil, errs.Validation("la contraseña debe tener al menos 8 caracteres")
	}
	role := company.RoleOperador
	if req.Role != "" {
		role = company.Role(req.Role)
		if !company.ValidRole(role) {
			return nil, errs.Validation("rol inválido: %s", req.Role)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("generando hash de contraseña: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	created, err := s.repo.CreateUser(ctx, company.User{
		CompanyID:    companyID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	})
	if err != nil {
		return nil, fmt.Errorf("creando usuario: %w", err)
	}
	return created, nil
}

// UpdateUser replaces the fields of a user. An empty password keeps the
// current hash.
func (s *Service) UpdateUser(ctx context.Context, companyID, id int64, req UserRequest) (*company.User, error) {
	current, err := s.repo.FindUserByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, errs.Validation("el correo electrónico no es válido")
	}
	if req.FullName == "" {
		return nil, errs.Validation("el nombre completo es requerido")
	}
	role := current.Role
	if req.Role != "" {
		role = company.Role(req.Role)
		if !company.ValidRole(role) {
			return nil, errs.Validation("rol inválido: %s", req.Role)
		}
	}

	hash := current.PasswordHash
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, errs.Validation("la contraseña debe tener al menos 8 caracteres")
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("generando hash de contraseña: %w", err)
		}
		hash = string(newHash)
	}

	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	return s.repo.UpdateUser(ctx, company.User{
		ID:           id,
		CompanyID:    companyID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         role,
		Active:       active,
	})
}

// DeleteUser removes a user account.
func (s *Service) DeleteUser(ctx context.Context, companyID, id int64) error {
	return s.repo.DeleteUser(ctx, companyID, id)
}

// GetUser retrieves one user.
func (s *Service) GetUser(ctx context.Context, companyID, id int64) (*company.User, error) {
	return s.repo.FindUserByID(ctx, companyID, id)
}

// ListUsers retrieves every user of the company.
func (s *Service) ListUsers(ctx context.Context, companyID int64) ([]company.User, error) {
	return s.repo.ListUsers(ctx, companyID)
}

// VerifyCredentials checks an email/password pair against the stored hash.
// Inactive accounts are rejected the same way as bad credentials.
func (s *Service) VerifyCredentials(ctx context.Context, companyID int64, email, password string) (*company.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, companyID, email)
	if err != nil {
		return nil, errs.Validation("credenciales inválidas")
	}
	if !user.Active {
		return nil, errs.Validation("credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.Validation("credenciales inválidas")
	}
	return user, nil
}
