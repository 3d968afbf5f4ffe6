package company

import (
	"context"
	"time"
)

// Role is the access level of a user within its company.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleOperador   Role = "OPERADOR"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOperador:
		return true
	}
	return false
}

// Company is the tenancy root. Every other entity hangs off one company.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RUT       string    `json:"rut"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is an operator account scoped to one company. PasswordHash is a
// bcrypt digest and never serializes.
type User struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"companyId"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Repository defines company and user persistence.
type Repository interface {
	CreateCompany(ctx context.Context, c Company) (*Company, error)
	UpdateCompany(ctx context.Context, c Company) (*Company, error)
	FindCompanyByID(ctx context.Context, id int64) (*Company, error)
	CompanyRUTExists(ctx context.Context, rut string) (bool, error)

	CreateUser(ctx context.Context, u User) (*User, error)
	UpdateUser(ctx context.Context, u User) (*User, error)
	DeleteUser(ctx context.Context, companyID, id int64) error
	FindUserByID(ctx context.Context, companyID, id int64) (*User, error)
	FindUserByEmail(ctx context.Context, companyID int64, email string) (*User, error)
	ListUsers(ctx context.Context, companyID int64) ([]User, error)
}
