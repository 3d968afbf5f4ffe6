package client

import (
	"context"
	"time"
)

// Client is a customer or supplier counterpart of the company.
type Client struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	Name      string    `json:"name"`
	RUT       string    `json:"rut,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository defines client persistence, tenant scoped.
type Repository interface {
	Create(ctx context.Context, c Client) (*Client, error)
	Update(ctx context.Context, c Client) (*Client, error)
	Delete(ctx context.Context, companyID, id int64) error
	FindByID(ctx context.Context, companyID, id int64) (*Client, error)
	List(ctx context.Context, companyID int64, search string, limit, offset int) ([]Client, int, error)
}
