package document

import (
	"context"
	"time"
)

// StorageState tracks the progress of the cloud upload.
type StorageState string

const (
	StatePendiente StorageState = "PENDIENTE"
	StateSubido    StorageState = "SUBIDO"
	StateError     StorageState = "ERROR"
)

// Document is file metadata; the bytes live in cloud storage.
type Document struct {
	ID          int64        `json:"id"`
	CompanyID   int64        `json:"companyId"`
	ProjectID   *int64       `json:"projectId,omitempty"`
	InvoiceID   *int64       `json:"invoiceId,omitempty"`
	Name        string       `json:"name"`
	MimeType    string       `json:"mimeType"`
	SizeBytes   int64        `json:"sizeBytes"`
	State       StorageState `json:"storageState"`
	DriveFileID string       `json:"driveFileId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Repository defines document metadata persistence, tenant scoped.
type Repository interface {
	Create(ctx context.Context, d Document) (*Document, error)
	Delete(ctx context.Context, companyID, id int64) error
	FindByID(ctx context.Context, companyID, id int64) (*Document, error)
	List(ctx context.Context, companyID int64, projectID *int64, limit, offset int) ([]Document, int, error)

	// SetStorageResult records the outcome of the background upload.
	SetStorageResult(ctx context.Context, documentID int64, state StorageState, driveFileID string) error
}

// Storage is the cloud file store the uploader pushes bytes to.
type Storage interface {
	// Upload stores the content and returns the remote file ID.
	Upload(ctx context.Context, name, mimeType string, content []byte) (string, error)
}
