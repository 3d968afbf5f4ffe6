package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Entry records a mutation of a core entity for traceability. Writing the
// trail is best effort: a failed audit insert never fails the operation it
// describes.
type Entry struct {
	ID            int64
	CompanyID     int64
	CorrelationID string
	Entity        string
	EntityID      int64
	Action        string
	Detail        json.RawMessage
	CreatedAt     time.Time
}

// Actions recorded by the invoice lifecycle.
const (
	ActionCreated         = "CREATED"
	ActionUpdated         = "UPDATED"
	ActionDeleted         = "DELETED"
	ActionCancelled       = "CANCELLED"
	ActionRestored        = "RESTORED"
	ActionPaymentRecorded = "PAYMENT_RECORDED"
	ActionPaymentDeleted  = "PAYMENT_DELETED"
)

// Repository defines the contract for persisting and reading audit entries.
type Repository interface {
	// Save persists one audit entry.
	Save(ctx context.Context, entry Entry) error

	// FindByEntity retrieves the trail of one entity, newest first.
	FindByEntity(ctx context.Context, companyID int64, entity string, entityID int64) ([]Entry, error)
}
