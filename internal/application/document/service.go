// Package document implements document metadata management and the
// asynchronous upload of file bytes to cloud storage.
package document

import (
	"context"
	"fmt"
	"log/slog"

	"obrasoft/ms_gestion_core/internal/core/document"
	"obrasoft/ms_gestion_core/internal/core/errs"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 25 << 20

// Uploader is the submission side of the upload worker pool.
type Uploader interface {
	Submit(job UploadJob) error
}

// Service orchestrates document operations. The uploader may be nil when
// cloud storage is disabled; documents then stay PENDIENTE.
type Service struct {
	repo     document.Repository
	uploader Uploader
	log      *slog.Logger
}

// NewService creates the document service.
func NewService(repo document.Repository, uploader Uploader, log *slog.Logger) *Service {
	return &Service{repo: repo, uploader: uploader, log: log}
}

// Create registers a document and enqueues its bytes for upload. The HTTP
// request returns as soon as the metadata row exists; the storage state
// moves to SUBIDO or ERROR in the background.
func (s *Service) Create(ctx context.Context, companyID int64, projectID, invoiceID *int64, name, mimeType string, content []byte) (*document.Document, error) {
	if name == "" {
		return nil, errs.Validation("el nombre del documento es requerido")
	}
	if len(content) == 0 {
		return nil, errs.Validation("el documento está vacío")
	}
	if len(content) > maxUploadBytes {
		return nil, errs.Validation("el documento supera el tamaño máximo de %d MB", maxUploadBytes>>20)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc := document.Document{
		CompanyID: companyID,
		ProjectID: projectID,
		InvoiceID: invoiceID,
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: int64(len(content)),
		State:     document.StatePendiente,
	}

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("creando documento: %w", err)
	}

	if s.uploader != nil {
		job := UploadJob{
			DocumentID: created.ID,
			Name:       created.Name,
			MimeType:   created.MimeType,
			Content:    content,
		}
		if err := s.uploader.Submit(job); err != nil {
			s.log.Warn("cola de subida llena, documento marcado con error",
				slog.Int64("document_id", created.ID),
			)
			if err := s.repo.SetStorageResult(ctx, created.ID, document.StateError, ""); err != nil {
				s.log.Error("no se pudo marcar el documento", slog.Any("error", err))
			}
			created.State = document.StateError
		}
	}
	return created, nil
}

// Get retrieves document metadata.
func (s *Service) Get(ctx context.Context, companyID, id int64) (*document.Document, error) {
	return s.repo.FindByID(ctx, companyID, id)
}

// List retrieves documents, optionally scoped to a project.
func (s *Service) List(ctx context.Context, companyID int64, projectID *int64, limit, offset int) ([]document.Document, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, companyID, projectID, limit, offset)
}

// Delete removes document metadata. The remote file, if any, is left in
// place; Drive cleanup runs separately.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	return s.repo.Delete(ctx, companyID, id)
}
