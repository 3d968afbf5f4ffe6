// Package admin exposes operational endpoints that are not tied to a
// single tenant, such as triggering database backups.
package admin

import (
	"log/slog"
	"net/http"

	httperrors "obrasoft/ms_gestion_core/internal/infrastructure/http"
)

// BackupTrigger launches a database dump without blocking the caller.
type BackupTrigger interface {
	RunDetached()
}

// Handler bridges HTTP traffic with operational tasks.
type Handler struct {
	backup BackupTrigger
	log    *slog.Logger
}

// NewHandler creates a new admin HTTP handler.
func NewHandler(backup BackupTrigger, log *slog.Logger) *Handler {
	return &Handler{backup: backup, log: log}
}

// TriggerBackup handles POST /api/v1/admin/backup. The dump runs in the
// background; the response only acknowledges the request.
func (h *Handler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		httperrors.WriteError(w, http.StatusServiceUnavailable, "Conflicto", []string{"los respaldos no están configurados"}, h.log)
		return
	}

	h.backup.RunDetached()
	httperrors.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "respaldo en ejecución",
	}, h.log)
}
