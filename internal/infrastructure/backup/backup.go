// Package backup produces database dumps with pg_dump. A dump is a plain
// SQL file named with a UUID so concurrent runs never clash.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"obrasoft/ms_gestion_core/internal/infrastructure/config"

	"github.com/google/uuid"
)

// Runner shells out to pg_dump using the configured database credentials.
type Runner struct {
	db  config.DatabaseSettings
	cfg config.BackupSettings
	log *slog.Logger
}

// NewRunner creates a backup runner.
func NewRunner(db config.DatabaseSettings, cfg config.BackupSettings, log *slog.Logger) *Runner {
	return &Runner{db: db, cfg: cfg, log: log}
}

// Run executes one dump and returns the path of the produced file.
func (r *Runner) Run(ctx context.Context) (string, error) {
	if err := os.MkdirAll(r.cfg.Directory, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.sql",
		r.db.Database,
		time.Now().Format("20060102_150405"),
		uuid.New().String()[:8],
	)
	path := filepath.Join(r.cfg.Directory, name)

	ctx, cancel := context.WithTimeout(ctx, r.cfg.DumpTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.PgDumpPath,
		"--host", r.db.Host,
		"--port", fmt.Sprintf("%d", r.db.Port),
		"--username", r.db.User,
		"--dbname", r.db.Database,
		"--no-password",
		"--format", "plain",
		"--file", path,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.db.Password)

	start := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		// A partial file is worse than no file.
		os.Remove(path)
		return "", fmt.Errorf("pg_dump: %w: %s", err, output)
	}

	r.log.Info("respaldo generado",
		slog.String("file", path),
		slog.Duration("duration", time.Since(start)),
	)
	return path, nil
}

// RunDetached launches a dump in the background and reports the outcome
// through the logger only. Used by the HTTP trigger, which returns 202.
func (r *Runner) RunDetached() {
	go func() {
		if _, err := r.Run(context.Background()); err != nil {
			r.log.Error("falló el respaldo", slog.Any("error", err))
		}
	}()
}
