package health

import (
	"context"
	"time"

	corehealth "obrasoft/ms_gestion_core/internal/core/health"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	pool      *pgxpool.Pool
	startedAt time.Time
}

// NewService builds the health service. pool may be nil in tests.
func NewService(meta Metadata, pool *pgxpool.Pool) *Service {
	return &Service{
		meta:      meta,
		pool:      pool,
		startedAt: time.Now().UTC(),
	}
}

// Status returns the current availability snapshot, including a live
// database ping.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)

	dbStatus := "UP"
	if s.pool == nil {
		dbStatus = "NOT_CONFIGURED"
	} else if err := s.pool.Ping(ctx); err != nil {
		dbStatus = "DOWN"
	}

	return corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      "UP",
		Database:    dbStatus,
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}
}
