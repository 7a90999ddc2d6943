package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/metrics"
)

// SessionCleanupArgs defines the job that purges expired server-side sessions.
type SessionCleanupArgs struct{}

func (SessionCleanupArgs) Kind() string { return JobKindSessionCleanup }

type SessionCleanupWorker struct {
	river.WorkerDefaults[SessionCleanupArgs]
	Sessions *auth.SessionManager
	Logger   *slog.Logger
}

func (SessionCleanupWorker) Kind() string { return JobKindSessionCleanup }

func (w SessionCleanupWorker) Work(ctx context.Context, job *river.Job[SessionCleanupArgs]) error {
	if w.Sessions == nil {
		return fmt.Errorf("session manager not configured")
	}

	purged, err := w.Sessions.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}

	if purged > 0 {
		metrics.SessionsPurged.Add(float64(purged))
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("session cleanup completed", "purged", purged, "attempt", job.Attempt)
	return nil
}
