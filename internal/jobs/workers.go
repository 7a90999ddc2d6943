package jobs

import (
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
)

// NewWorkers registers every job kind. All workers are required; a deployment
// that runs the job client runs the full schedule.
func NewWorkers(sessions *auth.SessionManager, items catalog.ItemRepository, levels inventory.LevelRepository, digester Digester, logger *slog.Logger) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker[SessionCleanupArgs](workers, SessionCleanupWorker{
		Sessions: sessions,
		Logger:   logger,
	})
	river.AddWorker[LowStockScanArgs](workers, LowStockScanWorker{
		Items:    items,
		Levels:   levels,
		Digester: digester,
		Logger:   logger,
	})
	return workers
}
