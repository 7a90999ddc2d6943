package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/email"
	"github.com/warebase/server/internal/storage/memory"
)

type recordingDigester struct {
	lines []email.DigestLine
	calls int
}

func (d *recordingDigester) SendLowStockDigest(_ context.Context, lines []email.DigestLine) error {
	d.lines = lines
	d.calls++
	return nil
}

func TestSessionCleanupWorkerPurgesExpired(t *testing.T) {
	repo := memory.NewRepository()

	// A manager with a negative TTL issues sessions that are already expired.
	expired := auth.NewSessionManager(repo.Sessions(), -time.Minute)
	_, _, err := expired.Issue(context.Background(), 1)
	require.NoError(t, err)
	_, _, err = expired.Issue(context.Background(), 2)
	require.NoError(t, err)

	live := auth.NewSessionManager(repo.Sessions(), time.Hour)
	liveToken, _, err := live.Issue(context.Background(), 3)
	require.NoError(t, err)

	worker := SessionCleanupWorker{Sessions: live}
	job := &river.Job[SessionCleanupArgs]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   SessionCleanupArgs{},
	}
	require.NoError(t, worker.Work(context.Background(), job))

	_, err = live.Validate(context.Background(), liveToken)
	require.NoError(t, err)
}

func TestSessionCleanupWorkerRequiresManager(t *testing.T) {
	worker := SessionCleanupWorker{}
	job := &river.Job[SessionCleanupArgs]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   SessionCleanupArgs{},
	}
	require.Error(t, worker.Work(context.Background(), job))
}

func TestLowStockScanWorkerBuildsDigest(t *testing.T) {
	repo := memory.NewRepository()
	logger := zerolog.Nop()
	ctx := context.Background()

	orgService := organizations.NewService(repo.Organizations(), nil, logger)
	org, err := orgService.Create(ctx, organizations.CreateParams{Name: "Acme Logistics"})
	require.NoError(t, err)

	catalogService := catalog.NewService(repo.Categories(), repo.Suppliers(), repo.Items(), repo.Organizations(), nil, logger)

	// Below reorder point with zero stock.
	low, err := catalogService.CreateItem(ctx, catalog.CreateItemParams{
		SKU: "SKU-100", Name: "Widget", ReorderPoint: 10, OrganizationID: org.ID,
	})
	require.NoError(t, err)

	// No reorder point set, never in the digest.
	_, err = catalogService.CreateItem(ctx, catalog.CreateItemParams{
		SKU: "SKU-200", Name: "Gadget", OrganizationID: org.ID,
	})
	require.NoError(t, err)

	digester := &recordingDigester{}
	worker := LowStockScanWorker{
		Items:    repo.Items(),
		Levels:   repo.Inventory(),
		Digester: digester,
	}
	job := &river.Job[LowStockScanArgs]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   LowStockScanArgs{},
	}
	require.NoError(t, worker.Work(context.Background(), job))

	require.Equal(t, 1, digester.calls)
	require.Len(t, digester.lines, 1)
	require.Equal(t, low.SKU, digester.lines[0].SKU)
	require.Equal(t, int64(0), digester.lines[0].OnHand)
	require.Equal(t, int64(10), digester.lines[0].ReorderPoint)
}

func TestLowStockScanWorkerRequiresDependencies(t *testing.T) {
	worker := LowStockScanWorker{}
	job := &river.Job[LowStockScanArgs]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   LowStockScanArgs{},
	}
	require.Error(t, worker.Work(context.Background(), job))
}

func TestNewWorkersRegistersAllKinds(t *testing.T) {
	repo := memory.NewRepository()
	sessions := auth.NewSessionManager(repo.Sessions(), time.Hour)
	workers := NewWorkers(sessions, repo.Items(), repo.Inventory(), &recordingDigester{}, nil)
	require.NotNil(t, workers)
}
