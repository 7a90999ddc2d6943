package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/riverqueue/river"

	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/email"
)

// Digester sends the daily low-stock digest. Satisfied by the email service.
type Digester interface {
	SendLowStockDigest(ctx context.Context, lines []email.DigestLine) error
}

// LowStockScanArgs defines the daily scan for items at or below their reorder
// point. The real-time low-stock alert fires on each stock movement; the scan
// catches items that drifted low without recent movement and rolls everything
// into one digest.
type LowStockScanArgs struct{}

func (LowStockScanArgs) Kind() string { return JobKindLowStockScan }

type LowStockScanWorker struct {
	river.WorkerDefaults[LowStockScanArgs]
	Items    catalog.ItemRepository
	Levels   inventory.LevelRepository
	Digester Digester
	Logger   *slog.Logger
}

func (LowStockScanWorker) Kind() string { return JobKindLowStockScan }

func (w LowStockScanWorker) Work(ctx context.Context, job *river.Job[LowStockScanArgs]) error {
	if w.Items == nil || w.Levels == nil {
		return fmt.Errorf("repositories not configured")
	}
	if w.Digester == nil {
		return fmt.Errorf("digester not configured")
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	items, err := w.Items.List(ctx, catalog.ItemFilters{})
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	tracked := make([]catalog.Item, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ReorderPoint > 0 {
			tracked = append(tracked, item)
			ids = append(ids, item.ID)
		}
	}
	if len(tracked) == 0 {
		logger.Info("low stock scan completed", "lines", 0, "attempt", job.Attempt)
		return nil
	}

	levels, err := w.Levels.ListByItemIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("list stock levels: %w", err)
	}

	onHand := make(map[int64]int64, len(tracked))
	for _, level := range levels {
		onHand[level.ItemID] += level.Quantity
	}

	var lines []email.DigestLine
	for _, item := range tracked {
		if onHand[item.ID] <= item.ReorderPoint {
			lines = append(lines, email.DigestLine{
				SKU:          item.SKU,
				Name:         item.Name,
				OnHand:       onHand[item.ID],
				ReorderPoint: item.ReorderPoint,
			})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].SKU < lines[j].SKU })

	if err := w.Digester.SendLowStockDigest(ctx, lines); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	logger.Info("low stock scan completed", "lines", len(lines), "attempt", job.Attempt)
	return nil
}
