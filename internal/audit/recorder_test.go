package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/activity"
)

type captureRepo struct {
	entries []activity.Log
	err     error
}

func (c *captureRepo) List(context.Context, activity.Filters) ([]activity.Log, error) {
	return c.entries, nil
}

func (c *captureRepo) GetByID(context.Context, int64) (*activity.Log, error) {
	return nil, activity.ErrNotFound
}

func (c *captureRepo) Create(_ context.Context, entry activity.Log) (*activity.Log, error) {
	if c.err != nil {
		return nil, c.err
	}
	entry.ID = int64(len(c.entries) + 1)
	c.entries = append(c.entries, entry)
	return &entry, nil
}

func TestRecorderResolvesActorFromContext(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo, zerolog.Nop())

	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{UserID: 42, Username: "adele"})
	recorder.Record(ctx, Entry{
		Action:     "item.created",
		EntityType: "item",
		EntityID:   "7",
		Details:    map[string]interface{}{"sku": "WIDGET-1"},
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	require.NotNil(t, entry.UserID)
	require.Equal(t, int64(42), *entry.UserID)
	require.Equal(t, "item.created", entry.Action)
	require.Equal(t, "7", entry.EntityID)
	require.False(t, entry.OccurredAt.IsZero())
}

func TestRecorderAnonymousWithoutPrincipal(t *testing.T) {
	repo := &captureRepo{}
	recorder := NewRecorder(repo, zerolog.Nop())

	recorder.Record(context.Background(), Entry{Action: "user.created", EntityType: "user", EntityID: "1"})

	require.Len(t, repo.entries, 1)
	require.Nil(t, repo.entries[0].UserID)
}

func TestRecorderSwallowsPersistenceErrors(t *testing.T) {
	repo := &captureRepo{err: errors.New("disk full")}
	recorder := NewRecorder(repo, zerolog.Nop())

	// Must not panic or propagate.
	recorder.Record(context.Background(), Entry{Action: "order.created", EntityType: "order", EntityID: "1"})
	require.Empty(t, repo.entries)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var recorder *Recorder
	recorder.Record(context.Background(), Entry{Action: "noop"})
}
