package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/activity"
)

// Entry describes one mutating action for the activity trail. The actor is
// resolved from the request principal; callers only name what happened.
type Entry struct {
	Action         string
	EntityType     string
	EntityID       string
	OrganizationID *int64
	Details        map[string]interface{}
}

// Recorder appends activity-log rows and mirrors them to the structured log.
// Persistence failures are logged, never surfaced: a completed mutation must
// not fail because its audit insert did.
type Recorder struct {
	repo   activity.Repository
	logger zerolog.Logger
}

func NewRecorder(repo activity.Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record appends one entry. Safe to call on a nil recorder so services can be
// constructed without auditing in tests.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil {
		return
	}

	var userID *int64
	actor := "anonymous"
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		id := principal.UserID
		userID = &id
		actor = principal.Username
	}

	row := activity.Log{
		UserID:         userID,
		Action:         entry.Action,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
		OrganizationID: entry.OrganizationID,
		Details:        entry.Details,
		OccurredAt:     time.Now().UTC(),
	}

	if _, err := r.repo.Create(ctx, row); err != nil {
		r.logger.Error().
			Err(err).
			Str("action", entry.Action).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("failed to persist activity log entry")
	}

	r.logger.Info().
		Str("action", entry.Action).
		Str("actor", actor).
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Msg("audit")
}
