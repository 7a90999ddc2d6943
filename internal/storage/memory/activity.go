package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/activity"
)

var _ activity.Repository = (*activityRepo)(nil)

type activityRepo struct {
	s *store
}

func (r *activityRepo) List(ctx context.Context, filters activity.Filters) ([]activity.Log, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]activity.Log, 0, len(r.s.activity))
	for _, entry := range r.s.activity {
		if filters.OrganizationID != nil {
			if entry.OrganizationID == nil || *entry.OrganizationID != *filters.OrganizationID {
				continue
			}
		}
		if filters.UserID != nil {
			if entry.UserID == nil || *entry.UserID != *filters.UserID {
				continue
			}
		}
		if filters.EntityType != "" && entry.EntityType != filters.EntityType {
			continue
		}
		if filters.EntityID != "" && entry.EntityID != filters.EntityID {
			continue
		}
		if filters.Action != "" && entry.Action != filters.Action {
			continue
		}
		entry.Details = cloneDetails(entry.Details)
		out = append(out, entry)
	}
	// Audit trails read newest-first.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *activityRepo) GetByID(ctx context.Context, id int64) (*activity.Log, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.activity[id]
	if !ok {
		return nil, activity.ErrNotFound
	}
	entry.Details = cloneDetails(entry.Details)
	return &entry, nil
}

func (r *activityRepo) Create(ctx context.Context, entry activity.Log) (*activity.Log, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = r.s.nextID("activity_logs")
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = now()
	}
	entry.Details = cloneDetails(entry.Details)
	r.s.activity[entry.ID] = entry

	out := entry
	out.Details = cloneDetails(entry.Details)
	return &out, nil
}

func cloneDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	out := make(map[string]interface{}, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}
