package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/warebase/server/internal/storage"
)

type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit,omitempty"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

// HealthChecker reports readiness of the storage engine and, when jobs are
// enabled, the background queue.
type HealthChecker struct {
	repo        storage.Repository
	riverClient *river.Client[pgx.Tx]
	version     string
	gitCommit   string
}

func NewHealthChecker(repo storage.Repository, riverClient *river.Client[pgx.Tx], version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		repo:        repo,
		riverClient: riverClient,
		version:     version,
		gitCommit:   gitCommit,
	}
}

func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"storage": h.checkStorage(ctx),
		}
		if h.riverClient != nil {
			checks["job_queue"] = h.checkJobQueue(ctx)
		}

		status := "healthy"
		httpStatus := http.StatusOK
		for _, check := range checks {
			if check.Status != "healthy" {
				status = "unhealthy"
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, httpStatus, HealthCheck{
			Status:    status,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkStorage(ctx context.Context) CheckResult {
	start := time.Now()
	if err := h.repo.Ping(ctx); err != nil {
		return CheckResult{
			Status:    "unhealthy",
			Message:   err.Error(),
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}
	return CheckResult{Status: "healthy", LatencyMs: time.Since(start).Milliseconds()}
}

func (h *HealthChecker) checkJobQueue(ctx context.Context) CheckResult {
	start := time.Now()
	// A queue that cannot report queue state is treated as down.
	if _, err := h.riverClient.QueueList(ctx, river.NewQueueListParams()); err != nil {
		return CheckResult{
			Status:    "unhealthy",
			Message:   err.Error(),
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}
	return CheckResult{Status: "healthy", LatencyMs: time.Since(start).Milliseconds()}
}
