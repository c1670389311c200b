package jobstore

import (
	"context"

	"github.com/alphogen/video-runner/internal/models"
)

// Store is the external queue store the worker polls. Two implementations
// exist: Supabase (REST, the hosted deployment) and Postgres (direct SQL,
// self-hosted). The worker performs no claim or lock beyond reading status
// "queued" and writing "processing"; concurrent workers rely on the store's
// own concurrency control.
type Store interface {
	// FetchQueued returns up to limit jobs with status "queued", ordered
	// oldest-created first.
	FetchQueued(ctx context.Context, limit int) ([]models.Job, error)

	// UpdateStatus applies a partial, idempotent update keyed by job ID
	// and stamps updated_at.
	UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error
}
