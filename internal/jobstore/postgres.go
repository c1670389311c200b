package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alphogen/video-runner/internal/models"
)

// Postgres reads the jobs table directly over database/sql. Used by
// self-hosted deployments where the worker shares the database instead of
// going through the Supabase REST layer.
type Postgres struct {
	db *sql.DB
}

// Ensure Postgres implements Store at compile time.
var _ Store = (*Postgres)(nil)

func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) FetchQueued(ctx context.Context, limit int) ([]models.Job, error) {
	query := `
		SELECT id, prompt, status, result_url, error_message, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, models.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query queued jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		err := rows.Scan(
			&job.ID, &job.Prompt, &job.Status, &job.ResultURL,
			&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// UpdateStatus is a partial update: nil fields keep their current column
// value via COALESCE, making re-delivery of the same update idempotent.
func (p *Postgres) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    result_url = COALESCE($2, result_url),
		    error_message = COALESCE($3, error_message),
		    updated_at = $4
		WHERE id = $5
	`

	_, err := p.db.ExecContext(ctx, query, update.Status, update.ResultURL, update.ErrorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	return nil
}
