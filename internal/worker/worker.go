package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alphogen/video-runner/internal/jobstore"
	"github.com/alphogen/video-runner/internal/models"
)

// Stage interfaces. The worker drives concrete components from generate,
// media, publisher, and webhook, but depends only on what each stage does
// so the pipeline is testable with fakes.

type SceneGenerator interface {
	GenerateScenes(ctx context.Context, runID, prompt string) ([]models.SceneAsset, error)
}

type NarrationGenerator interface {
	GenerateNarration(ctx context.Context, runID, prompt string) (models.NarrationAsset, error)
}

type Assembler interface {
	Assemble(ctx context.Context, runID string, scenes []models.SceneAsset, narration models.NarrationAsset) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, localPath, jobID string) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, payload models.WebhookPayload) error
}

// Stats is a snapshot of worker counters for the ops endpoint.
type Stats struct {
	JobsProcessed int64     `json:"jobs_processed"`
	JobsCompleted int64     `json:"jobs_completed"`
	JobsFailed    int64     `json:"jobs_failed"`
	LastPollAt    time.Time `json:"last_poll_at"`
}

// Worker drives jobs from queued to processing to a terminal status. One
// polling loop dequeues a bounded batch and processes it sequentially;
// every stage call blocks until response or timeout, and a stage timeout is
// a normal job failure, not a process error.
type Worker struct {
	store        jobstore.Store
	scenes       SceneGenerator
	narration    NarrationGenerator
	assembler    Assembler
	publisher    Publisher
	notifier     Notifier
	pollInterval time.Duration
	errorBackoff time.Duration
	batchLimit   int

	processed  atomic.Int64
	completed  atomic.Int64
	failed     atomic.Int64
	lastPollNs atomic.Int64
}

func New(
	store jobstore.Store,
	scenes SceneGenerator,
	narration NarrationGenerator,
	assembler Assembler,
	publisher Publisher,
	notifier Notifier,
	pollInterval, errorBackoff time.Duration,
	batchLimit int,
) *Worker {
	return &Worker{
		store:        store,
		scenes:       scenes,
		narration:    narration,
		assembler:    assembler,
		publisher:    publisher,
		notifier:     notifier,
		pollInterval: pollInterval,
		errorBackoff: errorBackoff,
		batchLimit:   batchLimit,
	}
}

// Run is the polling loop. It returns when ctx is cancelled; shutdown waits
// for the current job, never interrupts it mid-pipeline.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("Worker started (batchLimit=%d, pollInterval=%v)", w.batchLimit, w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Worker shutting down...")
			return ctx.Err()
		default:
		}

		jobs, err := w.store.FetchQueued(ctx, w.batchLimit)
		w.lastPollNs.Store(time.Now().UnixNano())

		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("Error fetching queued jobs: %v", err)
			w.sleep(ctx, w.errorBackoff)
			continue
		}

		// Oldest first, as returned by the store
		for _, job := range jobs {
			if ctx.Err() != nil {
				break
			}
			w.ProcessJob(ctx, job)
		}

		w.sleep(ctx, w.pollInterval)
	}
}

// ProcessJob runs one job to a terminal state. By the time it returns, the
// job is completed or failed in the store (never left processing) and
// exactly one terminal webhook has been attempted.
func (w *Worker) ProcessJob(ctx context.Context, job models.Job) {
	log.Printf("Processing job %s (prompt: %q)", job.ID, truncatePrompt(job.Prompt))
	w.processed.Add(1)

	// Persist processing before any generation work, so a crash
	// mid-pipeline leaves visible evidence instead of a stuck queued row.
	if err := w.store.UpdateStatus(ctx, job.ID, models.StatusUpdate{Status: models.JobStatusProcessing}); err != nil {
		log.Printf("Failed to mark job %s processing, skipping: %v", job.ID, err)
		return
	}

	resultURL, err := w.runStages(ctx, job)
	if err != nil {
		log.Printf("Job %s failed: %v", job.ID, err)
		w.failed.Add(1)
		w.finish(ctx, job.ID, models.StatusUpdate{
			Status:       models.JobStatusFailed,
			ErrorMessage: models.StrPtr(err.Error()),
		})
		return
	}

	log.Printf("Job %s completed successfully (result: %s)", job.ID, resultURL)
	w.completed.Add(1)
	w.finish(ctx, job.ID, models.StatusUpdate{
		Status:    models.JobStatusCompleted,
		ResultURL: models.StrPtr(resultURL),
	})
}

// runStages executes scenes, narration, assembly, and publish in order and
// returns the published object reference. Any unrecovered stage error
// short-circuits. Scratch files are removed on the way out; the store and
// webhook never see them.
func (w *Worker) runStages(ctx context.Context, job models.Job) (string, error) {
	// Scratch names carry a per-attempt run ID so a re-enqueued job can
	// never collide with files left behind by a crashed earlier attempt.
	runID := fmt.Sprintf("%s_%s", job.ID, uuid.NewString()[:8])

	var scratch []string
	defer func() {
		for _, path := range scratch {
			os.Remove(path)
		}
	}()

	scenes, err := w.scenes.GenerateScenes(ctx, runID, job.Prompt)
	for _, scene := range scenes {
		scratch = append(scratch, scene.Path)
	}
	if err != nil {
		return "", fmt.Errorf("scene generation failed: %w", err)
	}

	narration, err := w.narration.GenerateNarration(ctx, runID, job.Prompt)
	if narration.Path != "" {
		scratch = append(scratch, narration.Path)
	}
	if err != nil {
		return "", fmt.Errorf("narration generation failed: %w", err)
	}

	finalPath, err := w.assembler.Assemble(ctx, runID, scenes, narration)
	if finalPath != "" {
		scratch = append(scratch, finalPath)
	}
	if err != nil {
		return "", err
	}

	resultURL, err := w.publisher.Publish(ctx, finalPath, job.ID)
	if err != nil {
		return "", err
	}

	return resultURL, nil
}

// finish persists the terminal status and sends the single terminal
// webhook. Either call failing is logged, not retried: the webhook is
// fire-and-forget and a status write failure leaves the row for the
// external reconciliation process.
func (w *Worker) finish(ctx context.Context, jobID string, update models.StatusUpdate) {
	if err := w.store.UpdateStatus(ctx, jobID, update); err != nil {
		log.Printf("Failed to persist terminal status for job %s: %v", jobID, err)
	}

	payload := models.WebhookPayload{
		JobID:  jobID,
		Status: update.Status,
	}
	if update.ResultURL != nil {
		payload.ResultURL = *update.ResultURL
	}
	if update.ErrorMessage != nil {
		payload.ErrorMessage = *update.ErrorMessage
	}

	if err := w.notifier.Notify(ctx, payload); err != nil {
		log.Printf("Webhook delivery failed for job %s (not retried): %v", jobID, err)
	}
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() Stats {
	var lastPoll time.Time
	if ns := w.lastPollNs.Load(); ns > 0 {
		lastPoll = time.Unix(0, ns)
	}

	return Stats{
		JobsProcessed: w.processed.Load(),
		JobsCompleted: w.completed.Load(),
		JobsFailed:    w.failed.Load(),
		LastPollAt:    lastPoll,
	}
}

// sleep waits for d or until ctx is cancelled.
func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func truncatePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if len(prompt) <= 60 {
		return prompt
	}
	return prompt[:60] + "..."
}
