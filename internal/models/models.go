package models

import (
	"time"
)

// Enums

// JobStatus is the lifecycle state of a generation job. Transitions are
// monotonic: queued, processing, then completed or failed. The queue store
// creates jobs in "queued"; only the worker moves them forward.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further automatic transition can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Provenance records whether an asset came from a real generation service
// or from the local synthesizer fallback.
type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSynthetic Provenance = "synthetic"
)

// Models

// Job is one prompt-to-video work item, owned by the external queue store.
// ResultURL is set only on completion, ErrorMessage only on failure,
// never both.
type Job struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	Status       JobStatus `json:"status"`
	ResultURL    *string   `json:"result_url,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatusUpdate is a partial update applied to a job by ID. Nil fields are
// left untouched by the store.
type StatusUpdate struct {
	Status       JobStatus `json:"status"`
	ResultURL    *string   `json:"result_url,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

// SceneAsset is one generated or synthesized clip. Index defines playback
// order (0..N-1). Path points into the job's scratch directory and is only
// valid until the pipeline cleans up.
type SceneAsset struct {
	Index      int
	Path       string
	Provenance Provenance
}

// NarrationAsset is the single narration audio track for a job.
type NarrationAsset struct {
	Path       string
	Provenance Provenance
}

// WebhookPayload is the terminal notification POSTed once per job attempt.
// Field names match what the AlphoGen webhook receiver expects.
type WebhookPayload struct {
	JobID        string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	ResultURL    string    `json:"result_url,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Helpers

func StrPtr(s string) *string {
	return &s
}
