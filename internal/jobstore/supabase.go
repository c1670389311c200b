package jobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alphogen/video-runner/internal/models"
)

// Status and fetch calls are short and frequent; a stuck store call should
// not stall the polling loop for long.
const supabaseTimeout = 10 * time.Second

// Supabase talks to the jobs table through the Supabase PostgREST API.
type Supabase struct {
	url        string
	serviceKey string
	client     *http.Client
}

// Ensure Supabase implements Store at compile time.
var _ Store = (*Supabase)(nil)

func NewSupabase(supabaseURL, serviceKey string) *Supabase {
	return &Supabase{
		url:        supabaseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: supabaseTimeout},
	}
}

// FetchQueued returns queued jobs, oldest first.
func (s *Supabase) FetchQueued(ctx context.Context, limit int) ([]models.Job, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/jobs?status=eq.queued&order=created_at.asc&limit=%d", s.url, limit)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch queued jobs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch queued jobs returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var jobs []models.Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs response: %w", err)
	}

	return jobs, nil
}

// UpdateStatus PATCHes the job row. Nil update fields are omitted from the
// body so PostgREST leaves those columns untouched.
func (s *Supabase) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	patch := map[string]any{
		"status":     update.Status,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if update.ResultURL != nil {
		patch["result_url"] = *update.ResultURL
	}
	if update.ErrorMessage != nil {
		patch["error_message"] = *update.ErrorMessage
	}

	jsonData, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal status update: %w", err)
	}

	reqURL := fmt.Sprintf("%s/rest/v1/jobs?id=eq.%s", s.url, url.QueryEscape(id))

	req, err := http.NewRequestWithContext(ctx, "PATCH", reqURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create update request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update job status returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return nil
}

func (s *Supabase) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}

// truncate limits a string to maxLen characters for error output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
