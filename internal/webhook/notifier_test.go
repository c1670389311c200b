package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alphogen/video-runner/internal/models"
)

func TestNotify(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(server.URL)

	err := n.Notify(context.Background(), models.WebhookPayload{
		JobID:     "job-1",
		Status:    models.JobStatusCompleted,
		ResultURL: "videos/job-1.mp4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["job_id"] != "job-1" {
		t.Errorf("expected job_id=job-1, got %v", got["job_id"])
	}
	if got["status"] != "completed" {
		t.Errorf("expected status=completed, got %v", got["status"])
	}
	if got["result_url"] != "videos/job-1.mp4" {
		t.Errorf("expected result_url, got %v", got["result_url"])
	}
}

func TestNotifyNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "receiver down", http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewNotifier(server.URL)

	err := n.Notify(context.Background(), models.WebhookPayload{JobID: "job-1", Status: models.JobStatusFailed})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNotifyUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	n := NewNotifier(server.URL)

	err := n.Notify(context.Background(), models.WebhookPayload{JobID: "job-1", Status: models.JobStatusCompleted})
	if err == nil {
		t.Fatal("expected error for unreachable receiver")
	}
}
