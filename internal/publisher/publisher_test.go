package publisher

import (
	"context"
	"errors"
	"testing"
)

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("job-1"); got != "videos/job-1.mp4" {
		t.Errorf("expected videos/job-1.mp4, got %s", got)
	}

	// Same job, same key: re-publishing overwrites instead of duplicating.
	if ObjectKey("job-1") != ObjectKey("job-1") {
		t.Error("expected deterministic key derivation")
	}
}

func TestPublishUnconfigured(t *testing.T) {
	pub, err := New(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No endpoint means no upload, but the deterministic key still comes
	// back so the job can complete.
	key, err := pub.Publish(context.Background(), "/nonexistent/final.mp4", "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "videos/job-1.mp4" {
		t.Errorf("expected videos/job-1.mp4, got %s", key)
	}
}

func TestPublishMissingLocalFile(t *testing.T) {
	pub, err := New(context.Background(), Options{
		Endpoint:  "https://account.r2.cloudflarestorage.com",
		AccessKey: "ak",
		SecretKey: "sk",
		Bucket:    "alphogenai-assets",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = pub.Publish(context.Background(), "/nonexistent/final.mp4", "job-1")

	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if pubErr.Key != "videos/job-1.mp4" {
		t.Errorf("expected key in error, got %s", pubErr.Key)
	}
}
