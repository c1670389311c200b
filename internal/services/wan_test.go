package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWANGenerateClip(t *testing.T) {
	var gotReq wanGenerationRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case wanGenerationPath:
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
			}
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id":        "gen-1",
				"status":    "succeeded",
				"video_url": fmt.Sprintf("http://%s/clips/gen-1.mp4", r.Host),
			})
		case "/clips/gen-1.mp4":
			w.Write([]byte("video-bytes"))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := NewWANService("test-key", server.URL, 30)

	data, err := svc.GenerateClip(context.Background(), "Opening scene: a sunrise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(data) != "video-bytes" {
		t.Errorf("expected downloaded clip bytes, got %q", data)
	}
	if gotReq.Prompt != "Opening scene: a sunrise" {
		t.Errorf("unexpected prompt %q", gotReq.Prompt)
	}
	if gotReq.Duration != 30 || gotReq.Resolution != "1280x720" || gotReq.FPS != 30 {
		t.Errorf("unexpected generation parameters: %+v", gotReq)
	}
}

func TestWANGenerateClipUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewWANService("test-key", server.URL, 30)

	_, err := svc.GenerateClip(context.Background(), "a sunrise")

	var upstreamErr *UpstreamResponseError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamResponseError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upstreamErr.StatusCode)
	}
}

func TestWANGenerateClipTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	svc := NewWANService("test-key", server.URL, 30)

	_, err := svc.GenerateClip(context.Background(), "a sunrise")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestWANGenerateClipMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	svc := NewWANService("test-key", server.URL, 30)

	_, err := svc.GenerateClip(context.Background(), "a sunrise")

	var upstreamErr *UpstreamResponseError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamResponseError, got %v", err)
	}
}

func TestWANGenerateClipMissingVideoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "gen-1", "status": "succeeded"})
	}))
	defer server.Close()

	svc := NewWANService("test-key", server.URL, 30)

	_, err := svc.GenerateClip(context.Background(), "a sunrise")

	var upstreamErr *UpstreamResponseError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamResponseError, got %v", err)
	}
}

func TestWANGenerateClipEmptyDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == wanGenerationPath {
			json.NewEncoder(w).Encode(map[string]string{
				"video_url": fmt.Sprintf("http://%s/clips/empty.mp4", r.Host),
			})
			return
		}
		w.WriteHeader(http.StatusOK) // 200 with zero bytes
	}))
	defer server.Close()

	svc := NewWANService("test-key", server.URL, 30)

	if _, err := svc.GenerateClip(context.Background(), "a sunrise"); err == nil {
		t.Fatal("expected error for empty download")
	}
}
