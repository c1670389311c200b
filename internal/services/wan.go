package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// WAN 2.2+ Video Generation Service
// Uses the WAN REST API to generate a short video clip from a text prompt.
// The response carries a downloadable video reference; the clip is fetched
// with a separate long-timeout client.
// ---------------------------------------------------------------------------

const (
	wanGenerationPath = "/v1/video/generations"

	// Generation requests are slow; the timeout covers the synchronous
	// request/response cycle, not the download.
	wanRequestTimeout  = 4 * time.Minute
	wanDownloadTimeout = 2 * time.Minute

	// Fixed generation parameters. The synthesizer produces clips with the
	// same codec/container parameters so stream-copy concatenation works
	// for any mix of real and synthetic scenes.
	wanSceneResolution = "1280x720"
	wanSceneFPS        = 30
	wanSceneStyle      = "cinematic"
	wanSceneFormat     = "mp4"
)

// WANService handles scene generation via the WAN video API. A nil
// *WANService is how the worker models "no credential configured": the
// generator then synthesizes every scene without attempting a network call.
type WANService struct {
	apiKey      string
	baseURL     string
	durationSec int
	client      *http.Client
	downloader  *http.Client
}

// Ensure WANService implements SceneClient at compile time.
var _ SceneClient = (*WANService)(nil)

// NewWANService creates a new WAN scene generation client.
func NewWANService(apiKey, baseURL string, sceneDurationSec int) *WANService {
	return &WANService{
		apiKey:      apiKey,
		baseURL:     baseURL,
		durationSec: sceneDurationSec,
		client:      &http.Client{Timeout: wanRequestTimeout},
		downloader:  &http.Client{Timeout: wanDownloadTimeout},
	}
}

// wanGenerationRequest is the body for POST /v1/video/generations.
type wanGenerationRequest struct {
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
	FPS        int    `json:"fps"`
	Style      string `json:"style"`
	Format     string `json:"format"`
}

// wanGenerationResponse is the success response. VideoURL is required; a
// response without it is malformed no matter what the status code said.
type wanGenerationResponse struct {
	ID       string `json:"id,omitempty"`
	Status   string `json:"status,omitempty"`
	VideoURL string `json:"video_url"`
}

// GenerateClip requests one scene clip and downloads the returned asset.
// Implements the SceneClient interface.
func (s *WANService) GenerateClip(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := wanGenerationRequest{
		Prompt:     prompt,
		Duration:   s.durationSec,
		Resolution: wanSceneResolution,
		FPS:        wanSceneFPS,
		Style:      wanSceneStyle,
		Format:     wanSceneFormat,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal WAN request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+wanGenerationPath, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create WAN request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	log.Printf("[WAN] Generating scene (promptLen=%d, duration=%ds, resolution=%s)",
		len(prompt), s.durationSec, wanSceneResolution)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Service: "WAN", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: "WAN", Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &UpstreamResponseError{Service: "WAN", StatusCode: resp.StatusCode, Detail: truncate(string(body), 200)}
	}

	var genResp wanGenerationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, &UpstreamResponseError{Service: "WAN", Detail: fmt.Sprintf("malformed generation response: %v", err)}
	}

	if genResp.VideoURL == "" {
		return nil, &UpstreamResponseError{Service: "WAN", Detail: "no video_url in generation response"}
	}

	log.Printf("[WAN] Scene ready, downloading from returned URL...")

	videoBytes, err := s.downloadClip(ctx, genResp.VideoURL)
	if err != nil {
		return nil, err
	}

	log.Printf("[WAN] Scene downloaded (%d bytes)", len(videoBytes))
	return videoBytes, nil
}

// downloadClip fetches the clip bytes from the URL returned by WAN.
func (s *WANService) downloadClip(ctx context.Context, videoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.downloader.Do(req)
	if err != nil {
		return nil, &TransportError{Service: "WAN", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamResponseError{Service: "WAN", StatusCode: resp.StatusCode, Detail: "clip download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: "WAN", Err: err}
	}

	if len(data) == 0 {
		return nil, &UpstreamResponseError{Service: "WAN", Detail: "downloaded clip is empty (0 bytes)"}
	}

	return data, nil
}
