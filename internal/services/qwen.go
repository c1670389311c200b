package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Qwen-TTS Narration Service
// Converts a narration script into speech audio. Depending on the declared
// response content type, Qwen answers either with a JSON payload carrying a
// downloadable audio URL or with the audio bytes inline.
// ---------------------------------------------------------------------------

const (
	qwenSpeechPath = "/api/v1/services/audio/tts"

	qwenRequestTimeout  = 2 * time.Minute
	qwenDownloadTimeout = 2 * time.Minute

	// Fixed voice parameters for narration delivery.
	qwenVoice  = "cherry"
	qwenFormat = "wav"
	qwenSpeed  = 1.0
	qwenPitch  = 1.0
	qwenVolume = 1.0
)

// QwenService handles narration via the Qwen-TTS API. As with WANService,
// a nil *QwenService models "no credential configured".
type QwenService struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	downloader *http.Client
}

// Ensure QwenService implements NarrationClient at compile time.
var _ NarrationClient = (*QwenService)(nil)

// NewQwenService creates a new Qwen-TTS narration client.
func NewQwenService(apiKey, baseURL string) *QwenService {
	return &QwenService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: qwenRequestTimeout},
		downloader: &http.Client{Timeout: qwenDownloadTimeout},
	}
}

// qwenSpeechRequest is the body for POST /api/v1/services/audio/tts.
type qwenSpeechRequest struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice"`
	Format string  `json:"format"`
	Speed  float64 `json:"speed"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// qwenSpeechResponse is the JSON variant of a success response.
type qwenSpeechResponse struct {
	AudioURL string `json:"audio_url"`
	Format   string `json:"format,omitempty"`
}

// GenerateSpeech converts the narration script to audio.
// Implements the NarrationClient interface.
func (s *QwenService) GenerateSpeech(ctx context.Context, text string) (*SpeechResponse, error) {
	reqBody := qwenSpeechRequest{
		Text:   text,
		Voice:  qwenVoice,
		Format: qwenFormat,
		Speed:  qwenSpeed,
		Pitch:  qwenPitch,
		Volume: qwenVolume,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Qwen request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+qwenSpeechPath, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create Qwen request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	log.Printf("[Qwen] Generating narration (textLen=%d, voice=%s, format=%s)", len(text), qwenVoice, qwenFormat)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Service: "Qwen", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: "Qwen", Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &UpstreamResponseError{Service: "Qwen", StatusCode: resp.StatusCode, Detail: truncate(string(body), 200)}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	switch {
	case mediaType == "application/json":
		// JSON payload with a downloadable audio reference
		var speechResp qwenSpeechResponse
		if err := json.Unmarshal(body, &speechResp); err != nil {
			return nil, &UpstreamResponseError{Service: "Qwen", Detail: fmt.Sprintf("malformed speech response: %v", err)}
		}

		if speechResp.AudioURL == "" {
			return nil, &UpstreamResponseError{Service: "Qwen", Detail: "no audio_url in speech response"}
		}

		format := speechResp.Format
		if format == "" {
			format = qwenFormat
		}

		log.Printf("[Qwen] Narration ready, downloading audio from returned URL...")
		audioData, err := s.downloadAudio(ctx, speechResp.AudioURL)
		if err != nil {
			return nil, err
		}

		return &SpeechResponse{AudioData: audioData, Format: format}, nil

	case strings.HasPrefix(mediaType, "audio/"):
		// Inline audio payload; the body IS the audio file
		if len(body) == 0 {
			return nil, &UpstreamResponseError{Service: "Qwen", Detail: "inline audio payload is empty"}
		}

		log.Printf("[Qwen] Narration received inline (%d bytes, %s)", len(body), mediaType)
		return &SpeechResponse{AudioData: body, Format: formatFromMediaType(mediaType)}, nil

	default:
		return nil, &UpstreamResponseError{Service: "Qwen", Detail: fmt.Sprintf("unsupported content type %q", contentType)}
	}
}

// downloadAudio fetches the audio bytes from the URL returned by Qwen.
func (s *QwenService) downloadAudio(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.downloader.Do(req)
	if err != nil {
		return nil, &TransportError{Service: "Qwen", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamResponseError{Service: "Qwen", StatusCode: resp.StatusCode, Detail: "audio download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Service: "Qwen", Err: err}
	}

	if len(data) == 0 {
		return nil, &UpstreamResponseError{Service: "Qwen", Detail: "downloaded audio is empty (0 bytes)"}
	}

	return data, nil
}

// formatFromMediaType maps an audio media type to a file extension.
func formatFromMediaType(mediaType string) string {
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/ogg":
		return "ogg"
	default:
		return qwenFormat
	}
}
