package services

import "context"

// ---------------------------------------------------------------------------
// Remote generation client interfaces.
// The generators accept these so tests can fake the remote services and so
// a nil client cleanly models "no credential configured".
// ---------------------------------------------------------------------------

// SceneClient is implemented by any video-generation provider that can turn
// a sub-prompt into a downloadable clip.
type SceneClient interface {
	// GenerateClip requests one scene clip for the given sub-prompt and
	// returns the raw video bytes (MP4).
	GenerateClip(ctx context.Context, prompt string) ([]byte, error)
}

// SpeechResponse is the common response type from any narration provider.
type SpeechResponse struct {
	AudioData []byte
	Format    string // "wav", "mp3", etc.
}

// NarrationClient is implemented by any text-to-speech provider.
type NarrationClient interface {
	// GenerateSpeech converts a narration script into an audio track.
	GenerateSpeech(ctx context.Context, text string) (*SpeechResponse, error)
}
