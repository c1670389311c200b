package generate

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alphogen/video-runner/internal/media"
	"github.com/alphogen/video-runner/internal/models"
	"github.com/alphogen/video-runner/internal/services"
)

// NarrationGenerator produces the single narration track for a job. Unlike
// scene generation there is no finer-grained partial fallback: any failure
// of the Qwen call replaces the whole track with a synthetic tone. A nil
// client means no credential is configured.
type NarrationGenerator struct {
	client      services.NarrationClient
	synth       Synthesizer
	scratchDir  string
	durationSec int
}

func NewNarrationGenerator(client services.NarrationClient, synth Synthesizer, scratchDir string, durationSec int) *NarrationGenerator {
	return &NarrationGenerator{
		client:      client,
		synth:       synth,
		scratchDir:  scratchDir,
		durationSec: durationSec,
	}
}

// GenerateNarration returns the narration asset for a job. The only error
// it returns is a failure of the synthesizer itself, which is fatal.
func (g *NarrationGenerator) GenerateNarration(ctx context.Context, runID, prompt string) (models.NarrationAsset, error) {
	if g.client != nil {
		script := BuildScript(prompt)

		resp, err := g.client.GenerateSpeech(ctx, script)
		if err == nil {
			narrationPath := filepath.Join(g.scratchDir, fmt.Sprintf("narration_%s.%s", runID, resp.Format))
			if writeErr := os.WriteFile(narrationPath, resp.AudioData, 0644); writeErr != nil {
				return models.NarrationAsset{}, fmt.Errorf("failed to write narration: %w", writeErr)
			}

			log.Printf("[Narration] Narration generated by Qwen (%d bytes, %s)", len(resp.AudioData), resp.Format)
			return models.NarrationAsset{Path: narrationPath, Provenance: models.ProvenanceReal}, nil
		}

		log.Printf("[Narration] Narration generation failed, falling back to synthetic track: %v", err)
	} else {
		log.Printf("[Narration] Qwen not configured, synthesizing placeholder track")
	}

	narrationPath := filepath.Join(g.scratchDir, fmt.Sprintf("narration_%s.wav", runID))
	if err := g.synth.Synthesize(ctx, media.KindAudio, g.durationSec, narrationPath); err != nil {
		return models.NarrationAsset{}, fmt.Errorf("narration fallback synthesis failed: %w", err)
	}

	return models.NarrationAsset{Path: narrationPath, Provenance: models.ProvenanceSynthetic}, nil
}
