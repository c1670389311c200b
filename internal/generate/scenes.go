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

// Synthesizer produces local placeholder assets. Implemented by
// media.FFmpeg; faked in tests.
type Synthesizer interface {
	Synthesize(ctx context.Context, kind media.AssetKind, durationSec int, outPath string) error
}

// SceneGenerator produces the ordered scene clips for a job. Each scene is
// requested from the WAN service independently; any failure falls back to a
// synthetic clip for that one scene only, so one bad scene never aborts the
// others. A nil client means no credential is configured and every scene is
// synthesized without a network call.
type SceneGenerator struct {
	client      services.SceneClient
	synth       Synthesizer
	scratchDir  string
	count       int
	durationSec int
}

func NewSceneGenerator(client services.SceneClient, synth Synthesizer, scratchDir string, count, durationSec int) *SceneGenerator {
	return &SceneGenerator{
		client:      client,
		synth:       synth,
		scratchDir:  scratchDir,
		count:       count,
		durationSec: durationSec,
	}
}

// GenerateScenes returns exactly count scene assets in ordinal order, for
// any mix of real and fallback outcomes. The only error it returns is a
// failure of the synthesizer itself, which is fatal to the job.
func (g *SceneGenerator) GenerateScenes(ctx context.Context, runID, prompt string) ([]models.SceneAsset, error) {
	subPrompts := SplitPrompt(prompt, g.count)
	scenes := make([]models.SceneAsset, 0, len(subPrompts))

	for i, subPrompt := range subPrompts {
		scenePath := filepath.Join(g.scratchDir, fmt.Sprintf("scene_%s_%d.mp4", runID, i))

		scene, err := g.generateScene(ctx, i, subPrompt, scenePath)
		if err != nil {
			// Remove the clips already written, plus whatever partial
			// output the failed scene left, so an aborted job does not
			// accumulate scratch files across attempts.
			for _, done := range scenes {
				os.Remove(done.Path)
			}
			os.Remove(scenePath)
			return nil, err
		}

		scenes = append(scenes, scene)
	}

	return scenes, nil
}

func (g *SceneGenerator) generateScene(ctx context.Context, index int, subPrompt, scenePath string) (models.SceneAsset, error) {
	if g.client != nil {
		data, err := g.client.GenerateClip(ctx, subPrompt)
		if err == nil {
			if writeErr := os.WriteFile(scenePath, data, 0644); writeErr != nil {
				return models.SceneAsset{}, fmt.Errorf("failed to write scene %d: %w", index, writeErr)
			}

			log.Printf("[Scenes] Scene %d generated by WAN (%d bytes)", index, len(data))
			return models.SceneAsset{Index: index, Path: scenePath, Provenance: models.ProvenanceReal}, nil
		}

		log.Printf("[Scenes] Scene %d generation failed, falling back to synthetic clip: %v", index, err)
	} else {
		log.Printf("[Scenes] Scene %d: WAN not configured, synthesizing placeholder", index)
	}

	if err := g.synth.Synthesize(ctx, media.KindVideo, g.durationSec, scenePath); err != nil {
		return models.SceneAsset{}, fmt.Errorf("scene %d fallback synthesis failed: %w", index, err)
	}

	return models.SceneAsset{Index: index, Path: scenePath, Provenance: models.ProvenanceSynthetic}, nil
}
