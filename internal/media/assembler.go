package media

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/alphogen/video-runner/internal/models"
)

// AssemblyError is a fatal failure while combining finished assets. There is
// no fallback once inputs are ready: earlier stages already guaranteed both
// are present and playable.
type AssemblyError struct {
	Phase string // "concatenate" or "mux"
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly failed during %s: %v", e.Phase, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// Encoder is the subset of FFmpeg the assembler needs. Tests fake it.
type Encoder interface {
	Concat(ctx context.Context, clipPaths []string, outPath string) error
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
	DurationMs(ctx context.Context, path string) (int, error)
	TempPath(filename string) string
	Cleanup(paths ...string)
}

// Assembler deterministically combines scene clips and the narration track
// into one playable file, in two phases: stream-copy concatenation in
// ordinal order, then muxing the narration onto the result. Output duration
// is clamped to the shorter of the two inputs.
type Assembler struct {
	encoder Encoder
}

func NewAssembler(encoder Encoder) *Assembler {
	return &Assembler{encoder: encoder}
}

// Assemble produces the final video for a job and returns its local path.
// The intermediate concatenation file is cleaned up here; the returned file
// belongs to the caller.
func (a *Assembler) Assemble(ctx context.Context, runID string, scenes []models.SceneAsset, narration models.NarrationAsset) (string, error) {
	if len(scenes) == 0 {
		return "", &AssemblyError{Phase: "concatenate", Err: fmt.Errorf("no scene assets")}
	}

	// Ordinal order regardless of how the slice arrived
	ordered := make([]models.SceneAsset, len(scenes))
	copy(ordered, scenes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	clipPaths := make([]string, len(ordered))
	for i, scene := range ordered {
		clipPaths[i] = scene.Path
	}

	// Phase 1: lossless stream-copy concatenation
	concatPath := a.encoder.TempPath(fmt.Sprintf("combined_%s.mp4", runID))
	defer a.encoder.Cleanup(concatPath)

	log.Printf("[Assembler] Concatenating %d scenes...", len(ordered))
	if err := a.encoder.Concat(ctx, clipPaths, concatPath); err != nil {
		return "", &AssemblyError{Phase: "concatenate", Err: err}
	}

	// Phase 2: mux narration onto the concatenated video
	finalPath := a.encoder.TempPath(fmt.Sprintf("final_%s.mp4", runID))

	log.Printf("[Assembler] Muxing narration onto concatenated video...")
	if err := a.encoder.Mux(ctx, concatPath, narration.Path, finalPath); err != nil {
		return "", &AssemblyError{Phase: "mux", Err: err}
	}

	if durationMs, err := a.encoder.DurationMs(ctx, finalPath); err != nil {
		log.Printf("[Assembler] Warning: could not measure final duration: %v", err)
	} else {
		log.Printf("[Assembler] Final video assembled (%dms)", durationMs)
	}

	return finalPath, nil
}
