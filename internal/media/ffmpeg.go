package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// FFmpeg
// Wraps the external ffmpeg/ffprobe binaries: synthetic placeholder
// generation, stream-copy concatenation, audio/video muxing, and duration
// probing. A non-zero exit or a missing binary is always a
// ToolInvocationError, fatal to the invoking stage.
// ---------------------------------------------------------------------------

// AssetKind selects what Synthesize produces.
type AssetKind string

const (
	KindVideo AssetKind = "video"
	KindAudio AssetKind = "audio"
)

// Synthesis constants. Video parameters match the fixed WAN request
// parameters (1280x720 at 30fps, H.264/AAC in MP4) so that real and
// synthetic scenes stream-copy concatenate without re-encoding.
const (
	synthWidth  = 1280
	synthHeight = 720
	synthFPS    = 30

	// Tone frequencies for placeholder audio: scenes carry a 1kHz tone,
	// narration an 800Hz tone.
	sceneToneHz     = 1000
	narrationToneHz = 800
)

// ToolInvocationError means the encoding tool itself could not run: missing
// binary or non-zero exit. It is never recoverable by a fallback.
type ToolInvocationError struct {
	Tool   string
	Err    error
	Output string // tail of stderr, for diagnostics
}

func (e *ToolInvocationError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s invocation failed: %v: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("%s invocation failed: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// FFmpeg invokes the ffmpeg and ffprobe binaries with files rooted in a
// scratch directory. Processing is sequential per worker, so scratch paths
// are exclusively owned by the job currently using them.
type FFmpeg struct {
	tempDir string
}

// NewFFmpeg creates the scratch directory if needed.
func NewFFmpeg(tempDir string) (*FFmpeg, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &FFmpeg{tempDir: tempDir}, nil
}

// Synthesize produces a deterministic placeholder asset at outPath: a fixed
// test pattern with a 1kHz tone for video, a fixed 800Hz tone for audio.
// It has no network dependency; it fails only if the tool itself cannot run.
func (f *FFmpeg) Synthesize(ctx context.Context, kind AssetKind, durationSec int, outPath string) error {
	var args []string

	switch kind {
	case KindVideo:
		args = []string{
			"-f", "lavfi", "-i", fmt.Sprintf("testsrc=duration=%d:size=%dx%d:rate=%d", durationSec, synthWidth, synthHeight, synthFPS),
			"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%d:duration=%d", sceneToneHz, durationSec),
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-c:a", "aac",
			"-shortest",
			"-y",
			outPath,
		}
	case KindAudio:
		args = []string{
			"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%d:duration=%d", narrationToneHz, durationSec),
			"-c:a", "pcm_s16le",
			"-y",
			outPath,
		}
	default:
		return fmt.Errorf("unknown asset kind %q", kind)
	}

	return f.run(ctx, "ffmpeg", args...)
}

// Concat combines clips into one video using the concat demuxer with a
// lossless stream copy. All inputs must share codec/container parameters,
// which the synthesizer and the WAN request parameters guarantee.
func (f *FFmpeg) Concat(ctx context.Context, clipPaths []string, outPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	// Concat demuxer wants a list file
	listPath := outPath + ".txt"
	var list strings.Builder
	for _, path := range clipPaths {
		fmt.Fprintf(&list, "file '%s'\n", path)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outPath,
	}

	return f.run(ctx, "ffmpeg", args...)
}

// Mux combines the first video stream of videoPath with the first audio
// stream of audioPath. The video stream is copied untouched; output duration
// is clamped to the shorter of the two inputs.
func (f *FFmpeg) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"-y",
		outPath,
	}

	return f.run(ctx, "ffmpeg", args...)
}

// DurationMs returns the duration of a media file in milliseconds.
func (f *FFmpeg) DurationMs(ctx context.Context, path string) (int, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	output, err := f.runOutput(ctx, "ffprobe", args...)
	if err != nil {
		return 0, err
	}

	var durationSec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(output), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return int(durationSec * 1000), nil
}

// TempPath returns a path for a scratch file in the service's temp directory.
func (f *FFmpeg) TempPath(filename string) string {
	return filepath.Join(f.tempDir, filename)
}

// WriteTemp writes data to a scratch file and returns its path.
func (f *FFmpeg) WriteTemp(filename string, data []byte) (string, error) {
	path := f.TempPath(filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return path, nil
}

// Cleanup removes scratch files.
func (f *FFmpeg) Cleanup(paths ...string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

// run executes a tool, discarding stdout and keeping a stderr tail for the
// error message.
func (f *FFmpeg) run(ctx context.Context, tool string, args ...string) error {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &ToolInvocationError{Tool: tool, Err: err, Output: stderrTail(stderr.String())}
	}

	return nil
}

// runOutput executes a tool and returns its stdout.
func (f *FFmpeg) runOutput(ctx context.Context, tool string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ToolInvocationError{Tool: tool, Err: err, Output: stderrTail(stderr.String())}
	}

	return stdout.String(), nil
}

// stderrTail keeps the last few lines of tool output; ffmpeg is chatty and
// the actionable message is at the end.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	lines := strings.Split(s, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
