package media

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStderrTail(t *testing.T) {
	if got := stderrTail(""); got != "" {
		t.Errorf("expected empty tail, got %q", got)
	}

	if got := stderrTail("only line\n"); got != "only line" {
		t.Errorf("expected trimmed single line, got %q", got)
	}

	long := "one\ntwo\nthree\nfour\nfive\nsix"
	if got := stderrTail(long); got != "three | four | five | six" {
		t.Errorf("expected last four lines joined, got %q", got)
	}
}

func TestTempPath(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFFmpeg(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.TempPath("final.mp4"); got != filepath.Join(dir, "final.mp4") {
		t.Errorf("unexpected temp path %s", got)
	}
}

func TestConcatRejectsEmptyInput(t *testing.T) {
	f, err := NewFFmpeg(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.Concat(context.Background(), nil, f.TempPath("out.mp4")); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestSynthesizeRejectsUnknownKind(t *testing.T) {
	f, err := NewFFmpeg(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.Synthesize(context.Background(), AssetKind("subtitles"), 10, f.TempPath("out")); err == nil {
		t.Fatal("expected error for unknown asset kind")
	}
}
