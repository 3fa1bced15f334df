package ffsubsync_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"syncorbit/internal/services"
	"syncorbit/internal/services/ffsubsync"
)

func stubRunner(output string, err error) ffsubsync.Runner {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte(output), err
	}
}

func TestSyncParsesOffsetAndScore(t *testing.T) {
	output := strings.Join([]string{
		"[INFO] extracting speech segments...",
		"[INFO] score: 187.5",
		"[INFO] offset seconds: -0.742",
		"[INFO] done",
	}, "\n")
	client, err := ffsubsync.New("ffs", ffsubsync.WithRunner(stubRunner(output, nil)))
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "Heat (1995)", "Heat (1995).fi.synced.srt")
	result, err := client.Sync(context.Background(), "/media/h.mkv", "/media/h.fi.srt", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Offset != -0.742 {
		t.Fatalf("expected offset -0.742, got %f", result.Offset)
	}
	if result.Score != 187.5 {
		t.Fatalf("expected score 187.5, got %f", result.Score)
	}
	if result.OutputPath != out {
		t.Fatalf("unexpected output path %q", result.OutputPath)
	}
}

func TestSyncToolFailure(t *testing.T) {
	client, err := ffsubsync.New("ffs", ffsubsync.WithRunner(stubRunner("ERROR: could not extract audio", errors.New("exit status 1"))))
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out.synced.srt")
	_, err = client.Sync(context.Background(), "/v.mkv", "/s.srt", out)
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not extract audio") {
		t.Fatalf("expected tool output in diagnostics, got %q", err.Error())
	}
}

func TestSyncMissingOffsetIsZero(t *testing.T) {
	client, err := ffsubsync.New("ffs", ffsubsync.WithRunner(stubRunner("no diagnostics", nil)))
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.synced.srt")
	result, err := client.Sync(context.Background(), "/v.mkv", "/s.srt", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Offset != 0 || result.Score != 0 {
		t.Fatalf("expected zero offset and score, got %#v", result)
	}
}

func TestOutputPath(t *testing.T) {
	got := ffsubsync.OutputPath("/data/resync", "Heat (1995)", "/media/Heat (1995)/Heat (1995).en.srt")
	expected := filepath.Join("/data/resync", "Heat (1995)", "Heat (1995).en.synced.srt")
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ffsubsync.New(""); err == nil {
		t.Fatal("expected error for blank binary")
	}
}
