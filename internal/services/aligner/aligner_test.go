package aligner_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"syncorbit/internal/services"
	"syncorbit/internal/services/aligner"
)

func stubRunner(stdout, stderr string, err error) aligner.Runner {
	return func(context.Context, string, ...string) ([]byte, []byte, error) {
		return []byte(stdout), []byte(stderr), err
	}
}

func TestAnalyzeDecodesOffsets(t *testing.T) {
	payload := `{
		"ref_path": "/data/ref/Heat (1995)/ref.srt",
		"target_path": "/media/Heat (1995)/Heat (1995).fi.srt",
		"ref_count": 1200,
		"target_count": 1180,
		"anchor_count": 3,
		"offsets": [
			{"ref_t": 10.0, "target_t": 10.4, "delta": 0.4, "score": 0.91},
			{"ref_t": 600.0, "target_t": 600.5, "delta": 0.5, "score": 0.88},
			{"ref_t": 3200.0, "target_t": 3200.4, "delta": 0.4, "score": 0.95}
		],
		"decision": "synced"
	}`
	client, err := aligner.New("align", aligner.WithRunner(stubRunner(payload, "", nil)))
	if err != nil {
		t.Fatal(err)
	}

	result, err := client.Analyze(context.Background(), "/ref.srt", "/target.srt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(result.Samples))
	}
	if result.Samples[1].T != 600.0 || result.Samples[1].Delta != 0.5 {
		t.Fatalf("unexpected sample: %#v", result.Samples[1])
	}
	if result.RefCount != 1200 || result.TargetCount != 1180 {
		t.Fatalf("unexpected cue counts: %#v", result)
	}
}

func TestAnalyzeEmptySubtitles(t *testing.T) {
	payload := `{"error": "empty_subtitles", "ref_count": 0, "target_count": 40}`
	client, err := aligner.New("align", aligner.WithRunner(stubRunner(payload, "", nil)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Analyze(context.Background(), "/ref.srt", "/target.srt")
	if !errors.Is(err, aligner.ErrEmptySubtitles) {
		t.Fatalf("expected ErrEmptySubtitles, got %v", err)
	}
}

func TestAnalyzeToolFailureCapturesStderr(t *testing.T) {
	runner := stubRunner("", "Traceback: model not found", errors.New("exit status 1"))
	client, err := aligner.New("align", aligner.WithRunner(runner))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Analyze(context.Background(), "/ref.srt", "/target.srt")
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected stderr in diagnostics, got %q", err.Error())
	}
}

func TestAnalyzeRejectsBadJSON(t *testing.T) {
	client, err := aligner.New("align", aligner.WithRunner(stubRunner("not json", "", nil)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Analyze(context.Background(), "/ref.srt", "/target.srt"); !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator failure, got %v", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := aligner.New("   "); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

func TestNewSplitsInterpreterArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName = name
		gotArgs = args
		return []byte(`{"offsets": []}`), nil, nil
	}
	client, err := aligner.New("python3 /opt/align.py", aligner.WithRunner(runner))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Analyze(context.Background(), "/ref.srt", "/target.srt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "python3" {
		t.Fatalf("expected python3 as binary, got %q", gotName)
	}
	expected := []string{"/opt/align.py", "/ref.srt", "/target.srt"}
	if len(gotArgs) != len(expected) {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	for i := range expected {
		if gotArgs[i] != expected[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, expected[i], gotArgs[i])
		}
	}
}
