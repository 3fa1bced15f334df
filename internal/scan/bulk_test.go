package scan_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"syncorbit/internal/services"
)

func TestBulkIgnorePartialSuccess(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Alien (1979)")
	f.addMovie(t, "Heat (1995)")

	results := f.scanner.BulkIgnore(context.Background(), []string{"Alien (1979)", "", "Heat (1995)"})
	if len(results) != 3 {
		t.Fatalf("expected one result per input, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("expected siblings to succeed: %+v", results)
	}
	if results[1].Err == nil {
		t.Fatal("expected blank movie name to fail")
	}

	for _, movie := range []string{"Alien (1979)", "Heat (1995)"} {
		record, err := f.store.Get(context.Background(), movie)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if record == nil || !record.Ignored {
			t.Fatalf("expected %s ignored, got %+v", movie, record)
		}
	}
}

func TestBulkIgnoreUnknownMovieNotFound(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Alien (1979)")

	results := f.scanner.BulkIgnore(context.Background(), []string{"Alien (1979)", "Phantom (1999)"})
	if results[0].Err != nil {
		t.Fatalf("expected existing movie to succeed, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, services.ErrNotFound) {
		t.Fatalf("expected NotFound for movie without a directory, got %v", results[1].Err)
	}

	record, err := f.store.Get(context.Background(), "Phantom (1999)")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected no ledger row for unknown movie, got %+v", record)
	}

	results = f.scanner.BulkUnignore(context.Background(), []string{"Phantom (1999)"})
	if !errors.Is(results[0].Err, services.ErrNotFound) {
		t.Fatalf("expected NotFound from unignore, got %v", results[0].Err)
	}
}

func TestBulkUnignore(t *testing.T) {
	f := newFixture(t)
	for _, movie := range []string{"Alien (1979)", "Heat (1995)"} {
		f.addMovie(t, movie)
		if _, err := f.store.SetIgnored(context.Background(), movie); err != nil {
			t.Fatalf("SetIgnored returned error: %v", err)
		}
	}

	results := f.scanner.BulkUnignore(context.Background(), []string{"Alien (1979)", "Heat (1995)"})
	for _, result := range results {
		if result.Err != nil {
			t.Fatalf("unexpected failure for %s: %v", result.Movie, result.Err)
		}
	}
	record, err := f.store.Get(context.Background(), "Alien (1979)")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.Ignored {
		t.Fatal("expected ignored flag cleared")
	}
}

func TestBulkResyncRunsToolAndRecordsArtifact(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat (1995)")
	f.addMovieFiles(t, "NoVideo (2003)", "feature.fi.srt")

	results := f.scanner.BulkResync(context.Background(), []string{"Heat (1995)", "NoVideo (2003)"})
	if results[0].Err != nil {
		t.Fatalf("expected resync success, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatal("expected failure for movie without video")
	}

	f.resync.mu.Lock()
	calls := len(f.resync.calls)
	output := ""
	if calls > 0 {
		output = f.resync.calls[0]
	}
	f.resync.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one resync invocation, got %d", calls)
	}
	if !strings.Contains(output, "Heat (1995)") || !strings.HasSuffix(output, ".synced.srt") {
		t.Fatalf("unexpected output path %q", output)
	}

	record, err := f.store.Get(context.Background(), "Heat (1995)")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record == nil || !record.HasFFsubsync {
		t.Fatalf("expected has_ffsubsync recorded, got %+v", record)
	}
}
