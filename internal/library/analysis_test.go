package library_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"syncorbit/internal/anchors"
	"syncorbit/internal/arbiter"
	"syncorbit/internal/library"
)

func TestSaveAndLoadAnalysis(t *testing.T) {
	store := newTestStore(t)

	doc := library.AnalysisDocument{
		BestReference: arbiter.KindWhisper,
		ReferencePath: "/data/ref/Heat (1995)/ref.srt",
		TargetPath:    "/media/Heat (1995)/heat.fi.srt",
		Analysis: anchors.Analysis{
			AnchorCount: 12,
			AvgOffset:   -0.4,
			DriftSpan:   0.9,
			Decision:    anchors.DecisionSynced,
			Samples: []anchors.Sample{
				{T: 10, Delta: -0.5, Score: 0.9},
				{T: 90, Delta: -0.3, Score: 0.8},
			},
		},
	}
	if err := store.SaveAnalysis("Heat (1995)", doc); err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}

	loaded, err := store.LoadAnalysis("Heat (1995)")
	if err != nil {
		t.Fatalf("LoadAnalysis returned error: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected document")
	}
	if loaded.Movie != "Heat (1995)" {
		t.Fatalf("expected movie recorded in document, got %q", loaded.Movie)
	}
	if loaded.GeneratedAt.IsZero() {
		t.Fatal("expected generated timestamp stamped on save")
	}
	if loaded.BestReference != arbiter.KindWhisper {
		t.Fatalf("unexpected reference kind %q", loaded.BestReference)
	}
	if loaded.Analysis.Decision != anchors.DecisionSynced || loaded.Analysis.AnchorCount != 12 {
		t.Fatalf("unexpected analysis payload: %+v", loaded.Analysis)
	}
	if len(loaded.Analysis.Samples) != 2 {
		t.Fatalf("expected samples round-tripped, got %d", len(loaded.Analysis.Samples))
	}
}

func TestLoadAnalysisMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.LoadAnalysis("Never Scanned (2000)")
	if err != nil {
		t.Fatalf("LoadAnalysis returned error: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
}

func TestLoadAnalysisRejectsTruncatedDocument(t *testing.T) {
	store := newTestStore(t)

	path := store.AnalysisPath("Broken (2010)")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"movie": "Broken (2010)", "analysis": {`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := store.LoadAnalysis("Broken (2010)"); err == nil {
		t.Fatal("expected decode error for truncated document")
	}
}

func TestAnalysisModTime(t *testing.T) {
	store := newTestStore(t)

	if _, ok := store.AnalysisModTime("Absent (1990)"); ok {
		t.Fatal("expected no mod time for absent sidecar")
	}

	if err := store.SaveAnalysis("Present (1991)", library.AnalysisDocument{}); err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}
	stale := time.Now().Add(-time.Hour)
	if err := os.Chtimes(store.AnalysisPath("Present (1991)"), stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	mtime, ok := store.AnalysisModTime("Present (1991)")
	if !ok {
		t.Fatal("expected mod time for saved sidecar")
	}
	if diff := mtime.Sub(stale); diff > time.Second || diff < -time.Second {
		t.Fatalf("expected mod time near %v, got %v", stale, mtime)
	}
}
