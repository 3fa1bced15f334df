package api_test

import (
	"errors"
	"testing"
	"time"

	"syncorbit/internal/anchors"
	"syncorbit/internal/api"
	"syncorbit/internal/arbiter"
	"syncorbit/internal/library"
	"syncorbit/internal/scan"
)

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Heat (1995)", "Heat (1995)"},
		{"the.thing.1982", "The Thing 1982"},
		{"blade_runner", "Blade Runner"},
		{"RRR", "RRR"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := api.DisplayTitle(tc.in); got != tc.want {
			t.Errorf("DisplayTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFromRecordFormatsTimes(t *testing.T) {
	analyzed := time.Date(2026, 8, 12, 10, 30, 0, 0, time.UTC)
	record := &library.MovieRecord{
		Movie:         "Heat (1995)",
		AnchorCount:   12,
		AvgOffset:     -0.4,
		DriftSpan:     0.9,
		Decision:      anchors.DecisionSynced,
		BestReference: arbiter.KindWhisper,
		LastAnalyzed:  &analyzed,
		State:         library.StateOK,
	}

	summary := api.FromRecord(record)
	if summary.LastAnalyzed != "2026-08-12T10:30:00.000Z" {
		t.Fatalf("unexpected timestamp %q", summary.LastAnalyzed)
	}
	if summary.TargetMtime != "" {
		t.Fatalf("nil time must render empty, got %q", summary.TargetMtime)
	}
	if summary.Decision != "synced" || summary.BestReference != "whisper" {
		t.Fatalf("unexpected enums: %+v", summary)
	}
}

func TestFromBulkResults(t *testing.T) {
	results := []scan.BulkResult{
		{Movie: "Alien (1979)"},
		{Movie: "Heat (1995)", Err: errors.New("no video file")},
	}
	outcomes := api.FromBulkResults(results)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].OK || outcomes[0].Error != "" {
		t.Fatalf("unexpected success outcome %+v", outcomes[0])
	}
	if outcomes[1].OK || outcomes[1].Error == "" {
		t.Fatalf("unexpected failure outcome %+v", outcomes[1])
	}
}
