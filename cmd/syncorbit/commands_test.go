package main

import (
	"testing"

	"syncorbit/internal/api"
)

func TestStatusCommandRendersCounts(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/status": api.LibraryStatus{
			Running:         true,
			PID:             4242,
			DatabasePath:    "/data/syncorbit.db",
			Total:           12,
			Synced:          9,
			NeedsAdjustment: 2,
			Bad:             1,
		},
	})

	out, _, err := runCLI(t, addr, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Running:")
	requireContains(t, out, "pid 4242")
	requireContains(t, out, "/data/syncorbit.db")
	requireContains(t, out, "Synced:")
	requireContains(t, out, "9")
}

func TestListCommandRendersTable(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/library": api.ListResponse{Movies: []api.MovieSummary{
			{
				Movie:         "Heat (1995)",
				DisplayTitle:  "Heat (1995)",
				AnchorCount:   18,
				AvgOffsetSec:  0.12,
				DriftSpanSec:  0.4,
				Decision:      "synced",
				BestReference: "whisper",
				State:         "ok",
			},
			{
				Movie:        "Stalker (1979)",
				DisplayTitle: "Stalker (1979)",
				Decision:     "unknown",
				State:        "missing_subtitles",
			},
		}},
	})

	out, _, err := runCLI(t, addr, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Heat (1995)")
	requireContains(t, out, "synced")
	requireContains(t, out, "whisper")
	requireContains(t, out, "Stalker (1979)")
	requireContains(t, out, "missing_subtitles")
}

func TestListCommandEmptyLibrary(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/library": api.ListResponse{},
	})

	out, _, err := runCLI(t, addr, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No movies match.")
}

func TestShowCommandRendersDetail(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/library/Heat (1995)": api.MovieResponse{Movie: api.MovieDetail{
			MovieSummary: api.MovieSummary{
				Movie:         "Heat (1995)",
				DisplayTitle:  "Heat (1995)",
				AnchorCount:   18,
				Decision:      "synced",
				BestReference: "whisper",
				State:         "ok",
			},
			ReferencePath: "/data/ref/Heat (1995)/ref.srt",
			TargetPath:    "/media/Heat (1995)/feature.fi.srt",
			Anchors:       []api.AnchorPoint{{T: 10, Delta: 0.1, Score: 0.9}},
		}},
	})

	out, _, err := runCLI(t, addr, "show", "Heat (1995)", "--anchors")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Verdict:")
	requireContains(t, out, "synced")
	requireContains(t, out, "/data/ref/Heat (1995)/ref.srt")
	requireContains(t, out, "+0.100")
}

func TestShowCommandUnknownMovie(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{})

	_, _, err := runCLI(t, addr, "show", "Nope (2022)")
	if err == nil {
		t.Fatal("expected error for unknown movie")
	}
	requireContains(t, err.Error(), "not found")
}

func TestReanalyzeCommand(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"POST /api/library/Heat (1995)/reanalyze": api.MovieSummary{
			Movie:         "Heat (1995)",
			DisplayTitle:  "Heat (1995)",
			AnchorCount:   18,
			AvgOffsetSec:  0.12,
			DriftSpanSec:  0.4,
			Decision:      "synced",
			BestReference: "whisper",
		},
	})

	out, _, err := runCLI(t, addr, "reanalyze", "Heat (1995)", "--force")
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	requireContains(t, out, "Heat (1995): synced")
	requireContains(t, out, "18 anchors")
}

func TestIgnoreCommandReportsPartialFailure(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"POST /api/bulk/ignore": api.BulkResponse{Results: []api.BulkOutcome{
			{Movie: "Heat (1995)", OK: true},
			{Movie: "Nope (2022)", Error: "movie not found"},
		}},
	})

	out, _, err := runCLI(t, addr, "ignore", "Heat (1995)", "Nope (2022)")
	if err == nil {
		t.Fatal("expected partial failure error")
	}
	requireContains(t, out, "Heat (1995): ok")
	requireContains(t, out, "Nope (2022): movie not found")
	requireContains(t, err.Error(), "1 of 2")
}

func TestJobsCommandListsJobs(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/jobs": map[string][]api.JobStatus{"jobs": {
			{ID: "job-1", Movie: "Heat (1995)", State: "running", Progress: 0.5},
		}},
	})

	out, _, err := runCLI(t, addr, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	requireContains(t, out, "job-1")
	requireContains(t, out, "running")
	requireContains(t, out, "50%")
}

func TestJobsCommandEmpty(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/jobs": map[string][]api.JobStatus{"jobs": {}},
	})

	out, _, err := runCLI(t, addr, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	requireContains(t, out, "No transcription jobs.")
}

func TestScanCommandStartsRescan(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"POST /api/scan": api.ScanProgress{Running: true},
	})

	out, _, err := runCLI(t, addr, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Rescan started.")
}

func TestStatusCommandJSONOutput(t *testing.T) {
	addr := newFakeDaemon(t, map[string]any{
		"GET /api/status": api.LibraryStatus{Running: true, Total: 3},
	})

	out, _, err := runCLI(t, addr, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	requireContains(t, out, `"running": true`)
	requireContains(t, out, `"total": 3`)
}
