package scan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"syncorbit/internal/services"
	"syncorbit/internal/services/whisperx"
)

func waitForJobState(t *testing.T, f *fixture, jobID string, state whisperx.JobState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := f.scanner.TranscriptionJob(jobID)
		if err != nil {
			t.Fatalf("TranscriptionJob returned error: %v", err)
		}
		if job.State == state {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := f.scanner.TranscriptionJob(jobID)
	t.Fatalf("job never reached %q, stuck at %+v", state, job)
}

func TestRequestTranscriptionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat (1995)")
	f.trans.statuses = []whisperx.JobStatus{
		{State: whisperx.StateRunning, Progress: 0.4},
		{State: whisperx.StateDone, Progress: 1},
	}

	job, err := f.scanner.RequestTranscription(context.Background(), "Heat (1995)")
	if err != nil {
		t.Fatalf("RequestTranscription returned error: %v", err)
	}
	if job.ID == "" || job.Movie != "Heat (1995)" {
		t.Fatalf("unexpected job handle %+v", job)
	}
	if job.State != whisperx.StateQueued {
		t.Fatalf("expected queued handle, got %q", job.State)
	}

	waitForJobState(t, f, job.ID, whisperx.StateDone)

	record, err := f.store.Get(context.Background(), "Heat (1995)")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record == nil || !record.HasWhisper {
		t.Fatalf("expected has_whisper after completion, got %+v", record)
	}

	jobs := f.scanner.TranscriptionJobs()
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Fatalf("unexpected job listing %+v", jobs)
	}
}

func TestRequestTranscriptionDispatchFailure(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat (1995)")
	f.trans.dispatchErr = errors.New("gpu box offline")

	job, err := f.scanner.RequestTranscription(context.Background(), "Heat (1995)")
	if err != nil {
		t.Fatalf("dispatch is fire-and-forget, got %v", err)
	}
	waitForJobState(t, f, job.ID, whisperx.StateError)

	failed, err := f.scanner.TranscriptionJob(job.ID)
	if err != nil {
		t.Fatalf("TranscriptionJob returned error: %v", err)
	}
	if failed.Message == "" {
		t.Fatal("expected failure message recorded")
	}
}

func TestRequestTranscriptionWithoutVideo(t *testing.T) {
	f := newFixture(t)
	f.addMovieFiles(t, "NoVideo (2003)", "feature.fi.srt")

	_, err := f.scanner.RequestTranscription(context.Background(), "NoVideo (2003)")
	if err == nil || services.Kind(err) != "ineligible" {
		t.Fatalf("expected ineligible, got %v", err)
	}
}

func TestTranscriptionJobUnknownID(t *testing.T) {
	f := newFixture(t)

	_, err := f.scanner.TranscriptionJob("missing")
	if err == nil || services.Kind(err) != "not_found" {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSynchronousTranscriptionCompletes(t *testing.T) {
	f := newFixture(t)
	f.addMovie(t, "Heat (1995)")
	f.trans.jobID = ""

	job, err := f.scanner.RequestTranscription(context.Background(), "Heat (1995)")
	if err != nil {
		t.Fatalf("RequestTranscription returned error: %v", err)
	}
	waitForJobState(t, f, job.ID, whisperx.StateDone)
}
