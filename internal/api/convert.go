package api

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"syncorbit/internal/anchors"
	"syncorbit/internal/library"
	"syncorbit/internal/scan"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// DisplayTitle renders a directory name for humans: separators become
// spaces and words are title-cased without clobbering existing capitals.
func DisplayTitle(movie string) string {
	cleaned := strings.NewReplacer(".", " ", "_", " ").Replace(movie)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return movie
	}
	return titleCaser.String(cleaned)
}

// FromRecord converts a stored record into its list DTO.
func FromRecord(record *library.MovieRecord) MovieSummary {
	return MovieSummary{
		Movie:         record.Movie,
		DisplayTitle:  DisplayTitle(record.Movie),
		AnchorCount:   record.AnchorCount,
		AvgOffsetSec:  record.AvgOffset,
		DriftSpanSec:  record.DriftSpan,
		Decision:      string(record.Decision),
		BestReference: string(record.BestReference),
		HasWhisper:    record.HasWhisper,
		HasFFsubsync:  record.HasFFsubsync,
		TargetMtime:   formatTime(record.TargetMtime),
		LastAnalyzed:  formatTime(record.LastAnalyzed),
		Ignored:       record.Ignored,
		State:         string(record.State),
	}
}

// FromRecords converts a listing.
func FromRecords(records []*library.MovieRecord) []MovieSummary {
	if len(records) == 0 {
		return nil
	}
	out := make([]MovieSummary, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

func fromSamples(samples []anchors.Sample) []AnchorPoint {
	if len(samples) == 0 {
		return nil
	}
	out := make([]AnchorPoint, 0, len(samples))
	for _, s := range samples {
		out = append(out, AnchorPoint{T: s.T, Delta: s.Delta, Score: s.Score})
	}
	return out
}

// FromProgress converts orchestrator progress.
func FromProgress(progress scan.BatchProgress) ScanProgress {
	return ScanProgress{
		Running:      progress.Running,
		Index:        progress.Index,
		Total:        progress.Total,
		CurrentMovie: progress.CurrentMovie,
	}
}

// FromJob converts one transcription job.
func FromJob(job scan.TranscriptionJob) JobStatus {
	return JobStatus{
		ID:        job.ID,
		Movie:     job.Movie,
		State:     string(job.State),
		Progress:  job.Progress,
		Message:   job.Message,
		CreatedAt: job.CreatedAt.Format(dateTimeFormat),
		UpdatedAt: job.UpdatedAt.Format(dateTimeFormat),
	}
}

// FromJobs converts a job listing.
func FromJobs(jobs []scan.TranscriptionJob) []JobStatus {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]JobStatus, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromBulkResults converts bulk action outcomes.
func FromBulkResults(results []scan.BulkResult) []BulkOutcome {
	out := make([]BulkOutcome, 0, len(results))
	for _, result := range results {
		outcome := BulkOutcome{Movie: result.Movie, OK: result.Err == nil}
		if result.Err != nil {
			outcome.Error = result.Err.Error()
		}
		out = append(out, outcome)
	}
	return out
}
