package api

import "time"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// AnchorPoint is one (reference time, offset) coordinate of a drift curve.
type AnchorPoint struct {
	T     float64 `json:"t"`
	Delta float64 `json:"delta"`
	Score float64 `json:"score,omitempty"`
}

// MovieSummary describes one library entry in list payloads.
type MovieSummary struct {
	Movie         string  `json:"movie"`
	DisplayTitle  string  `json:"displayTitle"`
	AnchorCount   int     `json:"anchorCount"`
	AvgOffsetSec  float64 `json:"avgOffsetSec"`
	DriftSpanSec  float64 `json:"driftSpanSec"`
	Decision      string  `json:"decision"`
	BestReference string  `json:"bestReference"`
	HasWhisper    bool    `json:"hasWhisper"`
	HasFFsubsync  bool    `json:"hasFfsubsync"`
	TargetMtime   string  `json:"targetMtime,omitempty"`
	LastAnalyzed  string  `json:"lastAnalyzed,omitempty"`
	Ignored       bool    `json:"ignored"`
	State         string  `json:"state"`
}

// MovieDetail extends MovieSummary with paths and the anchor curve.
type MovieDetail struct {
	MovieSummary
	ReferencePath string        `json:"referencePath,omitempty"`
	TargetPath    string        `json:"targetPath,omitempty"`
	Anchors       []AnchorPoint `json:"anchors,omitempty"`
	Curve         []AnchorPoint `json:"curve,omitempty"`
}

// ListResponse wraps a collection of library entries.
type ListResponse struct {
	Movies []MovieSummary `json:"movies"`
}

// MovieResponse wraps a single library entry.
type MovieResponse struct {
	Movie MovieDetail `json:"movie"`
}

// LibraryStatus aggregates ledger counts plus scan state for /api/status.
type LibraryStatus struct {
	Running          bool         `json:"running"`
	PID              int          `json:"pid"`
	DatabasePath     string       `json:"databasePath"`
	LockFilePath     string       `json:"lockFilePath"`
	Total            int          `json:"total"`
	Synced           int          `json:"synced"`
	NeedsAdjustment  int          `json:"needsAdjustment"`
	Bad              int          `json:"bad"`
	Unknown          int          `json:"unknown"`
	Ignored          int          `json:"ignored"`
	MissingSubtitles int          `json:"missingSubtitles"`
	Scan             ScanProgress `json:"scan"`
	Jobs             []JobStatus  `json:"jobs,omitempty"`
}

// ScanProgress mirrors the orchestrator's batch progress.
type ScanProgress struct {
	Running      bool   `json:"running"`
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	CurrentMovie string `json:"currentMovie,omitempty"`
}

// JobStatus describes one background transcription job.
type JobStatus struct {
	ID        string  `json:"id"`
	Movie     string  `json:"movie"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
	Message   string  `json:"message,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// BulkOutcome is the per-movie result of a bulk action.
type BulkOutcome struct {
	Movie string `json:"movie"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkResponse wraps bulk action outcomes.
type BulkResponse struct {
	Results []BulkOutcome `json:"results"`
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.Format(dateTimeFormat)
}
