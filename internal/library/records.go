package library

import (
	"database/sql"
	"strings"
	"time"

	"syncorbit/internal/anchors"
	"syncorbit/internal/arbiter"
)

// State tracks a movie's lifecycle in the library independent of its
// quality decision.
type State string

const (
	// StateOK means the movie has a target track and participates in scans.
	StateOK State = "ok"
	// StateMissingSubtitles means no target-language track was found.
	StateMissingSubtitles State = "missing_subtitles"
	// StateIgnored means the movie is operator-excluded from scanning.
	StateIgnored State = "ignored"
)

var stateSet = map[State]struct{}{
	StateOK:               {},
	StateMissingSubtitles: {},
	StateIgnored:          {},
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// MovieRecord is one row of the library ledger.
type MovieRecord struct {
	Movie         string
	AnchorCount   int
	AvgOffset     float64
	DriftSpan     float64
	Decision      anchors.Decision
	BestReference arbiter.Kind
	ReferencePath string
	TargetPath    string
	HasWhisper    bool
	HasFFsubsync  bool
	TargetMtime   *time.Time
	LastAnalyzed  *time.Time
	Ignored       bool
	State         State
}

// newRecord returns a blank row for a movie never seen before.
func newRecord(movie string) *MovieRecord {
	return &MovieRecord{
		Movie:         movie,
		Decision:      anchors.DecisionUnknown,
		BestReference: arbiter.KindNone,
		State:         StateOK,
	}
}

// Clone returns a deep copy so callers can mutate freely.
func (r *MovieRecord) Clone() *MovieRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.TargetMtime != nil {
		t := *r.TargetMtime
		cp.TargetMtime = &t
	}
	if r.LastAnalyzed != nil {
		t := *r.LastAnalyzed
		cp.LastAnalyzed = &t
	}
	return &cp
}

const movieColumns = `movie, anchor_count, avg_offset, drift_span, decision, best_reference,
	reference_path, target_path, has_whisper, has_ffsubsync, target_mtime, last_analyzed, ignored, state`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one movies row. Unparseable enum or timestamp values are
// coerced to safe defaults so a damaged row degrades instead of failing the
// whole listing.
func scanRecord(scanner rowScanner) (*MovieRecord, error) {
	var (
		record        MovieRecord
		decision      sql.NullString
		bestReference sql.NullString
		referencePath sql.NullString
		targetPath    sql.NullString
		hasWhisper    sql.NullInt64
		hasFFsubsync  sql.NullInt64
		targetMtime   sql.NullString
		lastAnalyzed  sql.NullString
		ignored       sql.NullInt64
		state         sql.NullString
	)
	err := scanner.Scan(
		&record.Movie,
		&record.AnchorCount,
		&record.AvgOffset,
		&record.DriftSpan,
		&decision,
		&bestReference,
		&referencePath,
		&targetPath,
		&hasWhisper,
		&hasFFsubsync,
		&targetMtime,
		&lastAnalyzed,
		&ignored,
		&state,
	)
	if err != nil {
		return nil, err
	}

	record.Decision = anchors.DecisionUnknown
	if decision.Valid {
		if parsed, ok := anchors.ParseDecision(decision.String); ok {
			record.Decision = parsed
		}
	}
	record.BestReference = arbiter.KindNone
	if bestReference.Valid {
		if parsed, ok := arbiter.ParseKind(bestReference.String); ok {
			record.BestReference = parsed
		}
	}
	record.ReferencePath = referencePath.String
	record.TargetPath = targetPath.String
	record.HasWhisper = hasWhisper.Int64 != 0
	record.HasFFsubsync = hasFFsubsync.Int64 != 0
	record.TargetMtime = parseNullableTime(targetMtime)
	record.LastAnalyzed = parseNullableTime(lastAnalyzed)
	record.Ignored = ignored.Int64 != 0
	record.State = StateOK
	if state.Valid {
		if parsed, ok := ParseState(state.String); ok {
			record.State = parsed
		} else {
			// A row with an unreadable state lacks a trustworthy target;
			// degrade it instead of poisoning the whole listing.
			record.State = StateMissingSubtitles
		}
	}
	return &record, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseNullableTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	parsed, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseTimeString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
