package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"syncorbit/internal/anchors"
	"syncorbit/internal/arbiter"
	"syncorbit/internal/services"
)

// SortKey selects the ordering of List results.
type SortKey string

const (
	// SortRecency orders by target track modification time, newest first.
	SortRecency SortKey = "recency"
	// SortTitle orders alphabetically by movie name.
	SortTitle SortKey = "title"
	// SortAnalyzed orders by last analysis time, newest first.
	SortAnalyzed SortKey = "analyzed"
)

// ListOptions narrows and orders List results. Zero values mean no filter.
type ListOptions struct {
	Decision anchors.Decision
	State    State
	Sort     SortKey
	Limit    int
}

// LibrarySummary aggregates the ledger for status reporting.
type LibrarySummary struct {
	Total            int `json:"total"`
	Synced           int `json:"synced"`
	NeedsAdjustment  int `json:"needs_adjustment"`
	Bad              int `json:"bad"`
	Unknown          int `json:"unknown"`
	Ignored          int `json:"ignored"`
	MissingSubtitles int `json:"missing_subtitles"`
}

// Upsert applies a read-modify-write update to a movie's row under the
// per-movie lock. The apply callback receives the current row (or a blank
// one for a new movie) and mutates it in place. Two fields are merged rather
// than taken from the callback: Ignored keeps its stored value, and
// HasWhisper stays true once set. The stored result is returned.
func (s *Store) Upsert(ctx context.Context, movie string, apply func(*MovieRecord)) (*MovieRecord, error) {
	movie = strings.TrimSpace(movie)
	if movie == "" {
		return nil, services.Wrap(services.ErrCorrupt, "library", "upsert", "movie name is required", nil)
	}
	release := s.locks.lock(movie)
	defer release()

	record, err := s.getRecord(ctx, movie)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = newRecord(movie)
	}
	prevIgnored := record.Ignored
	prevHasWhisper := record.HasWhisper
	if apply != nil {
		apply(record)
	}
	record.Movie = movie
	record.Ignored = prevIgnored
	record.HasWhisper = record.HasWhisper || prevHasWhisper
	if _, ok := anchors.ParseDecision(string(record.Decision)); !ok {
		record.Decision = anchors.DecisionUnknown
	}
	if _, ok := arbiter.ParseKind(string(record.BestReference)); !ok {
		record.BestReference = arbiter.KindNone
	}
	if _, ok := ParseState(string(record.State)); !ok {
		record.State = StateOK
	}

	if err := s.writeRecord(ctx, record); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// Get returns the stored record for movie, or nil when the movie is not in
// the library.
func (s *Store) Get(ctx context.Context, movie string) (*MovieRecord, error) {
	movie = strings.TrimSpace(movie)
	if movie == "" {
		return nil, services.Wrap(services.ErrCorrupt, "library", "get", "movie name is required", nil)
	}
	return s.getRecord(ctx, movie)
}

// List returns records matching opts in the requested order.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*MovieRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies`, movieColumns)
	var (
		clauses []string
		args    []any
	)
	if opts.Decision != "" {
		clauses = append(clauses, "decision = ?")
		args = append(args, string(opts.Decision))
	}
	if opts.State != "" {
		clauses = append(clauses, "state = ?")
		args = append(args, string(opts.State))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	switch opts.Sort {
	case SortTitle:
		query += " ORDER BY movie COLLATE NOCASE ASC"
	case SortAnalyzed:
		query += " ORDER BY last_analyzed IS NULL, last_analyzed DESC, movie COLLATE NOCASE ASC"
	default:
		query += " ORDER BY target_mtime IS NULL, target_mtime DESC, movie COLLATE NOCASE ASC"
	}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var records []*MovieRecord
	err := s.retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "list", "query movies", err)
	}
	return records, nil
}

// Summary tallies the ledger by decision, state, and ignored flag.
func (s *Store) Summary(ctx context.Context) (LibrarySummary, error) {
	var summary LibrarySummary
	records, err := s.List(ctx, ListOptions{})
	if err != nil {
		return summary, err
	}
	summary.Total = len(records)
	for _, record := range records {
		if record.Ignored {
			summary.Ignored++
		}
		if record.State == StateMissingSubtitles {
			summary.MissingSubtitles++
		}
		switch record.Decision {
		case anchors.DecisionSynced:
			summary.Synced++
		case anchors.DecisionNeedsAdjustment:
			summary.NeedsAdjustment++
		case anchors.DecisionBad:
			summary.Bad++
		default:
			summary.Unknown++
		}
	}
	return summary, nil
}

// SetIgnored flags a movie as operator-excluded. The row is created when the
// movie has never been scanned so the flag survives a later first scan.
func (s *Store) SetIgnored(ctx context.Context, movie string) (*MovieRecord, error) {
	return s.setIgnored(ctx, movie, true)
}

// ClearIgnored removes the operator exclusion.
func (s *Store) ClearIgnored(ctx context.Context, movie string) (*MovieRecord, error) {
	return s.setIgnored(ctx, movie, false)
}

func (s *Store) setIgnored(ctx context.Context, movie string, flag bool) (*MovieRecord, error) {
	movie = strings.TrimSpace(movie)
	if movie == "" {
		return nil, services.Wrap(services.ErrCorrupt, "library", "set ignored", "movie name is required", nil)
	}
	release := s.locks.lock(movie)
	defer release()

	record, err := s.getRecord(ctx, movie)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = newRecord(movie)
	}
	record.Ignored = flag
	if err := s.writeRecord(ctx, record); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// SetState moves a movie to the given lifecycle state without touching its
// stored quality statistics.
func (s *Store) SetState(ctx context.Context, movie string, state State) (*MovieRecord, error) {
	if _, ok := ParseState(string(state)); !ok {
		return nil, services.Wrap(services.ErrCorrupt, "library", "set state", fmt.Sprintf("unknown state %q", state), nil)
	}
	return s.Upsert(ctx, movie, func(record *MovieRecord) {
		record.State = state
	})
}

// MarkMissing records that the movie currently has no target-language track.
// Stored statistics and sticky flags are preserved.
func (s *Store) MarkMissing(ctx context.Context, movie string) (*MovieRecord, error) {
	return s.SetState(ctx, movie, StateMissingSubtitles)
}

// Prune deletes rows for movies no longer present in the media enumeration
// and removes their analysis sidecars. An empty enumeration is treated as a
// failed media scan and prunes nothing.
func (s *Store) Prune(ctx context.Context, existing map[string]struct{}) (int, error) {
	if len(existing) == 0 {
		return 0, nil
	}

	var stored []string
	err := s.retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT movie FROM movies`)
		if err != nil {
			return err
		}
		defer rows.Close()

		stored = stored[:0]
		for rows.Next() {
			var movie string
			if err := rows.Scan(&movie); err != nil {
				return err
			}
			stored = append(stored, movie)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, services.Wrap(services.ErrCorrupt, "library", "prune", "enumerate movies", err)
	}

	var missing []string
	for _, movie := range stored {
		if _, ok := existing[movie]; !ok {
			missing = append(missing, movie)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	args := make([]any, len(missing))
	for i, movie := range missing {
		args[i] = movie
	}
	query := fmt.Sprintf(`DELETE FROM movies WHERE movie IN (%s)`, makePlaceholders(len(missing)))
	if _, err := s.execWithRetry(ctx, query, args...); err != nil {
		return 0, services.Wrap(services.ErrCorrupt, "library", "prune", "delete stale movies", err)
	}
	for _, movie := range missing {
		os.RemoveAll(filepath.Join(s.analysisRoot, movie))
	}
	return len(missing), nil
}

func (s *Store) getRecord(ctx context.Context, movie string) (*MovieRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE movie = ?`, movieColumns)
	var record *MovieRecord
	err := s.retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, query, movie)
		scanned, err := scanRecord(row)
		if err != nil {
			return err
		}
		record = scanned
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "get", fmt.Sprintf("load movie %q", movie), err)
	}
	return record, nil
}

func (s *Store) writeRecord(ctx context.Context, record *MovieRecord) error {
	query := fmt.Sprintf(`INSERT INTO movies (%s) VALUES (%s)
		ON CONFLICT(movie) DO UPDATE SET
			anchor_count = excluded.anchor_count,
			avg_offset = excluded.avg_offset,
			drift_span = excluded.drift_span,
			decision = excluded.decision,
			best_reference = excluded.best_reference,
			reference_path = excluded.reference_path,
			target_path = excluded.target_path,
			has_whisper = excluded.has_whisper,
			has_ffsubsync = excluded.has_ffsubsync,
			target_mtime = excluded.target_mtime,
			last_analyzed = excluded.last_analyzed,
			ignored = excluded.ignored,
			state = excluded.state`,
		movieColumns, makePlaceholders(14))

	_, err := s.execWithRetry(ctx, query,
		record.Movie,
		record.AnchorCount,
		record.AvgOffset,
		record.DriftSpan,
		string(record.Decision),
		string(record.BestReference),
		nullableString(record.ReferencePath),
		nullableString(record.TargetPath),
		boolToInt(record.HasWhisper),
		boolToInt(record.HasFFsubsync),
		nullableTime(record.TargetMtime),
		nullableTime(record.LastAnalyzed),
		boolToInt(record.Ignored),
		string(record.State),
	)
	if err != nil {
		return services.Wrap(services.ErrConflict, "library", "upsert", fmt.Sprintf("store movie %q", record.Movie), err)
	}
	return nil
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
