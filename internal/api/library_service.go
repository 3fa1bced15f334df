package api

import (
	"context"
	"fmt"

	"syncorbit/internal/anchors"
	"syncorbit/internal/library"
	"syncorbit/internal/scan"
	"syncorbit/internal/services"
)

// LibraryReader abstracts the store interactions the service needs.
type LibraryReader interface {
	List(ctx context.Context, opts library.ListOptions) ([]*library.MovieRecord, error)
	Get(ctx context.Context, movie string) (*library.MovieRecord, error)
	Summary(ctx context.Context) (library.LibrarySummary, error)
	LoadAnalysis(movie string) (*library.AnalysisDocument, error)
}

// Orchestrator abstracts the scanner operations the service exposes.
type Orchestrator interface {
	StartRescan(ctx context.Context) error
	Progress() scan.BatchProgress
	Reanalyze(ctx context.Context, movie string, forced bool) (*library.MovieRecord, error)
	BulkIgnore(ctx context.Context, movies []string) []scan.BulkResult
	BulkUnignore(ctx context.Context, movies []string) []scan.BulkResult
	BulkRequestReference(ctx context.Context, movies []string) []scan.BulkResult
	BulkResync(ctx context.Context, movies []string) []scan.BulkResult
	TranscriptionJobs() []scan.TranscriptionJob
	TranscriptionJob(id string) (scan.TranscriptionJob, error)
}

// ListQuery narrows and orders a library listing.
type ListQuery struct {
	Decision string
	State    string
	Sort     string
	Limit    int
}

// LibraryService exposes library operations returning API DTOs.
type LibraryService struct {
	store        LibraryReader
	scanner      Orchestrator
	curveDensity int
}

// NewLibraryService constructs the service. A non-positive curve density
// falls back to the smoother's default.
func NewLibraryService(store LibraryReader, scanner Orchestrator, curveDensity int) *LibraryService {
	if store == nil {
		return nil
	}
	if curveDensity < 1 {
		curveDensity = anchors.DefaultCurveDensity
	}
	return &LibraryService{store: store, scanner: scanner, curveDensity: curveDensity}
}

// List returns library entries matching the query.
func (s *LibraryService) List(ctx context.Context, query ListQuery) (ListResponse, error) {
	opts := library.ListOptions{Limit: query.Limit}
	if query.Decision != "" {
		decision, ok := anchors.ParseDecision(query.Decision)
		if !ok {
			return ListResponse{}, services.Wrap(services.ErrIneligible, "api", "list",
				fmt.Sprintf("unknown decision filter %q", query.Decision), nil)
		}
		opts.Decision = decision
	}
	if query.State != "" {
		state, ok := library.ParseState(query.State)
		if !ok {
			return ListResponse{}, services.Wrap(services.ErrIneligible, "api", "list",
				fmt.Sprintf("unknown state filter %q", query.State), nil)
		}
		opts.State = state
	}
	switch query.Sort {
	case "", "recency":
		opts.Sort = library.SortRecency
	case "title":
		opts.Sort = library.SortTitle
	case "analyzed":
		opts.Sort = library.SortAnalyzed
	default:
		return ListResponse{}, services.Wrap(services.ErrIneligible, "api", "list",
			fmt.Sprintf("unknown sort key %q", query.Sort), nil)
	}

	records, err := s.store.List(ctx, opts)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{Movies: FromRecords(records)}, nil
}

// Describe returns one movie with its anchor detail and smoothed curve.
func (s *LibraryService) Describe(ctx context.Context, movie string) (MovieDetail, error) {
	record, err := s.store.Get(ctx, movie)
	if err != nil {
		return MovieDetail{}, err
	}
	if record == nil {
		return MovieDetail{}, services.Wrap(services.ErrNotFound, "api", "describe", movie, nil)
	}

	detail := MovieDetail{
		MovieSummary:  FromRecord(record),
		ReferencePath: record.ReferencePath,
		TargetPath:    record.TargetPath,
	}
	doc, err := s.store.LoadAnalysis(movie)
	if err != nil {
		return MovieDetail{}, err
	}
	if doc != nil {
		detail.Anchors = fromSamples(doc.Analysis.Clean)
		detail.Curve = fromSamples(anchors.SmoothCurve(doc.Analysis.Clean, s.curveDensity))
	}
	return detail, nil
}

// Reanalyze triggers re-analysis and returns the refreshed record.
func (s *LibraryService) Reanalyze(ctx context.Context, movie string, forced bool) (MovieSummary, error) {
	if s.scanner == nil {
		return MovieSummary{}, services.Wrap(services.ErrCollaborator, "api", "reanalyze", "scanner unavailable", nil)
	}
	record, err := s.scanner.Reanalyze(ctx, movie, forced)
	if err != nil {
		return MovieSummary{}, err
	}
	return FromRecord(record), nil
}

// StartRescan launches a background full rescan.
func (s *LibraryService) StartRescan(ctx context.Context) error {
	if s.scanner == nil {
		return services.Wrap(services.ErrCollaborator, "api", "rescan", "scanner unavailable", nil)
	}
	return s.scanner.StartRescan(ctx)
}

// Progress reports current rescan progress.
func (s *LibraryService) Progress() ScanProgress {
	if s.scanner == nil {
		return ScanProgress{}
	}
	return FromProgress(s.scanner.Progress())
}

// Status aggregates ledger counts, scan progress, and background jobs.
func (s *LibraryService) Status(ctx context.Context) (LibraryStatus, error) {
	summary, err := s.store.Summary(ctx)
	if err != nil {
		return LibraryStatus{}, err
	}
	status := LibraryStatus{
		Total:            summary.Total,
		Synced:           summary.Synced,
		NeedsAdjustment:  summary.NeedsAdjustment,
		Bad:              summary.Bad,
		Unknown:          summary.Unknown,
		Ignored:          summary.Ignored,
		MissingSubtitles: summary.MissingSubtitles,
	}
	if s.scanner != nil {
		status.Scan = FromProgress(s.scanner.Progress())
		status.Jobs = FromJobs(s.scanner.TranscriptionJobs())
	}
	return status, nil
}

// BulkIgnore flags each movie as operator-excluded.
func (s *LibraryService) BulkIgnore(ctx context.Context, movies []string) BulkResponse {
	return s.bulk(movies, func() []scan.BulkResult { return s.scanner.BulkIgnore(ctx, movies) })
}

// BulkUnignore clears the exclusion for each movie.
func (s *LibraryService) BulkUnignore(ctx context.Context, movies []string) BulkResponse {
	return s.bulk(movies, func() []scan.BulkResult { return s.scanner.BulkUnignore(ctx, movies) })
}

// BulkRequestReference dispatches transcription jobs for each movie.
func (s *LibraryService) BulkRequestReference(ctx context.Context, movies []string) BulkResponse {
	return s.bulk(movies, func() []scan.BulkResult { return s.scanner.BulkRequestReference(ctx, movies) })
}

// BulkResync runs the resynchronizer for each movie.
func (s *LibraryService) BulkResync(ctx context.Context, movies []string) BulkResponse {
	return s.bulk(movies, func() []scan.BulkResult { return s.scanner.BulkResync(ctx, movies) })
}

func (s *LibraryService) bulk(movies []string, run func() []scan.BulkResult) BulkResponse {
	if s.scanner == nil {
		outcomes := make([]BulkOutcome, 0, len(movies))
		for _, movie := range movies {
			outcomes = append(outcomes, BulkOutcome{Movie: movie, Error: "scanner unavailable"})
		}
		return BulkResponse{Results: outcomes}
	}
	return BulkResponse{Results: FromBulkResults(run())}
}

// Jobs lists background transcription jobs.
func (s *LibraryService) Jobs() []JobStatus {
	if s.scanner == nil {
		return nil
	}
	return FromJobs(s.scanner.TranscriptionJobs())
}

// Job returns one background job by id.
func (s *LibraryService) Job(id string) (JobStatus, error) {
	if s.scanner == nil {
		return JobStatus{}, services.Wrap(services.ErrNotFound, "api", "job", id, nil)
	}
	job, err := s.scanner.TranscriptionJob(id)
	if err != nil {
		return JobStatus{}, err
	}
	return FromJob(job), nil
}
