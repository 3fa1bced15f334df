package scan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"syncorbit/internal/library"
	"syncorbit/internal/services"
	"syncorbit/internal/services/ffsubsync"
)

// BulkResult is the outcome for one movie of a bulk action. Err is nil on
// success; a failed sibling never aborts the rest of the batch.
type BulkResult struct {
	Movie string
	Err   error
}

// BulkIgnore marks each movie as operator-excluded. Movies with no backing
// directory fail with NotFound rather than creating a phantom ledger row.
func (s *Scanner) BulkIgnore(ctx context.Context, movies []string) []BulkResult {
	return s.fanOut(ctx, movies, func(ctx context.Context, movie string) error {
		if err := s.requireItem("ignore", movie); err != nil {
			return err
		}
		_, err := s.store.SetIgnored(ctx, movie)
		return err
	})
}

// BulkUnignore clears the operator exclusion for each movie.
func (s *Scanner) BulkUnignore(ctx context.Context, movies []string) []BulkResult {
	return s.fanOut(ctx, movies, func(ctx context.Context, movie string) error {
		if err := s.requireItem("unignore", movie); err != nil {
			return err
		}
		_, err := s.store.ClearIgnored(ctx, movie)
		return err
	})
}

// BulkRequestReference dispatches a fire-and-forget transcription job for
// each movie.
func (s *Scanner) BulkRequestReference(ctx context.Context, movies []string) []BulkResult {
	return s.fanOut(ctx, movies, func(ctx context.Context, movie string) error {
		_, err := s.RequestTranscription(ctx, movie)
		return err
	})
}

// BulkResync runs the resynchronizer for each movie's target track against
// its video and records the corrected-track artifact.
func (s *Scanner) BulkResync(ctx context.Context, movies []string) []BulkResult {
	return s.fanOut(ctx, movies, func(ctx context.Context, movie string) error {
		return s.resyncMovie(ctx, movie)
	})
}

func (s *Scanner) resyncMovie(ctx context.Context, movie string) error {
	item, err := inspectItem(s.cfg.Paths.MediaRoot, movie, s.cfg.Analysis.TargetLanguages)
	if err != nil {
		return err
	}
	if item.VideoPath == "" {
		return services.Wrap(services.ErrIneligible, "scan", "resync", movie+" has no video file", nil)
	}
	if item.TargetPath == "" {
		return services.Wrap(services.ErrIneligible, "scan", "resync", movie+" has no target subtitle", nil)
	}

	outputPath := ffsubsync.OutputPath(s.cfg.ResyncRoot(), movie, item.TargetPath)
	if _, err := s.resyncer.Sync(ctx, item.VideoPath, item.TargetPath, outputPath); err != nil {
		return err
	}
	_, err = s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
		record.HasFFsubsync = true
	})
	return err
}

// fanOut applies action to every movie with bounded concurrency and returns
// one result per input in input order.
func (s *Scanner) fanOut(ctx context.Context, movies []string, action func(context.Context, string) error) []BulkResult {
	results := make([]BulkResult, len(movies))

	group, groupCtx := errgroup.WithContext(ctx)
	workers := s.cfg.Workflow.ScanWorkers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)

	for i, movie := range movies {
		i, movie := i, movie
		results[i].Movie = movie
		group.Go(func() error {
			results[i].Err = action(groupCtx, movie)
			return nil
		})
	}
	group.Wait()
	return results
}
