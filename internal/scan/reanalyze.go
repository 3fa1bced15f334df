package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"syncorbit/internal/anchors"
	"syncorbit/internal/arbiter"
	"syncorbit/internal/library"
	"syncorbit/internal/logging"
	"syncorbit/internal/services"
	"syncorbit/internal/services/aligner"
)

// Reanalyze re-runs arbitration and alignment for one movie and returns the
// updated record. Ignored movies are rejected. Concurrent calls for the same
// movie share a single run. When forced, the freshness gate is bypassed but
// eligibility and the no-clobber rule still hold.
func (s *Scanner) Reanalyze(ctx context.Context, movie string, forced bool) (*library.MovieRecord, error) {
	if err := s.requireItem("reanalyze", movie); err != nil {
		return nil, err
	}
	record, err := s.store.Get(ctx, movie)
	if err != nil {
		return nil, err
	}
	if record != nil && record.Ignored {
		return nil, services.Wrap(services.ErrIneligible, "scan", "reanalyze", fmt.Sprintf("%s is ignored", movie), nil)
	}

	result, err, _ := s.group.Do(movie, func() (any, error) {
		return s.analyze(ctx, movie, forced)
	})
	if err != nil {
		return nil, err
	}
	return result.(*library.MovieRecord), nil
}

// requireItem rejects operations on movies with no backing directory under
// the media root.
func (s *Scanner) requireItem(op, movie string) error {
	if _, err := os.Stat(filepath.Join(s.cfg.Paths.MediaRoot, movie)); err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrNotFound, "scan", op, movie, err)
		}
		return services.Wrap(services.ErrCollaborator, "scan", op, movie, err)
	}
	return nil
}

// analyze reconciles one movie end to end: inspect the directory, arbitrate
// reference candidates, decide whether the stored verdict is still fresh,
// and if not run the aligner, classify, and commit. Analyzer failures leave
// the stored record untouched.
func (s *Scanner) analyze(ctx context.Context, movie string, forced bool) (*library.MovieRecord, error) {
	item, err := inspectItem(s.cfg.Paths.MediaRoot, movie, s.cfg.Analysis.TargetLanguages)
	if err != nil {
		return nil, err
	}

	candidates := collectCandidates(s.cfg.RefRoot(), s.cfg.ResyncRoot(), item)
	hasWhisper := hasKind(candidates, arbiter.KindWhisper)
	hasFFsubsync := hasKind(candidates, arbiter.KindFFsync)

	if item.TargetPath == "" {
		return s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
			record.State = library.StateMissingSubtitles
			record.TargetPath = ""
			record.TargetMtime = nil
			record.HasWhisper = hasWhisper
			record.HasFFsubsync = hasFFsubsync
		})
	}

	chosen := s.arb.Select(candidates)
	if chosen.Kind == arbiter.KindNone {
		return s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
			record.State = library.StateMissingSubtitles
			record.TargetPath = item.TargetPath
			mtime := item.TargetMtime
			record.TargetMtime = &mtime
			record.HasWhisper = hasWhisper
			record.HasFFsubsync = hasFFsubsync
		})
	}

	current, err := s.store.Get(ctx, movie)
	if err != nil {
		return nil, err
	}
	var lastAnalyzed, targetMtime *time.Time
	if current != nil {
		lastAnalyzed = current.LastAnalyzed
	}
	if !item.TargetMtime.IsZero() {
		mtime := item.TargetMtime
		targetMtime = &mtime
	}
	if !arbiter.ShouldReplace(chosen, lastAnalyzed, targetMtime, forced) {
		// Stored verdict is fresher than both tracks; refresh bookkeeping only.
		return s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
			record.State = library.StateOK
			record.TargetPath = item.TargetPath
			record.TargetMtime = targetMtime
			record.HasWhisper = hasWhisper
			record.HasFFsubsync = hasFFsubsync
		})
	}

	result, err := s.aligner.Analyze(ctx, chosen.Path, item.TargetPath)
	if err != nil {
		if errors.Is(err, aligner.ErrEmptySubtitles) {
			return s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
				record.State = library.StateOK
				record.Decision = anchors.DecisionUnknown
				record.AnchorCount = 0
				record.TargetPath = item.TargetPath
				record.TargetMtime = targetMtime
				record.HasWhisper = hasWhisper
				record.HasFFsubsync = hasFFsubsync
			})
		}
		return nil, err
	}

	analysis := anchors.Analyze(result.Samples, s.cfg.Analysis.Thresholds)
	now := time.Now().UTC()

	updated, err := s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
		record.AnchorCount = analysis.AnchorCount
		record.AvgOffset = analysis.AvgOffset
		record.DriftSpan = analysis.DriftSpan
		record.Decision = analysis.Decision
		record.BestReference = chosen.Kind
		record.ReferencePath = chosen.Path
		record.TargetPath = item.TargetPath
		record.TargetMtime = targetMtime
		record.LastAnalyzed = &now
		record.HasWhisper = hasWhisper
		record.HasFFsubsync = hasFFsubsync
		record.State = library.StateOK
	})
	if err != nil {
		return nil, err
	}

	doc := library.AnalysisDocument{
		BestReference: chosen.Kind,
		ReferencePath: chosen.Path,
		TargetPath:    item.TargetPath,
		GeneratedAt:   now,
		Analysis:      analysis,
	}
	if err := s.store.SaveAnalysis(movie, doc); err != nil {
		s.logger.Warn("analysis sidecar write failed",
			logging.String(logging.FieldMovie, movie), logging.Error(err))
	}

	s.logger.Info("movie analyzed",
		logging.String(logging.FieldMovie, movie),
		logging.String("decision", string(analysis.Decision)),
		logging.String("reference", string(chosen.Kind)),
		logging.Int("anchors", analysis.AnchorCount))
	return updated, nil
}

func hasKind(candidates []arbiter.Candidate, kind arbiter.Kind) bool {
	for _, c := range candidates {
		if c.Kind == kind {
			return true
		}
	}
	return false
}
