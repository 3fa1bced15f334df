package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"syncorbit/internal/arbiter"
	"syncorbit/internal/config"
	"syncorbit/internal/library"
	"syncorbit/internal/logging"
	"syncorbit/internal/services"
	"syncorbit/internal/services/aligner"
	"syncorbit/internal/services/ffsubsync"
	"syncorbit/internal/services/whisperx"
)

// ErrScanActive reports that a full rescan is already in flight.
var ErrScanActive = errors.New("rescan already running")

// Aligner produces anchor samples for a reference/target pair.
type Aligner interface {
	Analyze(ctx context.Context, refPath, targetPath string) (aligner.Result, error)
}

// Transcriber submits transcription work to the reference service.
type Transcriber interface {
	Transcribe(ctx context.Context, req whisperx.TranscribeRequest) (string, error)
	Status(ctx context.Context, jobID string) (whisperx.JobStatus, error)
}

// Resyncer produces corrected subtitle tracks.
type Resyncer interface {
	Sync(ctx context.Context, videoPath, subtitlePath, outputPath string) (ffsubsync.Result, error)
}

// BatchProgress is the externally visible state of a full rescan. Index and
// CurrentMovie advance in processing order.
type BatchProgress struct {
	Running      bool   `json:"running"`
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	CurrentMovie string `json:"current_movie"`
}

// Scanner reconciles the media library against the quality ledger.
type Scanner struct {
	cfg         *config.Config
	store       *library.Store
	logger      *slog.Logger
	arb         *arbiter.Arbiter
	aligner     Aligner
	transcriber Transcriber
	resyncer    Resyncer

	group singleflight.Group
	jobs  jobRegistry

	jobPollInterval time.Duration

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	progress BatchProgress
	wg       sync.WaitGroup

	shutdown     chan struct{}
	shutdownOnce sync.Once

	cronRunner cronStopper
}

// Option configures optional Scanner collaborators, primarily for tests.
type Option func(*Scanner)

// WithAligner injects a custom alignment client.
func WithAligner(a Aligner) Option {
	return func(s *Scanner) {
		if a != nil {
			s.aligner = a
		}
	}
}

// WithTranscriber injects a custom transcription client.
func WithTranscriber(t Transcriber) Option {
	return func(s *Scanner) {
		if t != nil {
			s.transcriber = t
		}
	}
}

// WithResyncer injects a custom resync client.
func WithResyncer(r Resyncer) Option {
	return func(s *Scanner) {
		if r != nil {
			s.resyncer = r
		}
	}
}

// WithArbiter injects a custom reference arbiter.
func WithArbiter(a *arbiter.Arbiter) Option {
	return func(s *Scanner) {
		if a != nil {
			s.arb = a
		}
	}
}

// WithJobPollInterval overrides how often background transcription jobs are
// polled for remote status.
func WithJobPollInterval(interval time.Duration) Option {
	return func(s *Scanner) {
		if interval > 0 {
			s.jobPollInterval = interval
		}
	}
}

// New constructs a Scanner with collaborator clients built from the config.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger, opts ...Option) (*Scanner, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("scanner requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	alignClient, err := aligner.New(cfg.Analysis.AlignerBinary,
		aligner.WithTimeout(time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, err
	}
	whisperClient, err := whisperx.New(cfg.Transcriber.URL)
	if err != nil {
		return nil, err
	}
	resyncClient, err := ffsubsync.New(cfg.Resync.Binary,
		ffsubsync.WithTimeout(time.Duration(cfg.Resync.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, err
	}

	scanner := &Scanner{
		cfg:             cfg,
		store:           store,
		logger:          logging.NewComponentLogger(logger, "scanner"),
		arb:             arbiter.New(),
		aligner:         alignClient,
		transcriber:     whisperClient,
		resyncer:        resyncClient,
		jobPollInterval: defaultJobPollInterval,
		shutdown:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(scanner)
	}
	return scanner, nil
}

// Progress returns a snapshot of the current rescan state.
func (s *Scanner) Progress() BatchProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// StartRescan launches a full rescan in the background. A second call while
// one is running fails with ErrScanActive.
func (s *Scanner) StartRescan(ctx context.Context) error {
	runCtx, err := s.beginRescan(ctx)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRescan(runCtx)
	}()
	return nil
}

// Rescan runs a full rescan synchronously.
func (s *Scanner) Rescan(ctx context.Context) error {
	runCtx, err := s.beginRescan(ctx)
	if err != nil {
		return err
	}
	return s.runRescan(runCtx)
}

// Stop cancels any in-flight rescan, halts the cron schedule, and waits for
// background work to settle.
func (s *Scanner) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	cron := s.cronRunner
	s.cronRunner = nil
	s.mu.Unlock()

	if cron != nil {
		cron.Stop()
	}
	if cancel != nil {
		cancel()
	}
	s.shutdownOnce.Do(func() { close(s.shutdown) })
	s.wg.Wait()
}

func (s *Scanner) beginRescan(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, services.Wrap(services.ErrConflict, "scan", "rescan", "rescan already running", ErrScanActive)
	}
	// The run outlives the triggering request (an HTTP handler's context is
	// cancelled as soon as the response is written); only Stop ends it early.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cancel = cancel
	s.progress = BatchProgress{Running: true}
	return runCtx, nil
}

// runRescan walks the library with a worker pool and always clears the
// running flag, even when discovery fails or the context is cancelled.
func (s *Scanner) runRescan(ctx context.Context) error {
	defer s.endRescan()

	movies, err := discoverMovies(s.cfg.Paths.MediaRoot)
	if err != nil {
		s.logger.Error("media discovery failed", logging.Error(err))
		return err
	}
	total := len(movies)
	s.setProgress(BatchProgress{Running: true, Total: total})
	s.logger.Info("rescan started", logging.Int("total", total))

	workers := s.cfg.Workflow.ScanWorkers
	if workers < 1 {
		workers = 1
	}

	work := make(chan string)
	var (
		index int
		wg    sync.WaitGroup
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for movie := range work {
				s.mu.Lock()
				index++
				s.progress = BatchProgress{Running: true, Index: index, Total: total, CurrentMovie: movie}
				s.mu.Unlock()

				if err := s.processMovie(ctx, movie); err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					s.logger.Warn("movie reconciliation failed",
						logging.String(logging.FieldMovie, movie), logging.Error(err))
				}
			}
		}()
	}

feed:
	for _, movie := range movies {
		select {
		case <-ctx.Done():
			break feed
		case work <- movie:
		}
	}
	close(work)
	wg.Wait()

	if ctx.Err() != nil {
		s.logger.Info("rescan cancelled", logging.Int("processed", s.Progress().Index))
		return ctx.Err()
	}

	existing := make(map[string]struct{}, total)
	for _, movie := range movies {
		existing[movie] = struct{}{}
	}
	removed, err := s.store.Prune(ctx, existing)
	if err != nil {
		s.logger.Warn("prune failed", logging.Error(err))
	} else if removed > 0 {
		s.logger.Info("pruned departed movies", logging.Int("removed", removed))
	}

	s.logger.Info("rescan finished", logging.Int("total", total))
	return nil
}

func (s *Scanner) endRescan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.cancel = nil
	s.progress.Running = false
	s.progress.CurrentMovie = ""
}

func (s *Scanner) setProgress(progress BatchProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = progress
}

// processMovie reconciles one movie during a full rescan. Ignored movies
// short-circuit; failures are reported but never clobber stored verdicts.
func (s *Scanner) processMovie(ctx context.Context, movie string) error {
	record, err := s.store.Get(ctx, movie)
	if err != nil {
		return err
	}
	if record != nil && record.Ignored {
		_, err := s.store.SetState(ctx, movie, library.StateIgnored)
		return err
	}
	_, err = s.analyze(ctx, movie, false)
	return err
}
