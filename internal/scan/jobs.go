package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"syncorbit/internal/library"
	"syncorbit/internal/logging"
	"syncorbit/internal/services"
	"syncorbit/internal/services/whisperx"
)

// defaultJobPollInterval is how often a dispatched transcription job polls
// the remote service for status.
const defaultJobPollInterval = 5 * time.Second

// jobPollBudget caps supervision of one job. Transcribing a feature film on
// GPU stays well inside this.
const jobPollBudget = 4 * time.Hour

// TranscriptionJob is the supervised view of one fire-and-forget
// transcription request. Jobs are not cancellable once dispatched.
type TranscriptionJob struct {
	ID        string            `json:"id"`
	Movie     string            `json:"movie"`
	State     whisperx.JobState `json:"state"`
	Progress  float64           `json:"progress"`
	Message   string            `json:"message,omitempty"`
	RemoteID  string            `json:"remote_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*TranscriptionJob
}

func (r *jobRegistry) create(movie string) TranscriptionJob {
	now := time.Now().UTC()
	job := TranscriptionJob{
		ID:        uuid.NewString(),
		Movie:     movie,
		State:     whisperx.StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	if r.jobs == nil {
		r.jobs = make(map[string]*TranscriptionJob)
	}
	stored := job
	r.jobs[job.ID] = &stored
	r.mu.Unlock()
	return job
}

func (r *jobRegistry) update(id string, mutate func(*TranscriptionJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	mutate(job)
	job.UpdatedAt = time.Now().UTC()
}

func (r *jobRegistry) get(id string) (TranscriptionJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return TranscriptionJob{}, false
	}
	return *job, true
}

func (r *jobRegistry) list() []TranscriptionJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]TranscriptionJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs
}

// RequestTranscription dispatches a background transcription job for the
// movie's video file and returns immediately with the job handle. The new
// reference is picked up by a later scan through its fresher mtime.
func (s *Scanner) RequestTranscription(ctx context.Context, movie string) (TranscriptionJob, error) {
	item, err := inspectItem(s.cfg.Paths.MediaRoot, movie, s.cfg.Analysis.TargetLanguages)
	if err != nil {
		return TranscriptionJob{}, err
	}
	if item.VideoPath == "" {
		return TranscriptionJob{}, services.Wrap(services.ErrIneligible, "scan", "transcribe",
			movie+" has no video file", nil)
	}

	job := s.jobs.create(movie)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.superviseTranscription(job.ID, movie, item.VideoPath)
	}()
	return job, nil
}

// TranscriptionJobs lists dispatched jobs, newest first.
func (s *Scanner) TranscriptionJobs() []TranscriptionJob {
	return s.jobs.list()
}

// TranscriptionJob returns one dispatched job by id.
func (s *Scanner) TranscriptionJob(id string) (TranscriptionJob, error) {
	job, ok := s.jobs.get(id)
	if !ok {
		return TranscriptionJob{}, services.Wrap(services.ErrNotFound, "scan", "job status", id, nil)
	}
	return job, nil
}

// superviseTranscription runs detached from the caller: the job must remain
// observable after the originating request has returned.
func (s *Scanner) superviseTranscription(jobID, movie, videoPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), jobPollBudget)
	defer cancel()

	logger := logging.NewComponentLogger(s.logger, "transcription")
	outputPath := whisperx.ReferencePath(s.cfg.RefRoot(), movie)

	remoteID, err := s.transcriber.Transcribe(ctx, whisperx.TranscribeRequest{
		VideoPath:  videoPath,
		OutputPath: outputPath,
		Language:   s.cfg.Transcriber.Language,
	})
	if err != nil {
		s.jobs.update(jobID, func(job *TranscriptionJob) {
			job.State = whisperx.StateError
			job.Message = err.Error()
		})
		logger.Warn("transcription dispatch failed",
			logging.String(logging.FieldMovie, movie), logging.Error(err))
		return
	}

	s.jobs.update(jobID, func(job *TranscriptionJob) {
		job.State = whisperx.StateRunning
		job.RemoteID = remoteID
	})
	logger.Info("transcription dispatched",
		logging.String(logging.FieldMovie, movie),
		logging.String(logging.FieldJobID, jobID))

	if remoteID == "" {
		// Service completed synchronously; the reference is already on disk.
		s.finishTranscription(ctx, jobID, movie)
		return
	}

	ticker := time.NewTicker(s.jobPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdown:
			// The remote job keeps running; only supervision ends here.
			s.jobs.update(jobID, func(job *TranscriptionJob) {
				job.Message = "supervision stopped during shutdown"
			})
			return
		case <-ctx.Done():
			s.jobs.update(jobID, func(job *TranscriptionJob) {
				job.State = whisperx.StateError
				job.Message = "supervision window elapsed"
			})
			return
		case <-ticker.C:
		}

		status, err := s.transcriber.Status(ctx, remoteID)
		if err != nil {
			s.jobs.update(jobID, func(job *TranscriptionJob) {
				job.Message = err.Error()
			})
			continue
		}
		s.jobs.update(jobID, func(job *TranscriptionJob) {
			job.State = status.State
			job.Progress = status.Progress
			job.Message = status.Message
		})
		switch status.State {
		case whisperx.StateDone:
			s.finishTranscription(ctx, jobID, movie)
			return
		case whisperx.StateError:
			logger.Warn("transcription failed",
				logging.String(logging.FieldMovie, movie),
				logging.String(logging.FieldJobID, jobID),
				logging.String("message", status.Message))
			return
		}
	}
}

func (s *Scanner) finishTranscription(ctx context.Context, jobID, movie string) {
	s.jobs.update(jobID, func(job *TranscriptionJob) {
		job.State = whisperx.StateDone
		job.Progress = 1
	})
	if _, err := s.store.Upsert(ctx, movie, func(record *library.MovieRecord) {
		record.HasWhisper = true
	}); err != nil {
		s.logger.Warn("transcription flag update failed",
			logging.String(logging.FieldMovie, movie), logging.Error(err))
	}
	s.logger.Info("transcription complete",
		logging.String(logging.FieldMovie, movie),
		logging.String(logging.FieldJobID, jobID))
}
