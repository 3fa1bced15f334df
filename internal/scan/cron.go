package scan

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"

	"syncorbit/internal/logging"
)

type cronStopper interface {
	Stop() context.Context
}

// StartSchedule arms the optional cron-driven rescan. A blank expression
// disables scheduling. An already-running rescan makes the tick a no-op.
func (s *Scanner) StartSchedule() error {
	expr := s.cfg.Workflow.RescanCron
	if expr == "" {
		return nil
	}

	runner := cron.New()
	_, err := runner.AddFunc(expr, func() {
		if err := s.Rescan(context.Background()); err != nil {
			if errors.Is(err, ErrScanActive) {
				s.logger.Info("scheduled rescan skipped; one already running")
				return
			}
			s.logger.Error("scheduled rescan failed", logging.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cronRunner = runner
	s.mu.Unlock()

	runner.Start()
	s.logger.Info("rescan schedule armed", logging.String("cron", expr))
	return nil
}
