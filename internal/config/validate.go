package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	return c.validateResync()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.MediaRoot) == "" {
		return errors.New("paths.media_root must be set")
	}
	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		return errors.New("paths.data_root must be set")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.TimeoutSeconds <= 0 {
		return errors.New("analysis.timeout_seconds must be positive")
	}
	if a.CurveDensity <= 0 {
		return errors.New("analysis.curve_points_per_interval must be positive")
	}
	th := a.Thresholds
	if th.MinAnchors < 1 {
		return errors.New("analysis.thresholds.min_anchors must be >= 1")
	}
	for key, value := range map[string]float64{
		"analysis.thresholds.max_drift_span":    th.MaxDriftSpan,
		"analysis.thresholds.max_avg_offset":    th.MaxAvgOffset,
		"analysis.thresholds.synced_drift_span": th.SyncedDriftSpan,
		"analysis.thresholds.synced_avg_offset": th.SyncedAvgOffset,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	if th.SyncedDriftSpan > th.MaxDriftSpan {
		return errors.New("analysis.thresholds.synced_drift_span must not exceed max_drift_span")
	}
	if th.SyncedAvgOffset > th.MaxAvgOffset {
		return errors.New("analysis.thresholds.synced_avg_offset must not exceed max_avg_offset")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ScanWorkers <= 0 {
		return errors.New("workflow.scan_workers must be positive")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if strings.TrimSpace(c.Transcriber.URL) == "" {
		return errors.New("transcriber.url must be set")
	}
	return nil
}

func (c *Config) validateResync() error {
	if strings.TrimSpace(c.Resync.Binary) == "" {
		return errors.New("resync.binary must be set")
	}
	if c.Resync.TimeoutSeconds <= 0 {
		return errors.New("resync.timeout_seconds must be positive")
	}
	return nil
}
