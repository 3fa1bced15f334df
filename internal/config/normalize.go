package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeWorkflow()
	c.normalizeTranscriber()
	c.normalizeResync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaRoot, err = expandPath(c.Paths.MediaRoot); err != nil {
		return fmt.Errorf("paths.media_root: %w", err)
	}
	if c.Paths.DataRoot, err = expandPath(c.Paths.DataRoot); err != nil {
		return fmt.Errorf("paths.data_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.AlignerBinary = strings.TrimSpace(c.Analysis.AlignerBinary)
	if c.Analysis.AlignerBinary == "" {
		c.Analysis.AlignerBinary = defaultAlignerBinary
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		c.Analysis.TimeoutSeconds = defaultAlignerTimeout
	}
	if c.Analysis.CurveDensity <= 0 {
		c.Analysis.CurveDensity = defaultCurveDensity
	}

	langs := make([]string, 0, len(c.Analysis.TargetLanguages))
	seen := make(map[string]struct{}, len(c.Analysis.TargetLanguages))
	for _, lang := range c.Analysis.TargetLanguages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = defaultTargetLanguages()
	}
	c.Analysis.TargetLanguages = langs
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ScanWorkers <= 0 {
		c.Workflow.ScanWorkers = defaultScanWorkers
	}
	c.Workflow.RescanCron = strings.TrimSpace(c.Workflow.RescanCron)
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.URL = strings.TrimRight(strings.TrimSpace(c.Transcriber.URL), "/")
	if c.Transcriber.URL == "" {
		c.Transcriber.URL = defaultTranscriberURL
	}
	c.Transcriber.Language = strings.ToLower(strings.TrimSpace(c.Transcriber.Language))
	if c.Transcriber.Language == "" {
		c.Transcriber.Language = defaultTranscriberLang
	}
}

func (c *Config) normalizeResync() {
	c.Resync.Binary = strings.TrimSpace(c.Resync.Binary)
	if c.Resync.Binary == "" {
		c.Resync.Binary = defaultResyncBinary
	}
	if c.Resync.TimeoutSeconds <= 0 {
		c.Resync.TimeoutSeconds = defaultResyncTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
