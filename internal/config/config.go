package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"syncorbit/internal/anchors"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	MediaRoot string `toml:"media_root"`
	DataRoot  string `toml:"data_root"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
	APIToken  string `toml:"api_token"`
}

// Analysis contains configuration for the alignment analyzer and the
// classification thresholds.
type Analysis struct {
	AlignerBinary   string   `toml:"aligner_binary"`
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	CurveDensity    int      `toml:"curve_points_per_interval"`
	TargetLanguages []string `toml:"target_languages"`

	Thresholds anchors.Thresholds `toml:"thresholds"`
}

// Workflow contains configuration for scan orchestration.
type Workflow struct {
	ScanWorkers int    `toml:"scan_workers"`
	RescanCron  string `toml:"rescan_cron"`
}

// Transcriber contains configuration for the WhisperX service.
type Transcriber struct {
	URL      string `toml:"url"`
	Language string `toml:"language"`
}

// Resync contains configuration for the ffsubsync tool.
type Resync struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for SyncOrbit.
//
// Configuration sections by subsystem:
//   - Paths: media root, data root, log dir, API bind address
//   - Analysis: aligner invocation and classification thresholds
//   - Workflow: scan concurrency and optional scheduled rescans
//   - Transcriber: WhisperX service endpoint
//   - Resync: ffsubsync invocation
//   - Logging: log format, level, and retention
type Config struct {
	Paths       Paths       `toml:"paths"`
	Analysis    Analysis    `toml:"analysis"`
	Workflow    Workflow    `toml:"workflow"`
	Transcriber Transcriber `toml:"transcriber"`
	Resync      Resync      `toml:"resync"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/syncorbit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("syncorbit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DatabasePath returns the SQLite database location under the data root.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataRoot, "syncorbit.db")
}

// AnalysisRoot returns the per-movie analysis document directory.
func (c *Config) AnalysisRoot() string {
	return filepath.Join(c.Paths.DataRoot, "analysis")
}

// RefRoot returns the transcription reference directory.
func (c *Config) RefRoot() string {
	return filepath.Join(c.Paths.DataRoot, "ref")
}

// ResyncRoot returns the corrected-track directory.
func (c *Config) ResyncRoot() string {
	return filepath.Join(c.Paths.DataRoot, "resync")
}

// EnsureDirectories creates required directories for daemon operation.
// MediaRoot is treated read-only and never created; external storage may be
// temporarily offline without failing config load.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataRoot, c.Paths.LogDir, c.AnalysisRoot(), c.RefRoot(), c.ResyncRoot()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
