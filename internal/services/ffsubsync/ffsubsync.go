package ffsubsync

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"syncorbit/internal/services"
)

// DefaultTimeout bounds a single resync run.
const DefaultTimeout = 20 * time.Minute

// SyncedSuffix is the filename suffix of a corrected track inside the
// resync directory. The scanner discovers candidates by this suffix.
const SyncedSuffix = ".synced.srt"

var (
	offsetRe = regexp.MustCompile(`offset seconds:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	scoreRe  = regexp.MustCompile(`score:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
)

// Runner executes the tool and returns combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(runner Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.run = runner
		}
	}
}

// WithTimeout overrides the per-invocation timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps ffsubsync invocations.
type Client struct {
	binary  string
	timeout time.Duration
	run     Runner
}

// New constructs an ffsubsync client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffsubsync binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: DefaultTimeout,
		run:     runCombined,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Result describes one completed resync run.
type Result struct {
	OutputPath string
	Offset     float64
	Score      float64
}

// OutputPath returns the corrected-track location for a subtitle inside the
// given resync root.
func OutputPath(resyncRoot, movie, subtitlePath string) string {
	base := strings.TrimSuffix(filepath.Base(subtitlePath), ".srt")
	return filepath.Join(resyncRoot, movie, base+SyncedSuffix)
}

// Sync aligns subtitlePath against videoPath and writes the corrected track
// to outputPath.
func (c *Client) Sync(ctx context.Context, videoPath, subtitlePath, outputPath string) (Result, error) {
	var result Result
	if videoPath == "" || subtitlePath == "" || outputPath == "" {
		return result, services.Wrap(services.ErrCollaborator, "ffsubsync", "sync", "video, subtitle and output paths required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return result, services.Wrap(services.ErrCollaborator, "ffsubsync", "sync", "ensure output dir", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{videoPath, "-i", subtitlePath, "-o", outputPath}
	output, err := c.run(runCtx, c.binary, args...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return result, services.Wrap(services.ErrCollaborator, "ffsubsync", "sync", detail, err)
	}

	result.OutputPath = outputPath
	result.Offset = parseFloat(offsetRe, output)
	result.Score = parseFloat(scoreRe, output)
	return result, nil
}

func parseFloat(re *regexp.Regexp, output []byte) float64 {
	match := re.FindSubmatch(output)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(string(match[1]), 64)
	if err != nil {
		return 0
	}
	return value
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	err := cmd.Run()
	return combined.Bytes(), err
}
