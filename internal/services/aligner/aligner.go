package aligner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"syncorbit/internal/anchors"
	"syncorbit/internal/services"
)

// ErrEmptySubtitles reports that one of the input tracks parsed to zero
// cues. Callers record the movie as unanalyzable rather than failed.
var ErrEmptySubtitles = errors.New("empty subtitles")

// DefaultTimeout bounds a single alignment run. Embedding-based alignment
// of a feature film takes minutes, not hours.
const DefaultTimeout = 15 * time.Minute

// Runner executes the alignment tool and returns captured stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

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

// Client wraps alignment tool invocations.
type Client struct {
	binary  string
	args    []string
	timeout time.Duration
	run     Runner
}

// New constructs an aligner client. The binary may carry leading arguments
// ("python3 /opt/align.py") separated by whitespace.
func New(binary string, opts ...Option) (*Client, error) {
	fields := strings.Fields(binary)
	if len(fields) == 0 {
		return nil, errors.New("aligner binary required")
	}
	client := &Client{
		binary:  fields[0],
		args:    fields[1:],
		timeout: DefaultTimeout,
		run:     runCommand,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Result is the decoded output of one alignment run.
type Result struct {
	RefPath     string
	TargetPath  string
	RefCount    int
	TargetCount int
	Samples     []anchors.Sample
}

type alignOffset struct {
	RefT    float64 `json:"ref_t"`
	TargetT float64 `json:"target_t"`
	Delta   float64 `json:"delta"`
	Score   float64 `json:"score"`
}

type alignPayload struct {
	Error       string        `json:"error"`
	RefPath     string        `json:"ref_path"`
	TargetPath  string        `json:"target_path"`
	RefCount    int           `json:"ref_count"`
	TargetCount int           `json:"target_count"`
	Offsets     []alignOffset `json:"offsets"`
}

// Analyze runs the alignment tool against a reference and a target track and
// returns the anchor samples it produced.
func (c *Client) Analyze(ctx context.Context, refPath, targetPath string) (Result, error) {
	var result Result
	if refPath == "" || targetPath == "" {
		return result, services.Wrap(services.ErrCollaborator, "aligner", "analyze", "reference and target paths required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.args...), refPath, targetPath)
	stdout, stderr, err := c.run(runCtx, c.binary, args...)
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		return result, services.Wrap(services.ErrCollaborator, "aligner", "analyze", detail, err)
	}

	var payload alignPayload
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &payload); err != nil {
		return result, services.Wrap(services.ErrCollaborator, "aligner", "decode output", "invalid json on stdout", err)
	}
	if payload.Error != "" {
		if payload.Error == "empty_subtitles" {
			return result, services.Wrap(ErrEmptySubtitles, "aligner", "analyze", refPath, nil)
		}
		return result, services.Wrap(services.ErrCollaborator, "aligner", "analyze", payload.Error, nil)
	}

	result.RefPath = payload.RefPath
	result.TargetPath = payload.TargetPath
	result.RefCount = payload.RefCount
	result.TargetCount = payload.TargetCount
	result.Samples = make([]anchors.Sample, 0, len(payload.Offsets))
	for _, off := range payload.Offsets {
		result.Samples = append(result.Samples, anchors.Sample{T: off.RefT, Delta: off.Delta, Score: off.Score})
	}
	return result, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
