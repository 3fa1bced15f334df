package whisperx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"syncorbit/internal/services"
)

// JobState enumerates the lifecycle of a transcription job.
type JobState string

const (
	StateQueued  JobState = "queued"
	StateRunning JobState = "running"
	StateDone    JobState = "done"
	StateError   JobState = "error"
)

// ReferenceFileName is the normalized reference track name the service
// writes inside the per-movie reference directory.
const ReferenceFileName = "ref.srt"

// DefaultTimeout bounds each HTTP round trip, not the transcription itself.
const DefaultTimeout = 30 * time.Second

// JobStatus is the service's view of one transcription job.
type JobStatus struct {
	State    JobState `json:"state"`
	Progress float64  `json:"progress"`
	Message  string   `json:"message"`
}

// TranscribeRequest asks the service to produce a reference track.
type TranscribeRequest struct {
	VideoPath  string `json:"video_path"`
	OutputPath string `json:"output_path"`
	Language   string `json:"language,omitempty"`
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// Client talks to the WhisperX service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("whisperx base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("whisperx base url: %w", err)
	}
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ReferencePath returns the location the service will write the reference
// track for a movie under the given reference root.
func ReferencePath(refRoot, movie string) string {
	return filepath.Join(refRoot, movie, ReferenceFileName)
}

// Transcribe submits a transcription job and returns its identifier.
func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	if req.VideoPath == "" || req.OutputPath == "" {
		return "", services.Wrap(services.ErrCollaborator, "whisperx", "transcribe", "video and output paths required", nil)
	}
	if req.Language == "" {
		req.Language = "en"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", services.Wrap(services.ErrCollaborator, "whisperx", "transcribe", "encode request", err)
	}
	var resp struct {
		OK    bool   `json:"ok"`
		JobID string `json:"job_id"`
		Error string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/transcribe", body, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		detail := resp.Error
		if detail == "" {
			detail = "transcription rejected"
		}
		return "", services.Wrap(services.ErrCollaborator, "whisperx", "transcribe", detail, nil)
	}
	return resp.JobID, nil
}

// Status reports the current state of a transcription job.
func (c *Client) Status(ctx context.Context, jobID string) (JobStatus, error) {
	var status JobStatus
	if jobID == "" {
		return status, services.Wrap(services.ErrNotFound, "whisperx", "status", "job id required", nil)
	}
	if err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(jobID), nil, &status); err != nil {
		return status, err
	}
	return status, nil
}

// Health probes the service and reports whether the model is loaded.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		OK          bool `json:"ok"`
		ModelLoaded bool `json:"model_loaded"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if !resp.OK || !resp.ModelLoaded {
		return services.Wrap(services.ErrCollaborator, "whisperx", "health", "service not ready", nil)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return services.Wrap(services.ErrCollaborator, "whisperx", "request", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrCollaborator, "whisperx", "request", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return services.Wrap(services.ErrCollaborator, "whisperx", "read response", path, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "whisperx", "request", path, nil)
	case resp.StatusCode >= 400:
		detail := strings.TrimSpace(string(payload))
		if detail == "" {
			detail = resp.Status
		}
		return services.Wrap(services.ErrCollaborator, "whisperx", "request", fmt.Sprintf("%s: %s", path, detail), nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return services.Wrap(services.ErrCollaborator, "whisperx", "decode response", path, err)
	}
	return nil
}
