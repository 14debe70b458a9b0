package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chubajs/diparser/pkg/cache"
	"github.com/chubajs/diparser/pkg/errors"
)

const (
	DefaultBase         = "https://api.assemblyai.com"
	DefaultPollInterval = 3 * time.Second
	DefaultPollTimeout  = 30 * time.Minute
)

// Client is the HTTP client for the transcription provider API.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	artifacts    cache.Cache
}

// ClientOption is a function type that allows to set options for the Client.
type ClientOption func(*Client)

// WithKey sets the API key for the Client.
func WithKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL sets the base URL for the Client.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client for the Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPollInterval sets the delay between status checks.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithPollTimeout bounds how long Poll waits for a terminal state.
func WithPollTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pollTimeout = d
	}
}

// WithArtifactCache caches sentences/paragraphs/subtitles per job id.
// Artifacts of a completed job never change upstream.
func WithArtifactCache(ca cache.Cache) ClientOption {
	return func(c *Client) {
		c.artifacts = ca
	}
}

// NewClient creates a new provider API client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = DefaultPollTimeout
	}
	return c
}

// URL constructs the full URL for the given relative path.
func (c *Client) URL(relPath string) string {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = DefaultBase
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(relPath, "/")
}

func (c *Client) do(ctx context.Context, method, relPath string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(relPath), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

// decodeJSON reads the response and decodes into v, surfacing the provider's
// error body on non-2xx statuses.
func decodeJSON(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected response %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Upload sends raw audio bytes and returns the remote audio reference.
func (c *Client) Upload(ctx context.Context, audio io.Reader) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v2/upload", audio, "application/octet-stream")
	if err != nil {
		return "", errors.WrapCode(errors.CodeUpload, err, "upload failed")
	}
	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", errors.WrapCode(errors.CodeUpload, err, "upload failed")
	}
	if out.UploadURL == "" {
		return "", errors.WithCode(errors.CodeUpload, "upload failed: empty upload_url")
	}
	return out.UploadURL, nil
}

// Submit creates a transcription job for an uploaded audio reference.
func (c *Client) Submit(ctx context.Context, audioURL string, params SubmitParams) (*TranscriptResult, error) {
	payload := map[string]interface{}{
		"audio_url":      audioURL,
		"language_code":  params.LanguageCode,
		"speaker_labels": params.SpeakerLabels,
		"speech_model":   params.SpeechModel,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapCode(errors.CodeSubmit, err, "submit failed")
	}

	resp, err := c.do(ctx, http.MethodPost, "/v2/transcript", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, errors.WrapCode(errors.CodeSubmit, err, "submit failed")
	}
	var tr TranscriptResult
	if err := decodeJSON(resp, &tr); err != nil {
		return nil, errors.WrapCode(errors.CodeSubmit, err, "submit failed")
	}
	if tr.ID == "" {
		return nil, errors.WithCode(errors.CodeSubmit, "submit failed: empty transcript id")
	}
	return &tr, nil
}

// Get fetches the current state of a transcription job.
func (c *Client) Get(ctx context.Context, id string) (*TranscriptResult, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v2/transcript/"+id, nil, "")
	if err != nil {
		return nil, err
	}
	var tr TranscriptResult
	if err := decodeJSON(resp, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Poll fetches the job at a fixed interval until it reaches a terminal
// state. The wait is bounded by the configured poll timeout; the caller's
// context cancels it early.
func (c *Client) Poll(ctx context.Context, id string) (*TranscriptResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		tr, err := c.Get(ctx, id)
		if err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) {
				return nil, errors.WithCodef(errors.CodeTimeout, "transcription %s timed out after %s", id, c.pollTimeout)
			}
			return nil, errors.WrapCode(errors.CodeTranscription, err, "poll failed")
		}

		switch tr.Status {
		case StatusCompleted:
			return tr, nil
		case StatusError:
			return nil, errors.WithCodef(errors.CodeTranscription, "transcription failed: %s", tr.Error)
		}

		select {
		case <-ctx.Done():
			if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, errors.WithCodef(errors.CodeTimeout, "transcription %s timed out after %s", id, c.pollTimeout)
			}
			return nil, errors.WrapCode(errors.CodeTranscription, ctx.Err(), "poll canceled")
		case <-ticker.C:
		}
	}
}

// Sentences fetches the sentence segmentation of a completed job.
func (c *Client) Sentences(ctx context.Context, id string) ([]string, error) {
	return c.segments(ctx, id, "sentences")
}

// Paragraphs fetches the paragraph segmentation of a completed job.
func (c *Client) Paragraphs(ctx context.Context, id string) ([]string, error) {
	return c.segments(ctx, id, "paragraphs")
}

func (c *Client) segments(ctx context.Context, id, kind string) ([]string, error) {
	key := kind + ":" + id
	if c.artifacts != nil {
		if v, ok := c.artifacts.Get(ctx, key); ok {
			if texts, ok := v.([]string); ok {
				return texts, nil
			}
		}
	}

	resp, err := c.do(ctx, http.MethodGet, "/v2/transcript/"+id+"/"+kind, nil, "")
	if err != nil {
		return nil, errors.WrapCode(errors.CodeArtifact, err, "failed to fetch "+kind)
	}
	var out struct {
		Sentences []struct {
			Text string `json:"text"`
		} `json:"sentences"`
		Paragraphs []struct {
			Text string `json:"text"`
		} `json:"paragraphs"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, errors.WrapCode(errors.CodeArtifact, err, "failed to fetch "+kind)
	}

	items := out.Sentences
	if kind == "paragraphs" {
		items = out.Paragraphs
	}
	texts := make([]string, 0, len(items))
	for _, s := range items {
		texts = append(texts, s.Text)
	}

	if c.artifacts != nil {
		_ = c.artifacts.Set(ctx, key, texts, time.Hour)
	}
	return texts, nil
}

// Subtitles fetches the rendered subtitle text for a completed job.
// format must be FormatSRT or FormatVTT.
func (c *Client) Subtitles(ctx context.Context, id, format string) (string, error) {
	if format != FormatSRT && format != FormatVTT {
		return "", errors.WithCodef(errors.CodeValidation, "unsupported subtitle format: %s", format)
	}

	key := "subtitles:" + format + ":" + id
	if c.artifacts != nil {
		if v, ok := c.artifacts.Get(ctx, key); ok {
			if text, ok := v.(string); ok {
				return text, nil
			}
		}
	}

	resp, err := c.do(ctx, http.MethodGet, "/v2/transcript/"+id+"/"+format, nil, "")
	if err != nil {
		return "", errors.WrapCode(errors.CodeArtifact, err, "failed to fetch subtitles")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.WithCodef(errors.CodeArtifact, "failed to fetch subtitles: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.WrapCode(errors.CodeArtifact, err, "failed to fetch subtitles")
	}

	text := string(b)
	if c.artifacts != nil {
		_ = c.artifacts.Set(ctx, key, text, time.Hour)
	}
	return text, nil
}
