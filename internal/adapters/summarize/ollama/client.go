// Package ollama provides the LLM summarizer adapter
package ollama

import (
	"bytes"
	"context"
	json "encoding/json/v2"
	"io"
	"net/http"
	"time"

	perr "devecho/internal/platform/errors"
	"devecho/internal/platform/logger"
)

const (
	defaultModel   = "llama3.1:8b"
	defaultTimeout = 120 * time.Second
)

// Options configures the Client. BaseURL is required; it points at the
// Ollama server root, not the generate path
type Options struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Ollama generate API. One attempt per Summarize call;
// a failed run is rerun by the next cadence or a manual trigger, never
// retried in place
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New creates a Client with sane defaults. BaseURL must be set; that is
// checked at construction so a misconfigured server fails at boot, not
// at 18:00
func New(o Options) (*Client, error) {
	if o.BaseURL == "" {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "ollama base url is required")
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("ollama"),
	}, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Summarize sends one prompt and returns the model's full response text.
// Transport errors, non-2xx statuses, and malformed bodies all collapse
// into the one unavailable code so callers treat them uniformly
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.opts.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "ollama marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "ollama new request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "ollama generate failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("ollama close body failed")
		}
	}()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("model", c.opts.Model).
		Msg("ollama http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", perr.Newf(perr.ErrorCodeUnavailable, "ollama status %d body %s", resp.StatusCode, string(tail))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "ollama read body failed")
	}
	var out generateResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "ollama malformed response")
	}
	if out.Response == "" {
		return "", perr.Newf(perr.ErrorCodeUnavailable, "ollama empty response")
	}
	return out.Response, nil
}
