// Package gitlab provides a GitLab REST v4 client for activity sync
package gitlab

import (
	"context"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "devecho/internal/platform/errors"
	"devecho/internal/platform/logger"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUA        = "devecho-sync"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client. BaseURL must point at the instance's
// /api/v4 root, self hosted instances included
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal GitLab REST client with retry on transient errors
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("gitlab"),
		sleep: time.Sleep,
	}
}

// Do issues a request with the PRIVATE-TOKEN header and bounded retries
// on transport errors, 429, and 5xx
func (c *Client) Do(ctx context.Context, method, path string) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "gitlab new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		if c.opts.Token != "" {
			req.Header.Set("PRIVATE-TOKEN", c.opts.Token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempts >= c.opts.MaxRetries {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gitlab do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("gitlab transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Msg("gitlab http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			if attempts >= c.opts.MaxRetries {
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "gitlab status %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("status", resp.StatusCode).Msg("gitlab transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown, "gitlab unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

// getPage issues a GET, decodes a bounded body into v, and returns the
// next page number from the x-next-page header (0 means last page)
func (c *Client) getPage(ctx context.Context, path string, v any) (int, error) {
	resp, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("gitlab close body failed")
		}
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return 0, fmt.Errorf("gitlab decode %s: %w", path, err)
	}
	next, _ := strconv.Atoi(resp.Header.Get("x-next-page"))
	return next, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(15 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}
