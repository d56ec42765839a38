// Package usercount fetches the dashboard's total user count.
//
// The count is advisory. Every failure collapses to a fallback value so
// callers never have to handle an error.
package usercount

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultFallback is shown when the real count cannot be obtained.
const DefaultFallback = 145

// Fetcher returns the current user count.
type Fetcher interface {
	Fetch(ctx context.Context) int
}

// Counter is a source that can fail, such as a database repository.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Option configures a Client.
type Option func(*Client)

// WithFallback overrides the fallback count.
func WithFallback(n int) Option {
	return func(c *Client) {
		c.fallback = n
	}
}

// WithHTTPClient sets the HTTP client used for remote counts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client fetches the count from an HTTP endpoint returning {"count": n}.
type Client struct {
	url      string
	http     *http.Client
	timeout  time.Duration
	fallback int
	logger   zerolog.Logger
}

// NewClient creates a Client for url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:      url,
		http:     http.DefaultClient,
		timeout:  3 * time.Second,
		fallback: DefaultFallback,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type countResponse struct {
	Count int `json:"count"`
}

// Fetch returns the remote count, or the fallback on any failure.
func (c *Client) Fetch(ctx context.Context) int {
	n, err := c.fetch(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", c.url).Int("fallback", c.fallback).Msg("user count unavailable")
		return c.fallback
	}
	return n
}

func (c *Client) fetch(ctx context.Context) (int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch user count: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body countResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode user count: %w", err)
	}
	if body.Count <= 0 {
		return 0, fmt.Errorf("non-positive user count %d", body.Count)
	}
	return body.Count, nil
}

// FetchAsync runs f in the background and delivers one result on the
// returned channel.
func FetchAsync(ctx context.Context, f Fetcher) <-chan int {
	ch := make(chan int, 1)
	go func() {
		ch <- f.Fetch(ctx)
		close(ch)
	}()
	return ch
}

// Local adapts a Counter into a Fetcher with the same fallback rules.
type Local struct {
	counter  Counter
	fallback int
	logger   zerolog.Logger
}

// FromCounter wraps counter. Only WithFallback and WithLogger apply.
func FromCounter(counter Counter, opts ...Option) *Local {
	c := NewClient("", opts...)
	return &Local{counter: counter, fallback: c.fallback, logger: c.logger}
}

// Fetch returns the counter's value, or the fallback on error or a
// non-positive count.
func (l *Local) Fetch(ctx context.Context) int {
	if l.counter == nil {
		return l.fallback
	}
	n, err := l.counter.Count(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("failed to count users")
		return l.fallback
	}
	if n <= 0 {
		return l.fallback
	}
	return n
}

// Static always returns the same count.
type Static int

// Fetch returns the static count.
func (s Static) Fetch(context.Context) int {
	return int(s)
}
