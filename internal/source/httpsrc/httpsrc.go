// Package httpsrc fetches records from an HTTP endpoint returning a JSON
// dataset.
package httpsrc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leapstack-labs/gridview/internal/source"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// ErrNoURL is returned when the source has no endpoint.
var ErrNoURL = errors.New("dataset URL is empty")

// Defaults for the HTTP client.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 2
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Options configures the HTTP client.
type Options struct {
	Timeout    time.Duration
	RetryCount int
	Headers    map[string]string
	Query      map[string]string
}

// Source loads its collection with a GET request on every fetch.
type Source struct {
	*grid.MemorySource
	url    string
	client *resty.Client
	query  map[string]string
	logger *slog.Logger
}

var _ grid.RecordSource = (*Source)(nil)

// New creates a source for url.
func New(url string, opts Options, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetHeader("Accept", "application/json").
		SetHeaders(opts.Headers).
		SetLogger(restyLogger{logger})

	s := &Source{
		MemorySource: grid.NewMemorySource(),
		url:          url,
		client:       client,
		query:        opts.Query,
		logger:       logger,
	}
	s.SetLoader(s.load)
	return s
}

// URL returns the endpoint.
func (s *Source) URL() string { return s.url }

// Fetch re-requests the endpoint asynchronously.
func (s *Source) Fetch(ctx context.Context) error {
	if s.url == "" {
		return ErrNoURL
	}
	return s.MemorySource.Fetch(ctx)
}

func (s *Source) load(ctx context.Context) ([]grid.Record, error) {
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(s.query).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", s.url, err)
	}
	if resp.IsError() {
		return nil, &StatusError{URL: s.url, Status: resp.Status(), Code: resp.StatusCode()}
	}

	ds, err := source.Decode(source.FormatJSON, resp.Body())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched dataset",
		"url", s.url,
		"records", len(ds.Records),
		"total", ds.Total,
		"duration", time.Since(start))
	return ds.Records, nil
}

// restyLogger forwards resty's printf-style messages to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
