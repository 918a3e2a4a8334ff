package service

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"consentd/internal/consent/metrics"
)

const defaultFetchAttempts = 3

type options struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	fetchAttempts int
	localRemember bool
	newBackOff    func() backoff.BackOff
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithFetchAttempts bounds challenge fetches, first try included.
func WithFetchAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fetchAttempts = n
		}
	}
}

// WithLocalRemember lets a live local record stand in for the prompt when
// the authorization server did not signal skip.
func WithLocalRemember(enabled bool) Option {
	return func(o *options) { o.localRemember = enabled }
}

// WithBackOff replaces the fetch retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(o *options) {
		if newBackOff != nil {
			o.newBackOff = newBackOff
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:        slog.Default(),
		fetchAttempts: defaultFetchAttempts,
		newBackOff:    defaultBackOff,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}
