// Package metrics exports smoke-test results to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultJob is the Pushgateway job name used when none is configured.
const DefaultJob = "mcp-smoke"

// ErrInvalidPushgatewayURL happens when the Pushgateway URL can't be used.
var ErrInvalidPushgatewayURL = errors.New("pushgateway url has invalid format")

// Collector records check results.
type Collector interface {
	RecordCheck(check string, took time.Duration, ok bool)

	// Push sends the recorded results. Failures are logged, and only a
	// cancelled context is returned as an error.
	Push(ctx context.Context) error
}

// Config configures the Pushgateway export.
type Config struct {
	PushgatewayURL string
	Job            string
	Instance       string
	Timeout        time.Duration
}

// New returns a [Nop] collector when no Pushgateway URL is configured.
func New(cfg Config, logger *log.Logger) (Collector, error) {
	if cfg.PushgatewayURL == "" {
		return Nop{}, nil
	}
	u, err := url.Parse(cfg.PushgatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidPushgatewayURL
	}
	if cfg.Job == "" {
		cfg.Job = DefaultJob
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return NewPrometheus(cfg, logger), nil
}

// Nop discards everything.
type Nop struct{}

// RecordCheck implements Collector.
func (Nop) RecordCheck(string, time.Duration, bool) {}

// Push implements Collector.
func (Nop) Push(context.Context) error { return nil }
