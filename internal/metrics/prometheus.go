package metrics

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus keeps the results in a private registry until [Prometheus.Push].
type Prometheus struct {
	config   Config
	logger   *log.Logger
	registry *prometheus.Registry
	duration *prometheus.GaugeVec
	success  *prometheus.GaugeVec
}

var _ Collector = &Prometheus{}

// NewPrometheus registers:
//   - mcp_smoke_check_duration_seconds{check,status}
//   - mcp_smoke_check_success{check}
func NewPrometheus(cfg Config, logger *log.Logger) *Prometheus {
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mcp_smoke",
		Name:      "check_duration_seconds",
		Help:      "Duration of the last run of each check in seconds.",
	}, []string{"check", "status"})
	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mcp_smoke",
		Name:      "check_success",
		Help:      "Whether the last run of each check succeeded (1) or failed (0).",
	}, []string{"check"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(duration, success)

	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Prometheus{
		config:   cfg,
		logger:   logger,
		registry: registry,
		duration: duration,
		success:  success,
	}
}

// RecordCheck implements Collector.
func (p *Prometheus) RecordCheck(check string, took time.Duration, ok bool) {
	status, value := "error", 0.0
	if ok {
		status, value = "success", 1.0
	}
	p.duration.WithLabelValues(check, status).Set(took.Seconds())
	p.success.WithLabelValues(check).Set(value)
}

// Push implements Collector.
func (p *Prometheus) Push(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	pusher := push.New(p.config.PushgatewayURL, p.config.Job).Gatherer(p.registry)
	if p.config.Instance != "" {
		pusher = pusher.Grouping("instance", p.config.Instance)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()
	if err := pusher.PushContext(ctx); err != nil {
		p.logger.Error("could not push metrics", "url", p.config.PushgatewayURL, "job", p.config.Job, "err", err)
		return nil
	}
	p.logger.Debug("pushed metrics", "url", p.config.PushgatewayURL, "job", p.config.Job)
	return nil
}
