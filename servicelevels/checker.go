package servicelevels

import (
	"context"
	"log/slog"
	"sloverify/clock"
	"sloverify/metrics"
	"sloverify/uuid"

	"golang.org/x/sync/errgroup"
)

type CheckerConfig struct {
	Environment Environment
	Region      string
	Product     string
	Thresholds  Thresholds
	// Concurrent issues the checks in parallel. Result order stays fixed.
	Concurrent bool
}

type Checker struct {
	cfg     CheckerConfig
	checks  []*Check
	nowFunc clock.NowFunc
	runID   uuid.V7StringGenerator
}

func NewChecker(cfg CheckerConfig, source metrics.Source, nowFunc clock.NowFunc, runID uuid.V7StringGenerator) *Checker {
	resources := Resources{
		Product:     cfg.Product,
		Environment: cfg.Environment,
	}
	return &Checker{
		cfg: cfg,
		checks: []*Check{
			NewAvailabilityCheck(source, resources, cfg.Thresholds.Availability),
			NewLatencyCheck(source, resources, cfg.Thresholds.Latency),
			NewErrorRateCheck(source, resources, cfg.Thresholds.ErrorRate),
		},
		nowFunc: nowFunc,
		runID:   runID,
	}
}

func (c *Checker) Run(ctx context.Context) *Report {
	now := c.nowFunc()
	window := NewWindow(now)

	results := make([]CheckResult, len(c.checks))
	if c.cfg.Concurrent {
		var g errgroup.Group
		for i, check := range c.checks {
			g.Go(func() error {
				results[i] = check.Run(ctx, window)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, check := range c.checks {
			results[i] = check.Run(ctx, window)
		}
	}

	for _, result := range results {
		if result.Status == StatusError {
			slog.WarnContext(ctx, "SLO check failed", slog.String("metric", result.Metric), slog.String("message", result.Message))
			continue
		}
		slog.DebugContext(ctx, "SLO check finished", slog.String("metric", result.Metric), slog.String("status", string(result.Status)))
	}

	var runID string
	if c.runID != nil {
		id, idErr := c.runID(now)
		if idErr != nil {
			slog.ErrorContext(ctx, "Failed to generate run id", slog.Any("error", idErr))
		}
		runID = id
	}
	return NewReport(runID, c.cfg.Environment, c.cfg.Region, now, results)
}
