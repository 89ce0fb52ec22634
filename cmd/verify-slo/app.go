package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sloverify/config"
	"sloverify/metrics"
	"sloverify/reporters"
	"sloverify/servicelevels"
	"sloverify/uuid"

	"google.golang.org/protobuf/proto"
)

type App struct {
	checker   *servicelevels.Checker
	reporters []reporters.Reporter
}

func NewApp(ctx context.Context, cfg *config.Config, env servicelevels.Environment, deps dependencies, stdout io.Writer) (*App, error) {
	thresholds, thresholdsErr := config.LoadThresholdsFile(cfg.ThresholdsFile)
	if thresholdsErr != nil {
		return nil, fmt.Errorf("loading thresholds: %w", thresholdsErr)
	}

	source, sourceErr := deps.newSource(ctx, cfg, deps.clock.Sleep)
	if sourceErr != nil {
		return nil, sourceErr
	}

	checker := servicelevels.NewChecker(
		servicelevels.CheckerConfig{
			Environment: env,
			Region:      cfg.Region,
			Product:     cfg.Product,
			Thresholds:  thresholds,
			Concurrent:  cfg.ConcurrentChecks,
		},
		metrics.WithTimeout(source, cfg.QueryTimeout),
		deps.clock.Now,
		uuid.NewV7(deps.randReader),
	)

	reportTo := []reporters.Reporter{reporters.NewConsoleReporter(stdout)}
	if cfg.ReportFile != "" {
		reportTo = append(reportTo, reporters.NewJSONReporter(cfg.ReportFile))
	}
	if cfg.Otel.Host != "" {
		otelUrl, urlErr := reporters.NewOtelUrl(cfg.Otel.Secure, cfg.Otel.Host)
		if urlErr != nil {
			return nil, urlErr
		}
		reportTo = append(reportTo, reporters.NewOtelReporter(
			&reporters.OtelReporterConfig{
				OtelUrl:   otelUrl,
				Method:    http.MethodPost,
				UserAgent: "verify-slo",
			},
			reporters.DefaultOtelHttpClient(deps.clock.Sleep, cfg.MaxRetries),
			gzip.NewWriter(io.Discard),
			proto.Marshal,
		))
	}

	return &App{
		checker:   checker,
		reporters: reportTo,
	}, nil
}

func (a *App) Run(ctx context.Context) int {
	report := a.checker.Run(ctx)
	reporters.Publish(ctx, report, a.reporters...)
	slog.InfoContext(ctx, "Finished SLO verification",
		slog.String("environment", string(report.Environment)),
		slog.String("run_id", report.RunID),
		slog.Bool("compliant", report.OverallCompliant))
	return report.ExitCode()
}
