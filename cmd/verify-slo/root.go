package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sloverify/clock"
	"sloverify/config"
	slohttp "sloverify/http"
	"sloverify/metrics"
	"sloverify/metrics/cloudwatch"
	"sloverify/metrics/prometheus"
	"sloverify/servicelevels"
	"time"

	"github.com/spf13/cobra"
)

type dependencies struct {
	clock      clock.Clock
	randReader io.Reader
	loadConfig func() (*config.Config, error)
	newSource  func(ctx context.Context, cfg *config.Config, sleep func(d time.Duration)) (metrics.Source, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		clock:      clock.NewSystemClock(),
		randReader: rand.Reader,
		loadConfig: func() (*config.Config, error) {
			return config.Load(".env", ".env.local")
		},
		newSource: newMetricsSource,
	}
}

func newMetricsSource(ctx context.Context, cfg *config.Config, sleep func(d time.Duration)) (metrics.Source, error) {
	switch cfg.Backend {
	case config.BackendPrometheus:
		roundTripper := slohttp.WrapWithRetries(
			http.DefaultTransport,
			slohttp.RetryReadOnlyPosts(prometheus.QueryPaths, slohttp.DefaultRetryStatusCodes...),
			cfg.MaxRetries,
			1.5,
			sleep)
		source, err := prometheus.NewSourceForURL(cfg.PrometheusURL, roundTripper)
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		source, err := cloudwatch.NewSourceForRegion(ctx, cfg.Region, cfg.MaxRetries+1)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
}

// execute runs the command and returns the process exit code: 0 when every
// SLO is compliant, 1 otherwise, including usage errors.
func execute(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer, deps dependencies) int {
	exitCode := 1
	cmd := newRootCmd(deps, stdout, stderr, &exitCode)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	return exitCode
}

func newRootCmd(deps dependencies, stdout io.Writer, stderr io.Writer, exitCode *int) *cobra.Command {
	var (
		environment    string
		region         string
		backend        string
		prometheusURL  string
		thresholdsFile string
		reportFile     string
		otelHost       string
		concurrent     bool
	)

	cmd := &cobra.Command{
		Use:           "verify-slo",
		Short:         "Verify availability, p95 latency and error rate SLOs of a deployed environment",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, envErr := servicelevels.ParseEnvironment(environment)
			if envErr != nil {
				return fmt.Errorf("invalid --environment: %w", envErr)
			}

			cfg, cfgErr := deps.loadConfig()
			if cfgErr != nil {
				return cfgErr
			}

			flags := cmd.Flags()
			if flags.Changed("region") || cfg.Region == "" {
				cfg.Region = region
			}
			if flags.Changed("backend") {
				cfg.Backend = backend
			}
			if flags.Changed("prometheus-url") {
				cfg.PrometheusURL = prometheusURL
			}
			if flags.Changed("thresholds") {
				cfg.ThresholdsFile = thresholdsFile
			}
			if flags.Changed("report-file") {
				cfg.ReportFile = reportFile
			}
			if flags.Changed("otel-host") {
				cfg.Otel.Host = otelHost
			}
			if flags.Changed("concurrent") {
				cfg.ConcurrentChecks = concurrent
			}
			if validationErr := cfg.Validate(); validationErr != nil {
				return validationErr
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

			app, appErr := NewApp(cmd.Context(), cfg, env, deps, stdout)
			if appErr != nil {
				return appErr
			}
			*exitCode = app.Run(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringVar(&environment, "environment", "", "Environment to verify (dev|staging|prod)")
	cmd.Flags().StringVar(&region, "region", "us-west-2", "Metrics backend region")
	cmd.Flags().StringVar(&backend, "backend", config.BackendCloudWatch, "Metrics backend (cloudwatch|prometheus)")
	cmd.Flags().StringVar(&prometheusURL, "prometheus-url", "", "Prometheus address when backend is prometheus")
	cmd.Flags().StringVar(&thresholdsFile, "thresholds", "", "JSON file overriding SLO limits")
	cmd.Flags().StringVar(&reportFile, "report-file", "", "Write the report as JSON to this file")
	cmd.Flags().StringVar(&otelHost, "otel-host", "", "Export results to this OTLP/HTTP collector host")
	cmd.Flags().BoolVar(&concurrent, "concurrent", false, "Query the metrics backend for all checks in parallel")
	_ = cmd.MarkFlagRequired("environment")
	return cmd
}
