package reporters

import (
	"context"
	"log/slog"
	"sloverify/servicelevels"
)

type Reporter interface {
	Report(ctx context.Context, report *servicelevels.Report) error
}

// Publish hands the report to every reporter. A failing reporter is logged
// and does not stop the others.
func Publish(ctx context.Context, report *servicelevels.Report, reporters ...Reporter) {
	for _, reporter := range reporters {
		if reportErr := reporter.Report(ctx, report); reportErr != nil {
			slog.ErrorContext(ctx, "Failed to publish SLO report", slog.Any("error", reportErr))
		}
	}
}
