package reporters

import (
	"context"
	"fmt"
	"io"
	"sloverify/servicelevels"
	"strings"
	"time"
)

const separatorWidth = 60

// ConsoleReporter prints the human readable summary operators read in CI logs.
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (c *ConsoleReporter) Report(_ context.Context, report *servicelevels.Report) error {
	separator := strings.Repeat("-", separatorWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Verifying SLOs for %s environment...\n", report.Environment)
	fmt.Fprintf(&b, "Timestamp: %s\n", report.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintln(&b, separator)
	for _, result := range report.Results {
		fmt.Fprintf(&b, "%s %s\n", result.Status.Icon(), result.Message)
	}
	fmt.Fprintln(&b, separator)

	if report.OverallCompliant {
		fmt.Fprintln(&b, "🎉 All SLOs are compliant!")
	} else {
		fmt.Fprintf(&b, "🚨 SLO violations detected: %s\n", strings.Join(report.Violations, ", "))
	}

	_, err := io.WriteString(c.out, b.String())
	return err
}

