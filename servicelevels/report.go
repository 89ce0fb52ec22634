package servicelevels

import "time"

type Report struct {
	RunID            string        `json:"run_id,omitempty"`
	Environment      Environment   `json:"environment"`
	Region           string        `json:"region"`
	Timestamp        time.Time     `json:"timestamp"`
	Results          []CheckResult `json:"slos"`
	OverallCompliant bool          `json:"overall_compliant"`
	// Violations lists only VIOLATION results. NO_DATA and ERROR make the
	// report non-compliant without being listed here.
	Violations []string `json:"violations"`
}

func NewReport(runID string, environment Environment, region string, timestamp time.Time, results []CheckResult) *Report {
	report := &Report{
		RunID:            runID,
		Environment:      environment,
		Region:           region,
		Timestamp:        timestamp,
		Results:          results,
		OverallCompliant: true,
		Violations:       []string{},
	}
	for _, result := range results {
		if result.Compliant {
			continue
		}
		report.OverallCompliant = false
		if result.Status == StatusViolation {
			report.Violations = append(report.Violations, result.Metric)
		}
	}
	return report
}

func (r *Report) ExitCode() int {
	if r.OverallCompliant {
		return 0
	}
	return 1
}
