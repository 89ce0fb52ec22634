package servicelevels_test

import (
	"sloverify/clock"
	"sloverify/servicelevels"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report", func() {
	resultWith := func(metric string, status servicelevels.Status) servicelevels.CheckResult {
		return servicelevels.CheckResult{
			Metric:    metric,
			Status:    status,
			Compliant: status == servicelevels.StatusSuccess,
		}
	}

	DescribeTable("aggregation and exit code",
		func(availability, latency, errorRate servicelevels.Status, compliant bool, violations []string, exitCode int) {
			report := servicelevels.NewReport(
				"run-1",
				servicelevels.EnvironmentDev,
				"us-west-2",
				clock.ParseTime("2025-02-22T12:15:00Z"),
				[]servicelevels.CheckResult{
					resultWith("availability", availability),
					resultWith("latency", latency),
					resultWith("error_rate", errorRate),
				})
			Expect(report.OverallCompliant).To(Equal(compliant))
			Expect(report.Violations).To(Equal(violations))
			Expect(report.ExitCode()).To(Equal(exitCode))
		},
		Entry("all success",
			servicelevels.StatusSuccess, servicelevels.StatusSuccess, servicelevels.StatusSuccess,
			true, []string{}, 0),
		Entry("single violation",
			servicelevels.StatusSuccess, servicelevels.StatusViolation, servicelevels.StatusSuccess,
			false, []string{"latency"}, 1),
		Entry("no data only",
			servicelevels.StatusNoData, servicelevels.StatusSuccess, servicelevels.StatusSuccess,
			false, []string{}, 1),
		Entry("error only",
			servicelevels.StatusSuccess, servicelevels.StatusSuccess, servicelevels.StatusError,
			false, []string{}, 1),
		Entry("mixed statuses keep violation order",
			servicelevels.StatusViolation, servicelevels.StatusNoData, servicelevels.StatusViolation,
			false, []string{"availability", "error_rate"}, 1),
		Entry("one of each non compliant",
			servicelevels.StatusViolation, servicelevels.StatusError, servicelevels.StatusNoData,
			false, []string{"availability"}, 1),
	)

	It("should keep results in given order", func() {
		report := servicelevels.NewReport("", servicelevels.EnvironmentDev, "us-west-2", clock.ParseTime("2025-02-22T12:15:00Z"),
			[]servicelevels.CheckResult{
				resultWith("availability", servicelevels.StatusSuccess),
				resultWith("latency", servicelevels.StatusSuccess),
				resultWith("error_rate", servicelevels.StatusSuccess),
			})
		Expect(metricNames(report)).To(Equal([]string{"availability", "latency", "error_rate"}))
	})
})
