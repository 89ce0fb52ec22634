package clock_test

import (
	"sloverify/clock"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Entities", func() {
	DescribeTable("ParseTime",
		func(value string, expected time.Time) {
			Expect(clock.ParseTime(value)).To(Equal(expected))
		},
		Entry("valid RFC3339", "2025-09-12T20:21:56Z", time.Date(2025, 9, 12, 20, 21, 56, 0, time.UTC)),
		Entry("invalid value falls back to zero time", "yesterday", time.Time{}),
	)
})
