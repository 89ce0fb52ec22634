package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"sloverify/config"
	"sloverify/servicelevels"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Thresholds", func() {
	It("should override only listed limits", func() {
		thresholds, err := config.LoadThresholds(strings.NewReader(`{"latency": 750, "error_rate": 0.5}`))
		Expect(err).NotTo(HaveOccurred())
		defaults := servicelevels.DefaultThresholds()
		Expect(thresholds.Availability).To(Equal(defaults.Availability))
		Expect(thresholds.Latency.Limit).To(Equal(750.0))
		Expect(thresholds.Latency.Operation).To(Equal(servicelevels.OperationLTE))
		Expect(thresholds.ErrorRate.Limit).To(Equal(0.5))
	})

	DescribeTable("invalid overrides",
		func(content string) {
			_, err := config.LoadThresholds(strings.NewReader(content))
			Expect(errors.Is(err, config.ErrInvalidThresholds)).To(BeTrue())
		},
		Entry("not json", `latency: 750`),
		Entry("unknown metric", `{"cpu": 70}`),
		Entry("availability over 100", `{"availability": 100.5}`),
		Entry("negative latency", `{"latency": -1}`),
		Entry("string limit", `{"latency": "750"}`),
		Entry("empty object", `{}`),
	)

	It("should use defaults without file", func() {
		thresholds, err := config.LoadThresholdsFile("")
		Expect(err).NotTo(HaveOccurred())
		Expect(thresholds).To(Equal(servicelevels.DefaultThresholds()))
	})

	It("should load thresholds file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "thresholds.json")
		Expect(os.WriteFile(path, []byte(`{"availability": 99.9}`), 0o600)).To(Succeed())
		thresholds, err := config.LoadThresholdsFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(thresholds.Availability.Limit).To(Equal(99.9))
	})

	It("should fail for missing file", func() {
		_, err := config.LoadThresholdsFile(filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(HaveOccurred())
	})
})
