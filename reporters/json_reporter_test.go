package reporters_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sloverify/reporters"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("JSON Reporter", func() {
	It("should write report with null values for missing observations", func() {
		path := filepath.Join(GinkgoT().TempDir(), "slo-report.json")
		err := reporters.NewJSONReporter(path).Report(context.Background(), violatingReport())
		Expect(err).NotTo(HaveOccurred())

		content, readErr := os.ReadFile(path)
		Expect(readErr).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(content, &decoded)).To(Succeed())
		Expect(decoded["environment"]).To(Equal("staging"))
		Expect(decoded["overall_compliant"]).To(BeFalse())
		Expect(decoded["violations"]).To(Equal([]any{"latency"}))

		slos := decoded["slos"].([]any)
		Expect(slos).To(HaveLen(3))
		Expect(slos[0].(map[string]any)["value"]).To(Equal(99.99))
		Expect(slos[2].(map[string]any)["value"]).To(BeNil())
		Expect(slos[2].(map[string]any)["status"]).To(Equal("NO_DATA"))
	})

	It("should fail for unwritable path", func() {
		path := filepath.Join(GinkgoT().TempDir(), "missing", "slo-report.json")
		err := reporters.NewJSONReporter(path).Report(context.Background(), violatingReport())
		Expect(err).To(HaveOccurred())
	})
})
