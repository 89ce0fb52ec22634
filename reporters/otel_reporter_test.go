package reporters_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sloverify/clock"
	"sloverify/reporters"
	"sort"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	"google.golang.org/protobuf/proto"
)

var _ = Describe("Otel Reporter", func() {
	sut := otelReporterSUT{}

	AfterEach(func() {
		sut.Close()
	})

	It("should build collector url", func() {
		secured, err := reporters.NewOtelUrl(true, "collector:4318")
		Expect(err).NotTo(HaveOccurred())
		Expect(secured.String()).To(Equal("https://collector:4318/v1/metrics"))

		plain, err := reporters.NewOtelUrl(false, "localhost:4318")
		Expect(err).NotTo(HaveOccurred())
		Expect(plain.String()).To(Equal("http://localhost:4318/v1/metrics"))
	})

	It("should export observed values, thresholds and compliance", func() {
		sut.forCollector(http.StatusOK)
		err := sut.reporter.Report(context.Background(), violatingReport())
		Expect(err).NotTo(HaveOccurred())

		received := sut.collector.received()
		Expect(received).To(Equal([]receivedGauge{
			{Name: "slo_verification_availability", Unit: "%", Value: 99.99},
			{Name: "slo_verification_availability_threshold", Unit: "%", Value: 99.95},
			{Name: "slo_verification_check_compliant", Unit: "1", Value: 0},
			{Name: "slo_verification_check_compliant", Unit: "1", Value: 0},
			{Name: "slo_verification_check_compliant", Unit: "1", Value: 1},
			{Name: "slo_verification_compliant", Unit: "1", Value: 0},
			{Name: "slo_verification_latency", Unit: "ms", Value: 600},
			{Name: "slo_verification_latency_threshold", Unit: "ms", Value: 500},
		}))
		Expect(sut.collector.attributes["slo_verification_compliant"]).To(HaveKeyWithValue("environment", "staging"))
		Expect(sut.collector.attributes["slo_verification_compliant"]).To(HaveKeyWithValue("run_id", "0195300c-6f40-7242-8242-424242424242"))
		Expect(sut.collector.attributes["slo_verification_latency"]).To(HaveKeyWithValue("status", "VIOLATION"))
		Expect(sut.collector.timestamps).To(HaveEach(uint64(clock.ParseTime("2025-02-22T12:15:00Z").UnixNano())))
		Expect(sut.collector.headers.Get("Content-Encoding")).To(Equal("gzip"))
		Expect(sut.collector.headers.Get("User-Agent")).To(Equal("verify-slo"))
	})

	It("should fail on rejected export", func() {
		sut.forCollector(http.StatusBadRequest)
		err := sut.reporter.Report(context.Background(), compliantReport())
		Expect(err).To(MatchError(ContainSubstring("unexpected status code: 400")))
	})

	It("should retry unavailable collector", func() {
		sut.forCollector(http.StatusServiceUnavailable, http.StatusOK)
		err := sut.reporter.Report(context.Background(), compliantReport())
		Expect(err).NotTo(HaveOccurred())
		Expect(sut.clock.Sleeps()).To(HaveLen(1))
	})
})

type otelReporterSUT struct {
	collector *fakeCollector
	server    *httptest.Server
	clock     *clock.ManualClock
	reporter  *reporters.OtelReporter
}

func (s *otelReporterSUT) forCollector(statusCodes ...int) {
	s.collector = &fakeCollector{statusCodes: statusCodes, attributes: map[string]map[string]string{}}
	s.server = httptest.NewServer(s.collector)
	s.clock = clock.NewManualClock(clock.ParseTime("2025-02-22T12:15:00Z"))

	otelUrl, err := reporters.NewOtelUrl(false, strings.TrimPrefix(s.server.URL, "http://"))
	Expect(err).NotTo(HaveOccurred())

	s.reporter = reporters.NewOtelReporter(
		&reporters.OtelReporterConfig{
			OtelUrl:   otelUrl,
			Method:    http.MethodPost,
			UserAgent: "verify-slo",
		},
		reporters.DefaultOtelHttpClient(s.clock.Sleep, 3),
		gzip.NewWriter(io.Discard),
		proto.Marshal,
	)
}

func (s *otelReporterSUT) Close() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
}

type receivedGauge struct {
	Name  string
	Unit  string
	Value float64
}

type fakeCollector struct {
	statusCodes []int
	gauges      []receivedGauge
	attributes  map[string]map[string]string
	timestamps  []uint64
	headers     http.Header
	mux         sync.Mutex
}

func (c *fakeCollector) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if len(c.statusCodes) > 0 && c.statusCodes[0] != http.StatusOK {
		statusCode := c.statusCodes[0]
		c.statusCodes = c.statusCodes[1:]
		writer.WriteHeader(statusCode)
		return
	}

	decompressor, gzipErr := gzip.NewReader(req.Body)
	if gzipErr != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	var body bytes.Buffer
	_, _ = io.Copy(&body, decompressor)

	message := &colmetricspb.ExportMetricsServiceRequest{}
	if unmarshalErr := proto.Unmarshal(body.Bytes(), message); unmarshalErr != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}

	c.headers = req.Header.Clone()
	for _, resource := range message.ResourceMetrics {
		for _, scope := range resource.ScopeMetrics {
			for _, metric := range scope.Metrics {
				g, isGauge := metric.Data.(*metricspb.Metric_Gauge)
				if !isGauge {
					continue
				}
				for _, dp := range g.Gauge.DataPoints {
					c.gauges = append(c.gauges, receivedGauge{
						Name:  metric.Name,
						Unit:  metric.Unit,
						Value: dp.GetAsDouble(),
					})
					c.timestamps = append(c.timestamps, dp.TimeUnixNano)
					attrs := map[string]string{}
					for _, att := range dp.Attributes {
						attrs[att.Key] = att.Value.GetStringValue()
					}
					c.attributes[metric.Name] = attrs
				}
			}
		}
	}
	writer.WriteHeader(http.StatusOK)
}

func (c *fakeCollector) received() []receivedGauge {
	c.mux.Lock()
	defer c.mux.Unlock()

	sorted := append([]receivedGauge(nil), c.gauges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Value < sorted[j].Value
	})
	return sorted
}
