package reporters

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/url"
	slohttp "sloverify/http"
	"sloverify/servicelevels"
	"time"

	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	"google.golang.org/protobuf/proto"
)

type OtelUrl string

func NewOtelUrl(secure bool, host string) (OtelUrl, error) {
	scheme := "https"
	if !secure {
		scheme = "http"
	}
	otelUrl, parseErr := url.ParseRequestURI(fmt.Sprintf("%s://%s/v1/metrics", scheme, host))
	if parseErr != nil {
		return "", parseErr
	}

	return OtelUrl(otelUrl.String()), nil
}

func (o *OtelUrl) String() string {
	return string(*o)
}

type OtelReporterConfig struct {
	OtelUrl   OtelUrl
	Method    string
	UserAgent string
}

// OtelReporter pushes a verification report to an OTLP/HTTP collector as gauges.
type OtelReporter struct {
	client       *http.Client
	cfg          *OtelReporterConfig
	protoMarshal func(proto.Message) ([]byte, error)
	gzipWriter   *gzip.Writer
}

func NewOtelReporter(cfg *OtelReporterConfig, client *http.Client, gzipWriter *gzip.Writer, protoMarshal func(proto.Message) ([]byte, error)) *OtelReporter {
	return &OtelReporter{
		client:       client,
		cfg:          cfg,
		protoMarshal: protoMarshal,
		gzipWriter:   gzipWriter,
	}
}

func (o *OtelReporter) Report(ctx context.Context, report *servicelevels.Report) error {
	message := &colmetricspb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{
			{
				ScopeMetrics: []*metricspb.ScopeMetrics{
					{
						Metrics: toMetrics(report),
					},
				},
			},
		},
	}

	marshalledBytes, marshalErr := o.protoMarshal(message)
	if marshalErr != nil {
		return marshalErr
	}

	bodyReader := bytes.NewReader(compressGzip(o.gzipWriter, marshalledBytes))
	postReq, reqErr := http.NewRequestWithContext(
		ctx,
		o.cfg.Method,
		o.cfg.OtelUrl.String(),
		bodyReader)
	if reqErr != nil {
		return reqErr
	}

	postReq.Header.Set("User-Agent", o.cfg.UserAgent)
	postReq.Header.Set("Content-Encoding", "gzip")
	postReq.Header.Set("Content-Type", "application/x-protobuf")

	response, respErr := o.client.Do(postReq)
	if respErr != nil {
		return respErr
	}
	defer response.Body.Close()

	if sc := response.StatusCode; sc >= 200 && sc <= 299 {
		return nil
	}
	return fmt.Errorf("received unexpected status code: %d for req %s %s", response.StatusCode, postReq.Method, postReq.URL.String())
}

func toMetrics(report *servicelevels.Report) []*metricspb.Metric {
	timestamp := uint64(report.Timestamp.UnixNano())
	reportAttributes := []*commonpb.KeyValue{
		StringAttribute("environment", string(report.Environment)),
		StringAttribute("region", report.Region),
		StringAttribute("run_id", report.RunID),
	}

	var metrics []*metricspb.Metric
	for _, result := range report.Results {
		if result.Value == nil {
			continue
		}
		attributes := append([]*commonpb.KeyValue{
			StringAttribute("status", string(result.Status)),
			BoolAttribute("compliant", result.Compliant),
			StringAttribute("operation", string(result.Threshold.Operation)),
		}, reportAttributes...)

		metrics = append(metrics,
			gauge(fmt.Sprintf("slo_verification_%s", result.Metric), result.Threshold.Unit, timestamp, *result.Value, attributes),
			gauge(fmt.Sprintf("slo_verification_%s_threshold", result.Metric), result.Threshold.Unit, timestamp, result.Threshold.Limit, attributes),
		)
	}

	for _, result := range report.Results {
		attributes := append([]*commonpb.KeyValue{
			StringAttribute("metric", result.Metric),
			StringAttribute("status", string(result.Status)),
		}, reportAttributes...)
		metrics = append(metrics, gauge("slo_verification_check_compliant", "1", timestamp, boolToFloat(result.Compliant), attributes))
	}

	metrics = append(metrics, gauge("slo_verification_compliant", "1", timestamp, boolToFloat(report.OverallCompliant), reportAttributes))
	return metrics
}

func gauge(name string, unit string, timestamp uint64, value float64, attributes []*commonpb.KeyValue) *metricspb.Metric {
	return &metricspb.Metric{
		Name: name,
		Unit: unit,
		Data: &metricspb.Metric_Gauge{
			Gauge: &metricspb.Gauge{
				DataPoints: []*metricspb.NumberDataPoint{
					{
						Attributes:   attributes,
						TimeUnixNano: timestamp,
						Value: &metricspb.NumberDataPoint_AsDouble{
							AsDouble: value,
						},
					},
				},
			},
		},
	}
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

func StringAttribute(key string, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key: key,
		Value: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_StringValue{StringValue: value},
		},
	}
}

func BoolAttribute(key string, value bool) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key: key,
		Value: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_BoolValue{BoolValue: value},
		},
	}
}

func DefaultOtelHttpClient(sleep func(t time.Duration), maxRetries int) *http.Client {
	transport := &http.Transport{}
	roundTripper := slohttp.WrapWithRetries(
		transport,
		slohttp.RetryStatusCodes(slohttp.DefaultRetryStatusCodes...),
		maxRetries,
		1.2,
		sleep)

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: roundTripper,
	}
	return client
}

func compressGzip(gzip *gzip.Writer, in []byte) []byte {
	var compressedBytes bytes.Buffer
	gzip.Reset(&compressedBytes)
	_, _ = gzip.Write(in)
	_ = gzip.Close()
	return compressedBytes.Bytes()
}
