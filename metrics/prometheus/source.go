package prometheus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sloverify/metrics"
	"strconv"
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// QueryPaths are the read-only endpoints the client posts queries to.
var QueryPaths = []string{"/api/v1/query", "/api/v1/query_range"}

// Source answers statistics queries from a Prometheus server that holds
// CloudWatch metrics as aws_<namespace>_<metric>, both parts snake cased
// (see MetricName), with dimensions as snake cased labels. Series carry no
// statistic suffix; the statistic is applied by the query. Exporters using
// another naming scheme are not supported.
type Source struct {
	client v1.API
}

func NewSource(client v1.API) *Source {
	return &Source{client: client}
}

func NewSourceForURL(promURL string, roundTripper http.RoundTripper) (*Source, error) {
	client, err := api.NewClient(api.Config{
		Address:      promURL,
		RoundTripper: roundTripper,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Prometheus client: %w", err)
	}
	return NewSource(v1.NewAPI(client)), nil
}

func (p *Source) GetStatistics(ctx context.Context, query metrics.StatisticsQuery) ([]metrics.Datapoint, error) {
	promQL, buildErr := ToPromQL(query)
	if buildErr != nil {
		return nil, buildErr
	}

	result, warnings, err := p.client.QueryRange(ctx, promQL, evaluationRange(query))
	if err != nil {
		return nil, fmt.Errorf("prometheus query error for %s: %w", promQL, err)
	}
	if len(warnings) > 0 {
		slog.WarnContext(ctx, "Prometheus returned warnings", slog.String("query", promQL), slog.Any("warnings", warnings))
	}

	matrix, isMatrix := result.(model.Matrix)
	if !isMatrix {
		return nil, fmt.Errorf("%w: expected matrix, got %s", metrics.ErrMalformedResponse, result.Type())
	}

	var datapoints []metrics.Datapoint
	for _, stream := range matrix {
		for _, sample := range stream.Values {
			datapoints = append(datapoints, metrics.Datapoint{
				Timestamp: sample.Timestamp.Time().UTC(),
				Value:     float64(sample.Value),
			})
		}
	}
	return datapoints, nil
}

// evaluationRange places the first evaluation one period after the window
// start. Each point looks back one period, so the points cover (Start, End].
func evaluationRange(query metrics.StatisticsQuery) v1.Range {
	start := query.Start.Add(query.Period)
	if start.After(query.End) {
		start = query.End
	}
	return v1.Range{
		Start: start,
		End:   query.End,
		Step:  query.Period,
	}
}

func ToPromQL(query metrics.StatisticsQuery) (string, error) {
	matchers := make([]string, len(query.Dimensions))
	for i, d := range query.Dimensions {
		matchers[i] = fmt.Sprintf("%s=%s", snakeCase(d.Name), strconv.Quote(d.Value))
	}
	window := model.Duration(query.Period).String()
	series := fmt.Sprintf("%s{%s}[%s]", MetricName(query.Namespace, query.MetricName), strings.Join(matchers, ","), window)

	switch query.Statistic {
	case metrics.StatisticAverage:
		return fmt.Sprintf("avg(avg_over_time(%s))", series), nil
	case metrics.StatisticSum:
		return fmt.Sprintf("sum(sum_over_time(%s))", series), nil
	case metrics.StatisticMinimum:
		return fmt.Sprintf("min(min_over_time(%s))", series), nil
	case metrics.StatisticMaximum:
		return fmt.Sprintf("max(max_over_time(%s))", series), nil
	case metrics.StatisticSampleCount:
		return fmt.Sprintf("sum(count_over_time(%s))", series), nil
	}

	quantile, isPercentile := query.Statistic.Percentile()
	if !isPercentile {
		return "", fmt.Errorf("unsupported statistic %q", query.Statistic)
	}
	return fmt.Sprintf("max(quantile_over_time(%s, %s))", strconv.FormatFloat(quantile, 'g', -1, 64), series), nil
}

// MetricName maps a CloudWatch namespace and metric to a series name:
// AWS/ApplicationELB TargetResponseTime -> aws_application_elb_target_response_time.
func MetricName(namespace string, metricName string) string {
	namespace = strings.TrimPrefix(namespace, "AWS/")
	return "aws_" + snakeCase(namespace) + "_" + snakeCase(metricName)
}

// snakeCase splits on lower-to-upper transitions only, so acronyms stay
// together: ApplicationELB -> application_elb, HTTPCode -> httpcode.
func snakeCase(name string) string {
	var b strings.Builder
	var prev rune
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			if unicode.IsLower(prev) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			if prev != '_' && b.Len() > 0 {
				b.WriteRune('_')
			}
			r = '_'
		}
		prev = r
	}
	return strings.Trim(b.String(), "_")
}
