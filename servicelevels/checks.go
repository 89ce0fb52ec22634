package servicelevels

import (
	"context"
	"sloverify/metrics"
	"time"
)

const (
	LookbackWindow    = 15 * time.Minute
	AggregationPeriod = 300 * time.Second
)

const DefaultProduct = "dotnet-migration"

const (
	namespaceSynthetics = "AWS/Synthetics"
	namespaceELB        = "AWS/ApplicationELB"
)

type Window struct {
	Start  time.Time
	End    time.Time
	Period time.Duration
}

func NewWindow(end time.Time) Window {
	return Window{
		Start:  end.Add(-LookbackWindow),
		End:    end,
		Period: AggregationPeriod,
	}
}

// Resources derives backend resource names from <product>-<environment>-<suffix>.
type Resources struct {
	Product     string
	Environment Environment
}

func (r Resources) name(suffix string) string {
	product := r.Product
	if product == "" {
		product = DefaultProduct
	}
	return product + "-" + string(r.Environment) + "-" + suffix
}

func (r Resources) CanaryName() string {
	return r.name("availability-canary")
}

func (r Resources) LoadBalancerName() string {
	return r.name("alb")
}

func NewAvailabilityCheck(source metrics.Source, resources Resources, threshold Threshold) *Check {
	return &Check{
		Threshold:     threshold,
		Label:         "Availability",
		Precision:     2,
		NoDataMessage: "No availability data available",
		ErrorSubject:  "availability",
		Observe: func(ctx context.Context, window Window) Observation {
			datapoints, err := source.GetStatistics(ctx, metrics.StatisticsQuery{
				Namespace:  namespaceSynthetics,
				MetricName: "SuccessPercent",
				Dimensions: []metrics.Dimension{{Name: "CanaryName", Value: resources.CanaryName()}},
				Start:      window.Start,
				End:        window.End,
				Period:     window.Period,
				Statistic:  metrics.StatisticAverage,
			})
			if err != nil {
				return Failed(err)
			}
			latest, found := metrics.Latest(datapoints)
			if !found {
				return NoData()
			}
			return Observed(latest.Value)
		},
	}
}

func NewLatencyCheck(source metrics.Source, resources Resources, threshold Threshold) *Check {
	return &Check{
		Threshold:     threshold,
		Label:         "P95 Latency",
		Precision:     2,
		NoDataMessage: "No latency data available",
		ErrorSubject:  "latency",
		Observe: func(ctx context.Context, window Window) Observation {
			datapoints, err := source.GetStatistics(ctx, metrics.StatisticsQuery{
				Namespace:  namespaceELB,
				MetricName: "TargetResponseTime",
				Dimensions: []metrics.Dimension{{Name: "LoadBalancer", Value: resources.LoadBalancerName()}},
				Start:      window.Start,
				End:        window.End,
				Period:     window.Period,
				Statistic:  metrics.PercentileStatistic(95),
			})
			if err != nil {
				return Failed(err)
			}
			latest, found := metrics.Latest(datapoints)
			if !found {
				return NoData()
			}
			// TargetResponseTime is reported in seconds.
			return Observed(latest.Value * 1000)
		},
	}
}

var statusCountMetrics = []string{
	"HTTPCode_Target_2XX_Count",
	"HTTPCode_Target_4XX_Count",
	"HTTPCode_Target_5XX_Count",
}

func NewErrorRateCheck(source metrics.Source, resources Resources, threshold Threshold) *Check {
	return &Check{
		Threshold:     threshold,
		Label:         "Error Rate",
		Precision:     3,
		NoDataMessage: "No request data available",
		ErrorSubject:  "error rate",
		Observe: func(ctx context.Context, window Window) Observation {
			counts := make([]float64, len(statusCountMetrics))
			for i, metricName := range statusCountMetrics {
				datapoints, err := source.GetStatistics(ctx, metrics.StatisticsQuery{
					Namespace:  namespaceELB,
					MetricName: metricName,
					Dimensions: []metrics.Dimension{{Name: "LoadBalancer", Value: resources.LoadBalancerName()}},
					Start:      window.Start,
					End:        window.End,
					Period:     window.Period,
					Statistic:  metrics.StatisticSum,
				})
				if err != nil {
					return Failed(err)
				}
				counts[i] = metrics.Sum(datapoints)
			}

			success, clientErrors, serverErrors := counts[0], counts[1], counts[2]
			total := success + clientErrors + serverErrors
			if total == 0 {
				return NoData()
			}
			return Observed((clientErrors + serverErrors) / total * 100)
		},
	}
}
