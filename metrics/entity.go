package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedResponse = errors.New("malformed metrics response")

type Dimension struct {
	Name  string
	Value string
}

// Statistic is either a standard reducer (Average, Sum, ...) or an
// extended percentile in the pNN form.
type Statistic string

const (
	StatisticAverage     Statistic = "Average"
	StatisticSum         Statistic = "Sum"
	StatisticMinimum     Statistic = "Minimum"
	StatisticMaximum     Statistic = "Maximum"
	StatisticSampleCount Statistic = "SampleCount"
)

func PercentileStatistic(percent float64) Statistic {
	formatted := fmt.Sprintf("p%.5f", percent)
	return Statistic(strings.TrimRight(strings.TrimRight(formatted, "0"), "."))
}

func (s Statistic) IsPercentile() bool {
	return strings.HasPrefix(string(s), "p")
}

// Percentile returns the quantile in 0..1 range for percentile statistics.
func (s Statistic) Percentile() (float64, bool) {
	if !s.IsPercentile() {
		return 0, false
	}
	var percent float64
	_, scanErr := fmt.Sscanf(string(s), "p%g", &percent)
	if scanErr != nil || percent <= 0 || percent > 100 {
		return 0, false
	}
	return percent / 100.0, true
}

type StatisticsQuery struct {
	Namespace  string
	MetricName string
	Dimensions []Dimension
	Start      time.Time
	End        time.Time
	Period     time.Duration
	Statistic  Statistic
}

func (q *StatisticsQuery) String() string {
	dims := make([]string, len(q.Dimensions))
	for i, d := range q.Dimensions {
		dims[i] = d.Name + "=" + d.Value
	}
	return fmt.Sprintf("%s/%s{%s} %s", q.Namespace, q.MetricName, strings.Join(dims, ","), q.Statistic)
}

type Datapoint struct {
	Timestamp time.Time
	Value     float64
}

type Source interface {
	GetStatistics(ctx context.Context, query StatisticsQuery) ([]Datapoint, error)
}

// Latest picks the datapoint with the latest timestamp. On equal timestamps
// the later one in the slice wins.
func Latest(datapoints []Datapoint) (Datapoint, bool) {
	if len(datapoints) == 0 {
		return Datapoint{}, false
	}
	latest := datapoints[0]
	for _, dp := range datapoints[1:] {
		if !dp.Timestamp.Before(latest.Timestamp) {
			latest = dp
		}
	}
	return latest, true
}

func Sum(datapoints []Datapoint) float64 {
	var total float64
	for _, dp := range datapoints {
		total += dp.Value
	}
	return total
}
