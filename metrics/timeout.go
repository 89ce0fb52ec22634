package metrics

import (
	"context"
	"fmt"
	"time"
)

const DefaultQueryTimeout = 10 * time.Second

type TimeoutSource struct {
	origin  Source
	timeout time.Duration
}

func WithTimeout(origin Source, timeout time.Duration) *TimeoutSource {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &TimeoutSource{
		origin:  origin,
		timeout: timeout,
	}
}

func (t *TimeoutSource) GetStatistics(ctx context.Context, query StatisticsQuery) ([]Datapoint, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	datapoints, err := t.origin.GetStatistics(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", query.String(), err)
	}
	return datapoints, nil
}
