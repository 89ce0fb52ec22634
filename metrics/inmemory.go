package metrics

import (
	"context"
	"sync"
)

// InMemorySource serves datapoints keyed by metric name.
type InMemorySource struct {
	datapoints map[string][]Datapoint
	failures   map[string]error
	queries    []StatisticsQuery
	mux        sync.Mutex
}

func NewInMemorySource() *InMemorySource {
	return &InMemorySource{
		datapoints: make(map[string][]Datapoint),
		failures:   make(map[string]error),
	}
}

func (i *InMemorySource) Put(metricName string, datapoints ...Datapoint) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.datapoints[metricName] = append(i.datapoints[metricName], datapoints...)
}

func (i *InMemorySource) Fail(metricName string, err error) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.failures[metricName] = err
}

func (i *InMemorySource) GetStatistics(ctx context.Context, query StatisticsQuery) ([]Datapoint, error) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.queries = append(i.queries, query)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if failure, found := i.failures[query.MetricName]; found {
		return nil, failure
	}

	var inWindow []Datapoint
	for _, dp := range i.datapoints[query.MetricName] {
		if dp.Timestamp.IsZero() || (!dp.Timestamp.Before(query.Start) && !dp.Timestamp.After(query.End)) {
			inWindow = append(inWindow, dp)
		}
	}
	return inWindow, nil
}

func (i *InMemorySource) Queries() []StatisticsQuery {
	i.mux.Lock()
	defer i.mux.Unlock()

	return append([]StatisticsQuery(nil), i.queries...)
}
