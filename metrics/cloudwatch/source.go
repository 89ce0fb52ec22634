package cloudwatch

import (
	"context"
	"errors"
	"fmt"
	"sloverify/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
)

type StatisticsAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

type Source struct {
	client StatisticsAPI
}

func NewSource(client StatisticsAPI) *Source {
	return &Source{client: client}
}

// NewSourceForRegion builds a client from the default credential chain.
// maxAttempts bounds the SDK retryer, including the first attempt.
func NewSourceForRegion(ctx context.Context, region string, maxAttempts int) (*Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryMaxAttempts(maxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSource(cloudwatch.NewFromConfig(cfg)), nil
}

func (s *Source) GetStatistics(ctx context.Context, query metrics.StatisticsQuery) ([]metrics.Datapoint, error) {
	output, err := s.client.GetMetricStatistics(ctx, toInput(query))
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("cloudwatch %s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
		}
		return nil, err
	}
	if output == nil {
		return nil, fmt.Errorf("%w: empty output", metrics.ErrMalformedResponse)
	}

	datapoints := make([]metrics.Datapoint, 0, len(output.Datapoints))
	for i, dp := range output.Datapoints {
		if dp.Timestamp == nil {
			return nil, fmt.Errorf("%w: datapoint %d has no timestamp", metrics.ErrMalformedResponse, i)
		}
		value, found := statisticValue(dp, query.Statistic)
		if !found {
			return nil, fmt.Errorf("%w: datapoint %d has no %s", metrics.ErrMalformedResponse, i, query.Statistic)
		}
		datapoints = append(datapoints, metrics.Datapoint{
			Timestamp: *dp.Timestamp,
			Value:     value,
		})
	}
	return datapoints, nil
}

func toInput(query metrics.StatisticsQuery) *cloudwatch.GetMetricStatisticsInput {
	dimensions := make([]types.Dimension, len(query.Dimensions))
	for i, d := range query.Dimensions {
		dimensions[i] = types.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		}
	}

	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(query.Namespace),
		MetricName: aws.String(query.MetricName),
		Dimensions: dimensions,
		StartTime:  aws.Time(query.Start),
		EndTime:    aws.Time(query.End),
		Period:     aws.Int32(int32(query.Period.Seconds())),
	}
	if query.Statistic.IsPercentile() {
		input.ExtendedStatistics = []string{string(query.Statistic)}
	} else {
		input.Statistics = []types.Statistic{types.Statistic(query.Statistic)}
	}
	return input
}

func statisticValue(dp types.Datapoint, statistic metrics.Statistic) (float64, bool) {
	var value *float64
	switch statistic {
	case metrics.StatisticAverage:
		value = dp.Average
	case metrics.StatisticSum:
		value = dp.Sum
	case metrics.StatisticMinimum:
		value = dp.Minimum
	case metrics.StatisticMaximum:
		value = dp.Maximum
	case metrics.StatisticSampleCount:
		value = dp.SampleCount
	default:
		extended, found := dp.ExtendedStatistics[string(statistic)]
		return extended, found
	}
	if value == nil {
		return 0, false
	}
	return *value, true
}
