package servicelevels

import (
	"context"
	"fmt"
	"strconv"
)

type Status string

const (
	StatusSuccess   Status = "SUCCESS"
	StatusViolation Status = "VIOLATION"
	StatusError     Status = "ERROR"
	StatusNoData    Status = "NO_DATA"
)

func (s Status) Icon() string {
	switch s {
	case StatusSuccess:
		return "✅"
	case StatusViolation:
		return "❌"
	case StatusError:
		return "⚠️"
	case StatusNoData:
		return "📊"
	}
	return "❓"
}

type observationKind int

const (
	observedValue observationKind = iota
	observedNoData
	observedFailure
)

// Observation is what a check saw in the backend: a value, no data, or a failure.
type Observation struct {
	kind  observationKind
	value float64
	err   error
}

func Observed(value float64) Observation {
	return Observation{kind: observedValue, value: value}
}

func NoData() Observation {
	return Observation{kind: observedNoData}
}

func Failed(err error) Observation {
	return Observation{kind: observedFailure, err: err}
}

func (o Observation) Value() (float64, bool) {
	return o.value, o.kind == observedValue
}

func (o Observation) IsNoData() bool {
	return o.kind == observedNoData
}

func (o Observation) Err() error {
	return o.err
}

type CheckResult struct {
	Metric    string    `json:"metric"`
	Status    Status    `json:"status"`
	Value     *float64  `json:"value"`
	Threshold Threshold `json:"threshold"`
	Compliant bool      `json:"compliant"`
	Message   string    `json:"message"`
}

type ObserveFunc func(ctx context.Context, window Window) Observation

type Check struct {
	Threshold Threshold
	// Label prefixes the message, e.g. "P95 Latency".
	Label string
	// Precision is the number of decimals the observed value is printed with.
	Precision     int
	NoDataMessage string
	ErrorSubject  string
	Observe       ObserveFunc
}

func (c *Check) Run(ctx context.Context, window Window) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = c.Evaluate(Failed(fmt.Errorf("check panicked: %v", r)))
		}
	}()
	return c.Evaluate(c.Observe(ctx, window))
}

func (c *Check) Evaluate(observation Observation) CheckResult {
	result := CheckResult{
		Metric:    c.Threshold.Name,
		Threshold: c.Threshold,
	}

	if observation.Err() != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Error checking %s: %s", c.ErrorSubject, observation.Err().Error())
		return result
	}

	value, hasValue := observation.Value()
	if !hasValue {
		result.Status = StatusNoData
		result.Message = c.NoDataMessage
		return result
	}

	result.Value = &value
	result.Compliant = c.Threshold.Operation.Satisfied(value, c.Threshold.Limit)
	result.Status = StatusViolation
	if result.Compliant {
		result.Status = StatusSuccess
	}
	result.Message = fmt.Sprintf("%s: %s%s (Threshold: %s)",
		c.Label,
		strconv.FormatFloat(value, 'f', c.Precision, 64),
		c.Threshold.Unit,
		c.Threshold.LimitString())
	return result
}
