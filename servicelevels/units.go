package servicelevels

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

type Environment string

const (
	EnvironmentDev     Environment = "dev"
	EnvironmentStaging Environment = "staging"
	EnvironmentProd    Environment = "prod"
)

var Environments = []Environment{EnvironmentDev, EnvironmentStaging, EnvironmentProd}

func ParseEnvironment(value string) (Environment, error) {
	for _, env := range Environments {
		if string(env) == value {
			return env, nil
		}
	}
	names := make([]string, len(Environments))
	for i, env := range Environments {
		names[i] = string(env)
	}
	return "", fmt.Errorf("%w %q, expected one of %s", ErrUnknownEnvironment, value, strings.Join(names, "|"))
}

type Operation string

const (
	OperationGTE Operation = ">="
	OperationLTE Operation = "<="
)

func (o Operation) Satisfied(observed float64, limit float64) bool {
	switch o {
	case OperationGTE:
		return observed >= limit
	case OperationLTE:
		return observed <= limit
	}
	return false
}

const (
	UnitPercent      = "%"
	UnitMilliseconds = "ms"
)

const (
	MetricAvailability = "availability"
	MetricLatency      = "latency"
	MetricErrorRate    = "error_rate"
)

type Threshold struct {
	Name      string    `json:"name"`
	Operation Operation `json:"operation"`
	Limit     float64   `json:"limit"`
	Unit      string    `json:"unit"`
}

func (t Threshold) LimitString() string {
	return strconv.FormatFloat(t.Limit, 'f', -1, 64) + t.Unit
}

type Thresholds struct {
	Availability Threshold
	Latency      Threshold
	ErrorRate    Threshold
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Availability: Threshold{Name: MetricAvailability, Operation: OperationGTE, Limit: 99.95, Unit: UnitPercent},
		Latency:      Threshold{Name: MetricLatency, Operation: OperationLTE, Limit: 500, Unit: UnitMilliseconds},
		ErrorRate:    Threshold{Name: MetricErrorRate, Operation: OperationLTE, Limit: 0.1, Unit: UnitPercent},
	}
}

// WithLimit returns thresholds with the limit of the named metric replaced.
func (t Thresholds) WithLimit(metric string, limit float64) (Thresholds, error) {
	switch metric {
	case MetricAvailability:
		t.Availability.Limit = limit
	case MetricLatency:
		t.Latency.Limit = limit
	case MetricErrorRate:
		t.ErrorRate.Limit = limit
	default:
		return t, fmt.Errorf("unknown metric %q", metric)
	}
	return t, nil
}
