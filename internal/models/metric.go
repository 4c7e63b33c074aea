// internal/models/metric.go
package models

import (
	"encoding/json"
	"math"
)

// Metric is a KPI value that may be undefined when its denominator is zero.
// An undefined metric marshals to JSON null; NaN and Inf never reach the
// serialized report.
type Metric struct {
	Value   float64
	Defined bool
}

// MetricOf returns a defined metric. Non-finite inputs degrade to undefined
// rather than leaking into a report.
func MetricOf(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Defined: true}
}

// UndefinedMetric returns the division-by-zero sentinel.
func UndefinedMetric() Metric {
	return Metric{}
}

// Ratio returns numerator/denominator as a defined metric, or the undefined
// sentinel when the denominator is zero.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return UndefinedMetric()
	}
	return MetricOf(num / den)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MetricOf(v)
	return nil
}
