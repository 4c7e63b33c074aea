// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	forecastCounter  otelmetric.Int64Counter
	forecastDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	forecastCounter, _ := meter.Int64Counter(
		"forecasts.processed",
		otelmetric.WithDescription("Number of forecasts processed"),
	)

	forecastDuration, _ := meter.Float64Histogram(
		"forecasts.duration",
		otelmetric.WithDescription("Forecast computation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		forecastCounter:  forecastCounter,
		forecastDuration: forecastDuration,
	}
}

func (o *Observability) RecordForecast(ctx context.Context, status string) {
	if o != nil && o.forecastCounter != nil {
		o.forecastCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordForecastDuration(ctx context.Context, duration time.Duration, status string) {
	if o != nil && o.forecastDuration != nil {
		o.forecastDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
