// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/paideia/pkg/errors"
)

// Metrics tracks request outcomes and error rates for the tutoring
// service surfaces (HTTP API and MCP server).
type Metrics struct {
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCounter    metric.Int64Counter
	eventCounter    metric.Int64Counter
}

// NewMetrics creates a metrics tracker on the global OTEL meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("paideia/service")

	requestCounter, err := meter.Int64Counter(
		"paideia.requests.total",
		metric.WithDescription("Total requests by route and outcome"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"paideia.requests.duration",
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"paideia.errors.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	eventCounter, err := meter.Int64Counter(
		"paideia.history.events",
		metric.WithDescription("History events recorded by type"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		errorCounter:    errorCounter,
		eventCounter:    eventCounter,
	}, nil
}

// RecordRequest records one completed request.
func (m *Metrics) RecordRequest(ctx context.Context, route string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Bool("success", success),
	)
	m.requestCounter.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("route", route),
	))
}

// RecordError increments the error counter for the given error and
// component. Typed errors contribute their code, everything else
// counts as INTERNAL_ERROR.
func (m *Metrics) RecordError(ctx context.Context, err error, component string) {
	if m == nil || err == nil {
		return
	}
	code := errors.CodeInternal
	if pe, ok := err.(*errors.PaideiaError); ok {
		code = pe.Code
	}
	m.errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error.code", string(code)),
		attribute.String("component", component),
	))
}

// RecordEvent counts a recorded history event by type.
func (m *Metrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.eventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
	))
}
