package jsonstore

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// storeMetrics holds the instruments of one store instance.
type storeMetrics struct {
	loads       metric.Int64Counter
	persists    metric.Int64Counter
	failures    metric.Int64Counter
	broadcasts  metric.Int64Counter
	subscribers metric.Int64UpDownCounter
	attrs       metric.MeasurementOption
}

func newStoreMetrics(meter metric.Meter, name string) (*storeMetrics, error) {
	m := &storeMetrics{
		attrs: metric.WithAttributeSet(attribute.NewSet(attribute.String("store", name))),
	}
	var err error
	if m.loads, err = meter.Int64Counter(
		"jsonstore.loads",
		metric.WithDescription("Number of backing file loads"),
	); err != nil {
		return nil, fmt.Errorf("failed to create loads instrument: %w", err)
	}
	if m.persists, err = meter.Int64Counter(
		"jsonstore.persists",
		metric.WithDescription("Number of successful backing file writes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create persists instrument: %w", err)
	}
	if m.failures, err = meter.Int64Counter(
		"jsonstore.failures",
		metric.WithDescription("Number of failed loads and writes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failures instrument: %w", err)
	}
	if m.broadcasts, err = meter.Int64Counter(
		"jsonstore.broadcasts",
		metric.WithDescription("Number of snapshots enqueued to subscribers"),
	); err != nil {
		return nil, fmt.Errorf("failed to create broadcasts instrument: %w", err)
	}
	if m.subscribers, err = meter.Int64UpDownCounter(
		"jsonstore.subscribers",
		metric.WithDescription("Number of live subscriptions"),
	); err != nil {
		return nil, fmt.Errorf("failed to create subscribers instrument: %w", err)
	}
	return m, nil
}

func (m *storeMetrics) loaded(ctx context.Context) {
	m.loads.Add(ctx, 1, m.attrs)
}

func (m *storeMetrics) persisted(ctx context.Context) {
	m.persists.Add(ctx, 1, m.attrs)
}

func (m *storeMetrics) failed(ctx context.Context, kind error) {
	m.failures.Add(ctx, 1, m.attrs, metric.WithAttributes(attribute.String("kind", kind.Error())))
}

func (m *storeMetrics) broadcast(ctx context.Context, n int) {
	if n > 0 {
		m.broadcasts.Add(ctx, int64(n), m.attrs)
	}
}

func (m *storeMetrics) subscribed(delta int64) {
	m.subscribers.Add(context.Background(), delta, m.attrs)
}
