package session

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// RegisterMetrics publishes the live session count on meter.
func (m *Manager) RegisterMetrics(meter metric.Meter) (metric.Registration, error) {
	live, err := meter.Int64ObservableGauge("volumetric.sessions.live",
		metric.WithDescription("Sessions currently tracked"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(live, int64(m.Len()))
		return nil
	}, live)
}
