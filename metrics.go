package volumetric

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// hostMetrics are the instruments recorded by Host.Render.
type hostMetrics struct {
	renders  metric.Int64Counter
	duration metric.Float64Histogram
}

func newHostMetrics(mp metric.MeterProvider) *hostMetrics {
	meter := mp.Meter(instrumentationName)
	hm := &hostMetrics{}

	var err error
	hm.renders, err = meter.Int64Counter("volumetric.renders",
		metric.WithDescription("Panels rendered, by template and outcome"),
		metric.WithUnit("{panel}"),
	)
	if err != nil {
		hm.renders = noop.Int64Counter{}
	}
	hm.duration, err = meter.Float64Histogram("volumetric.render.duration",
		metric.WithDescription("Time spent rendering a panel"),
		metric.WithUnit("s"),
	)
	if err != nil {
		hm.duration = noop.Float64Histogram{}
	}
	return hm
}

// record counts one finished render. Unknown keys share a single label so
// agent typos cannot grow the series count.
func (hm *hostMetrics) record(ctx context.Context, result *RenderResult) {
	key := result.Key
	outcome := "ok"
	if result.Fallback {
		outcome = string(result.Kind)
		if result.Kind == FallbackUnknownTemplate {
			key = "unknown"
		}
	}
	attrs := metric.WithAttributes(
		attribute.String("template.key", key),
		attribute.String("outcome", outcome),
	)
	hm.renders.Add(ctx, 1, attrs)
	hm.duration.Record(ctx, result.Duration.Seconds(), attrs)
}

// RegisterMetrics publishes the dispatch counters on meter. The counters
// are observed on collection; unregister the returned registration when
// the dispatcher goes away.
func (d *Dispatcher) RegisterMetrics(meter metric.Meter) (metric.Registration, error) {
	phrases, err := meter.Int64ObservableCounter("volumetric.dispatch.phrases",
		metric.WithDescription("Action phrases by dispatch outcome"),
		metric.WithUnit("{phrase}"),
	)
	if err != nil {
		return nil, err
	}
	attached, err := meter.Int64ObservableGauge("volumetric.dispatch.attached",
		metric.WithDescription("1 while an agent bridge is attached"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		s := d.Stats()
		o.ObserveInt64(phrases, int64(s.Accepted), metric.WithAttributes(attribute.String("outcome", "accepted")))
		o.ObserveInt64(phrases, int64(s.Delivered), metric.WithAttributes(attribute.String("outcome", string(OutcomeDelivered))))
		o.ObserveInt64(phrases, int64(s.Dropped), metric.WithAttributes(attribute.String("outcome", string(OutcomeDropped))))
		o.ObserveInt64(phrases, int64(s.Failed), metric.WithAttributes(attribute.String("outcome", string(OutcomeFailed))))

		var a int64
		if s.Attached {
			a = 1
		}
		o.ObserveInt64(attached, a)
		return nil
	}, phrases, attached)
}
