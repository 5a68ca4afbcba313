package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "example.com/ai-travel-planner"

const (
	ModeBuffered = "buffered"
	ModeStream   = "stream"

	OutcomeOK = "ok"
)

// Recorder holds the gateway's metric instruments.
type Recorder struct {
	upstreamRequests metric.Int64Counter
	upstreamDuration metric.Float64Histogram
	streamFrames     metric.Int64Counter
}

// New создает инструменты на переданном meter.
func New(meter metric.Meter) (*Recorder, error) {
	upstreamRequests, err := meter.Int64Counter(
		"planner.upstream.requests",
		metric.WithDescription("Upstream completion calls by delivery mode and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create upstream requests counter: %w", err)
	}

	upstreamDuration, err := meter.Float64Histogram(
		"planner.upstream.duration",
		metric.WithDescription("Duration of upstream completion calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create upstream duration histogram: %w", err)
	}

	streamFrames, err := meter.Int64Counter(
		"planner.stream.frames",
		metric.WithDescription("Event-stream frames relayed to callers"),
		metric.WithUnit("{frame}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stream frames counter: %w", err)
	}

	return &Recorder{
		upstreamRequests: upstreamRequests,
		upstreamDuration: upstreamDuration,
		streamFrames:     streamFrames,
	}, nil
}

// NewNoop возвращает Recorder, который ничего не экспортирует.
func NewNoop() *Recorder {
	recorder, _ := New(noop.NewMeterProvider().Meter(meterName))
	return recorder
}

// NewPrometheus создает MeterProvider с Prometheus-экспортером на собственном реестре
// и HTTP-обработчик для /metrics.
func NewPrometheus() (*sdkmetric.MeterProvider, *Recorder, http.Handler, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	recorder, err := New(provider.Meter(meterName))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, nil, nil, err
	}

	return provider, recorder, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

// ObserveUpstream учитывает один вызов провайдера.
func (r *Recorder) ObserveUpstream(ctx context.Context, mode, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.upstreamRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
	r.upstreamDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
	))
}

// AddStreamFrames учитывает ретранслированные кадры.
func (r *Recorder) AddStreamFrames(ctx context.Context, frames int) {
	if r == nil || frames <= 0 {
		return
	}
	r.streamFrames.Add(ctx, int64(frames))
}
