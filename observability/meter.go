package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit. A nil
// log falls back to the global logger.
func InitMeter(ctx context.Context, config *MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	if log == nil {
		log = logger.WithComponent("observability")
	}
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	log.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Outcome labels for stream.outcomes.
const (
	OutcomeDone   = "done"
	OutcomeFailed = "failed"
)

// StreamMetrics holds the instruments recorded by the stream engine.
type StreamMetrics struct {
	attachments  metric.Int64Counter
	active       metric.Int64UpDownCounter
	elements     metric.Int64Counter
	outcomes     metric.Int64Counter
	stepDuration metric.Float64Histogram
	drains       metric.Int64UpDownCounter
}

// NewStreamMetrics creates the stream instruments on the given meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	attachments, err := meter.Int64Counter("stream.attachments",
		metric.WithDescription("Total number of iteratees attached to an enumerator"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.attachments counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter("stream.attachments.active",
		metric.WithDescription("Number of attachments that have not reached a terminal state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.attachments.active gauge: %w", err)
	}

	elements, err := meter.Int64Counter("stream.elements",
		metric.WithDescription("Total number of elements delivered to iteratees"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.elements counter: %w", err)
	}

	outcomes, err := meter.Int64Counter("stream.outcomes",
		metric.WithDescription("Terminal outcomes of attachments by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.outcomes counter: %w", err)
	}

	stepDuration, err := meter.Float64Histogram("stream.step.duration",
		metric.WithDescription("Duration of a single iteratee step in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.step.duration histogram: %w", err)
	}

	drains, err := meter.Int64UpDownCounter("stream.drains.in_flight",
		metric.WithDescription("Mailbox drains running or queued on the engine's worker pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.drains.in_flight gauge: %w", err)
	}

	return &StreamMetrics{
		attachments:  attachments,
		active:       active,
		elements:     elements,
		outcomes:     outcomes,
		stepDuration: stepDuration,
		drains:       drains,
	}, nil
}

// RecordAttach counts a new attachment and marks it active.
func (m *StreamMetrics) RecordAttach(ctx context.Context, source string) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.attachments.Add(ctx, 1, attrs)
	m.active.Add(ctx, 1, attrs)
}

// RecordStep records one step; elem is true when the input was an element.
func (m *StreamMetrics) RecordStep(ctx context.Context, source string, elem bool, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	if elem {
		m.elements.Add(ctx, 1, attrs)
	}
	m.stepDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordSettle records the terminal outcome of an attachment.
func (m *StreamMetrics) RecordSettle(ctx context.Context, source, outcome string) {
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("source", source)))
	m.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

// RecordDrain adjusts the number of in-flight drains on pool by delta.
func (m *StreamMetrics) RecordDrain(ctx context.Context, pool string, delta int64) {
	m.drains.Add(ctx, delta, metric.WithAttributes(attribute.String("pool", pool)))
}
