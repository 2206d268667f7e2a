// Package observability wires OpenTelemetry into the stream engine.
//
// StreamMetrics holds the instruments the engine records for every
// attachment: attachments started and active, elements delivered, terminal
// outcomes and per-step latency. Without InitMeter the global provider is a
// no-op, so recording costs nothing until a service opts in.
//
// InitMeter and InitTracer configure OTLP/HTTP exporters; call the returned
// provider's Shutdown on exit.
//
//	mp, err := observability.InitMeter(ctx, &cfg, nil)
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewStreamMetrics(observability.Meter("streamkit"))
package observability
