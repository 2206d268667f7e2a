package main

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/streamkit/bootstrap"
	"github.com/kbukum/streamkit/iteratee"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/version"
)

// newEngine installs the OTLP providers when telemetry is enabled and builds
// the engine on top of them. Both are torn down by the app's stop hooks.
func newEngine(ctx context.Context, app *bootstrap.App[*Config]) (*iteratee.Engine, error) {
	cfg := app.Cfg
	if cfg.Telemetry.Enabled {
		log := logger.WithComponent("telemetry")
		ver := cfg.Version
		if ver == "" {
			ver = version.Get().Short()
		}

		mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: ver,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
			Interval:       cfg.Telemetry.Interval,
		}, log)
		if err != nil {
			return nil, err
		}
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: ver,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
			SampleRate:     cfg.Telemetry.SampleRate,
		}, log)
		if err != nil {
			_ = mp.Shutdown(ctx)
			return nil, err
		}
		app.OnStop(func(ctx context.Context) error {
			return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		})
	}

	eng := iteratee.NewEngine(cfg.Engine, iteratee.WithLogger(app.Logger))
	app.OnStop(func(context.Context) error {
		eng.Close()
		return nil
	})
	return eng, nil
}
