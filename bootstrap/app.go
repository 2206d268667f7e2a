package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/streamkit/logger"
)

// App runs a service or a finite task with uniform startup and shutdown.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp applies defaults to cfg, validates it and builds the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.Base()
	if err := base.Logging.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.New(&base.Logging, base.Name)
	}
	logger.SetGlobalLogger(o.logger)

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Logger:          o.logger,
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// Run starts the application and blocks until SIGINT, SIGTERM or ctx ends,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.Logger.Info("application ready")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts the application, runs task until it returns or a signal
// cancels its context, then shuts down. The task error wins over shutdown
// errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation. It returns
// nil for the latter.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		return nil
	}
}

func (a *App[C]) startup(ctx context.Context) error {
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))
	if err := runHooks(ctx, a.onStart); err != nil {
		// Undo whatever already started.
		_ = a.stop()
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	return nil
}

func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			a.Logger.Error("onStop hook failed", logger.ErrorFields("shutdown", err))
			errs = append(errs, err)
		}
	}
	a.Logger.Info("application shutdown complete")
	return stderrors.Join(errs...)
}
