package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamkit/bootstrap"
	"github.com/kbukum/streamkit/internal/feed"
	"github.com/kbukum/streamkit/iteratee"
)

func newRunCmd(configFile *string) *cobra.Command {
	var (
		view  viewFlags
		count int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Print one viewer's feed as JSON lines until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			view.apply(cmd, cfg)
			if cmd.Flags().Changed("count") {
				cfg.Feed.Count = count
			}

			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd.Context(), app)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				_, err := printFeed(ctx, eng, app.Cfg, cmd.OutOrStdout())
				return err
			})
		},
	}
	view.bind(cmd)
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many generated events (0: unbounded)")
	return cmd
}

// printFeed writes the configured view of a fresh feed to w, one JSON object
// per line, until the feed ends or ctx is canceled. It returns the number of
// bytes written.
func printFeed(ctx context.Context, eng *iteratee.Engine, cfg *Config, w io.Writer) (int64, error) {
	source := feed.NewSource(cfg.Feed)
	view := iteratee.Compose(
		feed.View(feed.ParseRole(cfg.View.Role), cfg.View.Lower, cfg.View.Upper),
		iteratee.Map(func(b []byte) []byte { return append(b, '\n') }),
	)

	written := iteratee.ApplyWith(eng, iteratee.Through(source, view), iteratee.ToWriter(w))
	stop := context.AfterFunc(ctx, source.Stop)
	defer stop()
	return written.Get()
}
