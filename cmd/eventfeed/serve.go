package main

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kbukum/streamkit/bootstrap"
	"github.com/kbukum/streamkit/internal/feed"
	"github.com/kbukum/streamkit/iteratee"
	"github.com/kbukum/streamkit/server"
	"github.com/kbukum/streamkit/sse"
)

func newServeCmd(configFile *string) *cobra.Command {
	var (
		view viewFlags
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feed to browsers over Server-Sent Events",
		Long: "Serve broadcasts one feed to every client of GET /events. Each client picks its\n" +
			"view with ?role=, ?lower= and ?upper=; the configured view is the default.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			view.apply(cmd, cfg)

			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				app.Cfg.HTTP.Port = port
			}
			eng, err := newEngine(cmd.Context(), app)
			if err != nil {
				return err
			}
			mount(app, eng)
			return app.Run(cmd.Context())
		},
	}
	view.bind(cmd)
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides http.port)")
	return cmd
}

// mount wires the feed hub, the event stream and the HTTP server into app.
// Stop hooks run in reverse: the hub ends first so streams close with an end
// event, then the server drains.
func mount(app *bootstrap.App[*Config], eng *iteratee.Engine) *server.Server {
	cfg := app.Cfg
	hub := iteratee.BroadcastWith(eng, feed.NewSource(cfg.Feed), true)
	stream := sse.NewStream(hub, sse.WithName("events"), sse.WithLogger(app.Logger))

	srv := server.New(cfg.HTTP, app.Logger)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(cfg.Name, stream)
	srv.GinEngine().GET("/events", stream.Handler(viewFromQuery(cfg.View)))

	app.OnStart(srv.Start)
	app.OnStop(srv.Stop, func(context.Context) error {
		hub.Stop()
		return nil
	})
	return srv
}

// viewFromQuery builds a client's view from its query, falling back to def.
func viewFromQuery(def ViewConfig) func(*gin.Context) iteratee.Enumeratee[feed.Event, []byte] {
	return func(c *gin.Context) iteratee.Enumeratee[feed.Event, []byte] {
		role := feed.ParseRole(c.DefaultQuery("role", def.Role))
		return feed.View(role, queryInt(c, "lower", def.Lower), queryInt(c, "upper", def.Upper))
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
