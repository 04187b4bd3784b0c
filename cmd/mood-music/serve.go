package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/justestif/go-mood-music/internal/janitor"
	"github.com/justestif/go-mood-music/internal/logging"
	"github.com/justestif/go-mood-music/internal/web"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := buildStack(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			sessions := web.NewSessionStore(st.engine, web.WithTTL(cfg.Session.TTL))

			jan := janitor.New(logging.Component(logger, "janitor"))
			if err := jan.AddSessionPurge(cfg.Session.PurgeSchedule, sessions); err != nil {
				return err
			}
			if st.purger != nil {
				if err := jan.AddCachePurge(cfg.Cache.PurgeSchedule, cfg.Cache.Driver, st.purger); err != nil {
					return err
				}
			}
			jan.Start()
			defer jan.Stop()

			handlers := web.NewHandlers(sessions, st.classifier, logging.Component(logger, "http"))
			server := web.NewServer(web.ServerConfig{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, handlers, logger)

			return server.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
