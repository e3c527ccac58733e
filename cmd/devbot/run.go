package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"devbot/internal/config"
	"devbot/internal/discord"
	"devbot/internal/server"
)

func newRunCmd(cfg *config.Config) *cobra.Command {
	var noHTTP bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Discord bot and the status API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var addr string
			if !noHTTP {
				var err error
				addr, err = server.ListenAddr(cfg.HTTP.Addr)
				if err != nil {
					return err
				}
			}

			return withApp(ctx, cfg, appOptions{discord: true}, func(app *application) error {
				return runServices(ctx, app, addr)
			})
		},
	}

	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "do not start the status API")
	return cmd
}

// runServices runs the gateway bot and, when addr is set, the status API
// until ctx is cancelled or either fails.
func runServices(ctx context.Context, app *application, addr string) error {
	bot := discord.NewBot(app.session, app.handler(), discord.BotConfig{
		ApplicationID: app.cfg.Discord.ApplicationID,
		GuildID:       app.cfg.Discord.GuildID,
	}, app.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := bot.Run(ctx); err != nil {
			return fmt.Errorf("discord bot: %w", err)
		}
		return nil
	})
	if addr != "" {
		srv := server.New(addr, app.engine, app.cfg.HTTP.StatusTokenHash, app.logger)
		g.Go(func() error {
			if err := srv.ListenAndServe(ctx); err != nil {
				return fmt.Errorf("status api: %w", err)
			}
			return nil
		})
	}

	app.logger.Info("devbot started", "storage", app.cfg.Storage, "http", addr, "ai", app.relay.KeyConfigured())
	err := g.Wait()
	app.logger.Info("devbot stopped")
	return err
}
