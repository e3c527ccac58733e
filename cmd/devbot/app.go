package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/ai"
	"devbot/internal/config"
	"devbot/internal/contact"
	"devbot/internal/discord"
	"devbot/internal/lifecycle"
	"devbot/internal/settings"
	"devbot/internal/store"
)

// application is the composition root shared by the commands. It is built
// once per invocation and passed explicitly.
type application struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend store.Backend
	engine  *lifecycle.Engine

	// Set only when a Discord token is available.
	session  *discordgo.Session
	surface  *discord.Surface
	settings *settings.Service
	contact  *contact.Service
	relay    *ai.Relay
}

type appOptions struct {
	// discord requires a token and wires the REST surface into the engine.
	discord bool
}

func openApp(ctx context.Context, cfg *config.Config, opts appOptions) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	logger := slog.Default()

	logger.Debug("opening store", "storage", cfg.Storage, "data_dir", cfg.DataDir)
	backend, err := store.Open(cfg.Storage, cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage, err)
	}
	app := &application{cfg: cfg, logger: logger, backend: backend}

	if !opts.discord {
		app.engine = lifecycle.New(lifecycle.Deps{Tasks: backend, Configs: backend, Logger: logger})
		return app, nil
	}

	session, err := discord.NewRESTSession(cfg.Discord.Token)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("%w (set %s or discord.token)", err, config.DiscordTokenEnvKey)
	}
	app.session = session
	app.surface = discord.NewSurface(session, logger)
	audit := discord.NewAuditLog(backend, app.surface)

	app.engine = lifecycle.New(lifecycle.Deps{
		Tasks:   backend,
		Configs: backend,
		Surface: app.surface,
		Members: app.surface,
		Audit:   audit,
		Logger:  logger,
	})
	app.settings = settings.New(backend, cfg.AI.APIKey != "", logger)
	app.contact = contact.New(backend, app.surface, app.surface, audit, logger)

	var completer ai.Completer
	if cfg.AI.APIKey != "" {
		gemini, err := ai.NewGeminiCompleter(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		completer = gemini
	}
	app.relay = ai.NewRelay(backend, completer, logger)
	return app, nil
}

func (a *application) handler() *discord.Handler {
	return discord.NewHandler(discord.HandlerDeps{
		Engine:   a.engine,
		Settings: a.settings,
		Contact:  a.contact,
		Relay:    a.relay,
		Panels:   a.surface,
		Logger:   a.logger,
	})
}

// Close releases the store. The gateway session is owned by discord.Bot.
func (a *application) Close() error {
	if a.backend == nil {
		return nil
	}
	if err := a.backend.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

func withApp(ctx context.Context, cfg *config.Config, opts appOptions, fn func(*application) error) error {
	app, err := openApp(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.logger.Warn("shutdown", "error", err)
		}
	}()
	return fn(app)
}
