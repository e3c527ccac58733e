// Package discord is the Discord presentation surface: slash commands,
// buttons, modals, embeds and the REST calls behind lifecycle.Surface.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const interactionTimeout = 30 * time.Second

// Intents requested on the gateway.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

// BotConfig identifies the application and the command registration scope.
type BotConfig struct {
	ApplicationID string
	// GuildID registers commands for one guild only; empty registers globally.
	GuildID string
}

// Bot owns the gateway session and feeds interactions to a Handler.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	cfg     BotConfig
	logger  *slog.Logger

	register sync.Once
}

// NewBot wires handler onto session. The session is opened by Run.
func NewBot(session *discordgo.Session, handler *Handler, cfg BotConfig, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		session: session,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With("component", "bot"),
	}
	session.Identify.Intents = Intents
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b
}

// Run connects and blocks until ctx is done. Commands are registered on the
// first Ready event.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			b.logger.Warn("close discord session", "error", err)
		}
	}()

	<-ctx.Done()
	b.logger.Info("discord session stopping")
	return nil
}

// registerCommands overwrites the application's commands. A bot user shares
// its id with the application, so fallbackAppID is used when none is set.
func (b *Bot) registerCommands(s *discordgo.Session, fallbackAppID string) error {
	appID := b.cfg.ApplicationID
	if appID == "" {
		appID = fallbackAppID
	}
	if appID == "" {
		return fmt.Errorf("discord application id is unknown; set discord.application_id")
	}
	registered, err := s.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, Commands())
	if err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}
	b.logger.Info("slash commands registered", "count", len(registered), "guild", b.cfg.GuildID)
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	b.logger.Info("logged in", "user", r.User.Username, "id", r.User.ID, "guilds", len(r.Guilds))
	b.register.Do(func() {
		if err := b.registerCommands(s, r.User.ID); err != nil {
			b.logger.Error("slash command registration failed", "error", err)
		}
	})
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	defer func() {
		if recovered := recover(); recovered != nil {
			b.logger.Error("interaction handler panicked", "panic", recovered, "interaction", i.ID)
		}
	}()

	out := b.handler.Dispatch(ctx, i)
	if out.response == nil {
		return
	}
	if err := s.InteractionRespond(i.Interaction, out.response, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("interaction respond failed", "interaction", i.ID, "error", err)
		return
	}
	if out.followup == nil {
		return
	}
	params := out.followup(ctx)
	if params == nil {
		return
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("interaction followup failed", "interaction", i.ID, "error", err)
	}
}
