package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

type embedPoster interface {
	PostEmbed(ctx context.Context, channelID models.Snowflake, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error
}

// AuditLog posts audit entries into the guild's logs channel.
type AuditLog struct {
	configs store.ConfigStore
	poster  embedPoster
}

// NewAuditLog builds an audit sink over the config store and a poster.
func NewAuditLog(configs store.ConfigStore, poster embedPoster) *AuditLog {
	return &AuditLog{configs: configs, poster: poster}
}

// Record posts entry. Guilds without a logs channel, or whose logs channel
// is gone, are skipped.
func (a *AuditLog) Record(ctx context.Context, guildID models.Snowflake, entry models.AuditEntry) error {
	cfg, err := a.configs.GetConfig(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.LogsChannel.IsZero() {
		return nil
	}
	err = a.poster.PostEmbed(ctx, cfg.LogsChannel, auditEmbed(entry), nil)
	if errors.Is(err, apperr.ErrNotExist) {
		return nil
	}
	return err
}
