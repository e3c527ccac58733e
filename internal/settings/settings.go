// Package settings holds the administrative guild configuration operations.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

// Channels names the destinations changed by SetChannels. Zero fields are
// left untouched.
type Channels struct {
	Logs        models.Snowflake
	Tasks       models.Snowflake
	DevCategory models.Snowflake
}

// Service edits guild configuration.
type Service struct {
	configs  store.ConfigStore
	aiKeySet bool
	logger   *slog.Logger
}

// New builds a Service. aiKeySet reports whether the process has an LLM API key.
func New(configs store.ConfigStore, aiKeySet bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{configs: configs, aiKeySet: aiKeySet, logger: logger.With("component", "settings")}
}

func requireAdmin(actor models.Actor) error {
	if !actor.Admin {
		return apperr.PermissionDenied(apperr.ErrCodeAdminRequired, "Only administrators can change the bot configuration.")
	}
	return nil
}

// SetChannels updates the logs channel, tasks channel and dev category.
func (s *Service) SetChannels(ctx context.Context, actor models.Actor, guildID models.Snowflake, channels Channels) (models.ServerConfig, error) {
	if err := requireAdmin(actor); err != nil {
		return models.ServerConfig{}, err
	}
	var update store.ConfigUpdate
	if !channels.Logs.IsZero() {
		update.LogsChannel = &channels.Logs
	}
	if !channels.Tasks.IsZero() {
		update.TasksChannel = &channels.Tasks
	}
	if !channels.DevCategory.IsZero() {
		update.DevCategory = &channels.DevCategory
	}
	cfg, err := s.configs.UpdateConfig(ctx, guildID, update)
	if err != nil {
		return models.ServerConfig{}, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	s.logger.Info("channels configured", "guild", guildID.String(), "actor", actor.UserID.String())
	return cfg, nil
}

// SetAI toggles the LLM helper. Enabling requires a configured API key.
func (s *Service) SetAI(ctx context.Context, actor models.Actor, guildID models.Snowflake, enabled bool) (models.ServerConfig, error) {
	if err := requireAdmin(actor); err != nil {
		return models.ServerConfig{}, err
	}
	if enabled && !s.aiKeySet {
		return models.ServerConfig{}, apperr.ConfigMissing(apperr.ErrCodeAIKeyMissing, "AI cannot be enabled: GEMINI_API_KEY missing in environment.")
	}
	cfg, err := s.configs.UpdateConfig(ctx, guildID, store.ConfigUpdate{AIEnabled: &enabled})
	if err != nil {
		return models.ServerConfig{}, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	s.logger.Info("ai helper toggled", "guild", guildID.String(), "enabled", enabled)
	return cfg, nil
}

// Show returns the current guild configuration.
func (s *Service) Show(ctx context.Context, guildID models.Snowflake) (models.ServerConfig, error) {
	cfg, err := s.configs.GetConfig(ctx, guildID)
	if err != nil {
		return models.ServerConfig{}, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	return cfg, nil
}

// Describe renders cfg as the lines shown by `/config show`.
func Describe(cfg models.ServerConfig) string {
	line := func(label string, id models.Snowflake) string {
		if id.IsZero() {
			return label + ": not set"
		}
		return label + ": " + id.ChannelMention()
	}
	lines := []string{
		line("Logs channel", cfg.LogsChannel),
		line("Tasks channel", cfg.TasksChannel),
		line("Dev category", cfg.DevCategory),
		fmt.Sprintf("AI enabled: %t", cfg.AIEnabled),
	}
	return strings.Join(lines, "\n")
}
