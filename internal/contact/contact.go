// Package contact manages the developer roster and opens private channels
// between a member and a developer.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

const channelNamePartLength = 10

// PrivateChannel describes a text channel visible only to its members.
type PrivateChannel struct {
	CategoryID models.Snowflake
	Name       string
	Topic      string
	Members    []models.Snowflake
}

// ChannelOpener creates channels and posts into them. A missing category is
// reported as apperr.ErrNotExist.
type ChannelOpener interface {
	CreatePrivateChannel(ctx context.Context, guildID models.Snowflake, channel PrivateChannel) (models.Snowflake, error)
	PostMessage(ctx context.Context, channelID models.Snowflake, content string) error
}

// MemberResolver looks up guild members, returning apperr.ErrNotExist when absent.
type MemberResolver interface {
	Member(ctx context.Context, guildID, userID models.Snowflake) (models.Member, error)
}

// AuditSink appends entries to the guild audit log.
type AuditSink interface {
	Record(ctx context.Context, guildID models.Snowflake, entry models.AuditEntry) error
}

// Service runs dev panel operations.
type Service struct {
	configs store.ConfigStore
	members MemberResolver
	opener  ChannelOpener
	audit   AuditSink
	logger  *slog.Logger
}

// New builds a Service. audit may be nil.
func New(configs store.ConfigStore, members MemberResolver, opener ChannelOpener, audit AuditSink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		configs: configs,
		members: members,
		opener:  opener,
		audit:   audit,
		logger:  logger.With("component", "contact"),
	}
}

func requireManageServer(actor models.Actor) error {
	if !actor.CanManageServer() {
		return apperr.PermissionDenied(apperr.ErrCodePermissionDenied, "You need the Manage Server permission to do that.")
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, guildID, userID models.Snowflake, notFound string) (models.Member, error) {
	member, err := s.members.Member(ctx, guildID, userID)
	if errors.Is(err, apperr.ErrNotExist) {
		return models.Member{}, apperr.NotFound(apperr.ErrCodeMemberNotFound, notFound)
	}
	if err != nil {
		return models.Member{}, apperr.External(apperr.ErrCodeDiscordFailure, "Could not look up member", err)
	}
	return member, nil
}

// AddDeveloper puts a member on the roster. Adding twice is harmless.
func (s *Service) AddDeveloper(ctx context.Context, actor models.Actor, guildID, userID models.Snowflake) ([]models.Snowflake, error) {
	if err := requireManageServer(actor); err != nil {
		return nil, err
	}
	if _, err := s.resolve(ctx, guildID, userID, "User not found in this server."); err != nil {
		return nil, err
	}
	cfg, err := s.configs.UpdateConfig(ctx, guildID, store.ConfigUpdate{AddDevelopers: []models.Snowflake{userID}})
	if err != nil {
		return nil, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	return cfg.Developers, nil
}

// RemoveDeveloper takes a member off the roster.
func (s *Service) RemoveDeveloper(ctx context.Context, actor models.Actor, guildID, userID models.Snowflake) ([]models.Snowflake, error) {
	if err := requireManageServer(actor); err != nil {
		return nil, err
	}
	cfg, err := s.configs.UpdateConfig(ctx, guildID, store.ConfigUpdate{RemoveDevelopers: []models.Snowflake{userID}})
	if err != nil {
		return nil, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	return cfg.Developers, nil
}

// Roster returns the developers of a guild in insertion order.
func (s *Service) Roster(ctx context.Context, guildID models.Snowflake) ([]models.Snowflake, error) {
	cfg, err := s.configs.GetConfig(ctx, guildID)
	if err != nil {
		return nil, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	return cfg.Developers, nil
}

// PanelRoster returns the roster for posting a panel; it must not be empty.
func (s *Service) PanelRoster(ctx context.Context, actor models.Actor, guildID models.Snowflake) ([]models.Snowflake, error) {
	if err := requireManageServer(actor); err != nil {
		return nil, err
	}
	devs, err := s.Roster(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, apperr.ConfigMissing(apperr.ErrCodeRosterEmpty, "No developers configured. Use `/devpanel add` first.")
	}
	return devs, nil
}

// Open creates a private channel between the actor and a roster developer.
func (s *Service) Open(ctx context.Context, actor models.Actor, guildID, developerID models.Snowflake) (models.Snowflake, error) {
	cfg, err := s.configs.GetConfig(ctx, guildID)
	if err != nil {
		return 0, apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	if cfg.DevCategory.IsZero() {
		return 0, apperr.ConfigMissing(apperr.ErrCodeConfigMissing, "Dev category not configured. Ask an admin to set it with `/config channels`.")
	}
	if !cfg.HasDeveloper(developerID) {
		return 0, apperr.NotFound(apperr.ErrCodeDeveloperNotFound, "Developer not found in this server.")
	}
	dev, err := s.resolve(ctx, guildID, developerID, "Developer not found in this server.")
	if err != nil {
		return 0, err
	}
	user, err := s.resolve(ctx, guildID, actor.UserID, "User not found in this server.")
	if err != nil {
		return 0, err
	}

	channelID, err := s.opener.CreatePrivateChannel(ctx, guildID, PrivateChannel{
		CategoryID: cfg.DevCategory,
		Name:       ChannelName(user, dev),
		Topic:      fmt.Sprintf("Private dev channel between %s and %s", user.Username, dev.Username),
		Members:    []models.Snowflake{user.ID, dev.ID},
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotExist) {
			return 0, apperr.NotFound(apperr.ErrCodeChannelNotFound, "Configured dev category not found.")
		}
		return 0, apperr.External(apperr.ErrCodeDiscordFailure, "Could not create the private channel", err)
	}

	greeting := fmt.Sprintf("Private dev channel opened.\n- User: %s\n- Developer: %s\n\nUse this channel to discuss your task or project in detail.",
		user.ID.Mention(), dev.ID.Mention())
	if err := s.opener.PostMessage(ctx, channelID, greeting); err != nil {
		s.logger.Warn("post greeting failed", "guild", guildID.String(), "channel", channelID.String(), "error", err)
	}
	if s.audit != nil {
		entry := models.AuditEntry{
			Title:       "Private Dev Channel Created",
			Description: fmt.Sprintf("Channel: %s\nUser: %s\nDev: %s", channelID.ChannelMention(), user.ID.Mention(), dev.ID.Mention()),
		}
		if err := s.audit.Record(ctx, guildID, entry); err != nil {
			s.logger.Warn("audit failed", "guild", guildID.String(), "error", err)
		}
	}
	s.logger.Info("dev channel opened", "guild", guildID.String(), "channel", channelID.String(), "user", user.ID.String(), "developer", dev.ID.String())
	return channelID, nil
}

// ChannelName builds `dev-<user>-<developer>` from the first characters of
// both usernames.
func ChannelName(user, dev models.Member) string {
	return fmt.Sprintf("dev-%s-%s", truncate(user.Username, channelNamePartLength), truncate(dev.Username, channelNamePartLength))
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
