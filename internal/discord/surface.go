package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/apperr"
	"devbot/internal/contact"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
)

// Surface renders devbot state through the Discord REST API.
type Surface struct {
	session *discordgo.Session
	logger  *slog.Logger
}

var (
	_ lifecycle.Surface        = (*Surface)(nil)
	_ lifecycle.MemberResolver = (*Surface)(nil)
	_ contact.ChannelOpener    = (*Surface)(nil)
)

// NewSurface wraps an authenticated session. The gateway does not need to be
// open for REST calls.
func NewSurface(session *discordgo.Session, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{session: session, logger: logger.With("component", "discord")}
}

// NewRESTSession builds a bot session from a token without connecting to the
// gateway.
func NewRESTSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return session, nil
}

// classify maps REST failures onto apperr.ErrNotExist where the object is gone.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", apperr.ErrNotExist, err)
	}
	return err
}

func messageRef(msg *discordgo.Message) (models.MessageRef, error) {
	if msg == nil {
		return models.MessageRef{}, fmt.Errorf("discord returned no message")
	}
	channelID, err := models.ParseSnowflake(msg.ChannelID)
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("message channel id: %w", err)
	}
	messageID, err := models.ParseSnowflake(msg.ID)
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("message id: %w", err)
	}
	return models.MessageRef{ChannelID: channelID, MessageID: messageID}, nil
}

func (s *Surface) send(ctx context.Context, channelID models.Snowflake, data *discordgo.MessageSend) (models.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return models.MessageRef{}, err
	}
	msg, err := s.session.ChannelMessageSendComplex(channelID.String(), data, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, classify(err)
	}
	return messageRef(msg)
}

func (s *Surface) edit(ctx context.Context, ref models.MessageRef, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	embeds := []*discordgo.MessageEmbed{embed}
	edit := &discordgo.MessageEdit{
		ID:      ref.MessageID.String(),
		Channel: ref.ChannelID.String(),
		Embeds:  &embeds,
	}
	if components != nil {
		edit.Components = &components
	}
	_, err := s.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return classify(err)
}

// PostTaskCard posts the card of a new task with its assignment buttons.
func (s *Surface) PostTaskCard(ctx context.Context, channelID models.Snowflake, task models.Task) (models.MessageRef, error) {
	return s.send(ctx, channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{taskCardEmbed(task)},
		Components: taskCardComponents(task.ID),
	})
}

// RefreshTaskCard re-renders an existing card in place.
func (s *Surface) RefreshTaskCard(ctx context.Context, task models.Task) error {
	return s.edit(ctx, task.Message(), taskCardEmbed(task), taskCardComponents(task.ID))
}

// StartThread opens a public thread on the task card.
func (s *Surface) StartThread(ctx context.Context, task models.Task) (models.Snowflake, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ref := task.Message()
	thread, err := s.session.MessageThreadStartComplex(ref.ChannelID.String(), ref.MessageID.String(), &discordgo.ThreadStart{
		Name:                threadName(task),
		AutoArchiveDuration: threadArchiveMinutes,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, classify(err)
	}
	return models.ParseSnowflake(thread.ID)
}

// PostThreadControls posts the status buttons into a task thread.
func (s *Surface) PostThreadControls(ctx context.Context, threadID models.Snowflake, task models.Task) error {
	_, err := s.send(ctx, threadID, &discordgo.MessageSend{
		Content:    threadControlsContent(task),
		Components: threadControlsComponents(task.ID),
	})
	return err
}

// PostToThread posts plain text into a thread.
func (s *Surface) PostToThread(ctx context.Context, threadID models.Snowflake, content string) error {
	_, err := s.send(ctx, threadID, &discordgo.MessageSend{Content: content})
	return err
}

// CloseThread archives and locks a thread.
func (s *Surface) CloseThread(ctx context.Context, threadID models.Snowflake) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	yes := true
	_, err := s.session.ChannelEdit(threadID.String(), &discordgo.ChannelEdit{Archived: &yes, Locked: &yes}, discordgo.WithContext(ctx))
	return classify(err)
}

// PostBoard posts a new board message.
func (s *Surface) PostBoard(ctx context.Context, channelID models.Snowflake, board lifecycle.Board) (models.MessageRef, error) {
	return s.send(ctx, channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{boardEmbed(board)}})
}

// RefreshBoard edits the board message in place.
func (s *Surface) RefreshBoard(ctx context.Context, ref models.MessageRef, board lifecycle.Board) error {
	return s.edit(ctx, ref, boardEmbed(board), nil)
}

// DeleteMessage removes a message.
func (s *Surface) DeleteMessage(ctx context.Context, ref models.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classify(s.session.ChannelMessageDelete(ref.ChannelID.String(), ref.MessageID.String(), discordgo.WithContext(ctx)))
}

// PostEmbed posts an embed with optional components, used for panels and
// audit entries.
func (s *Surface) PostEmbed(ctx context.Context, channelID models.Snowflake, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	_, err := s.send(ctx, channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	return err
}

// PostMessage posts plain text into a channel.
func (s *Surface) PostMessage(ctx context.Context, channelID models.Snowflake, content string) error {
	_, err := s.send(ctx, channelID, &discordgo.MessageSend{Content: content})
	return err
}

// Member resolves a guild member.
func (s *Surface) Member(ctx context.Context, guildID, userID models.Snowflake) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return models.Member{}, err
	}
	member, err := s.session.GuildMember(guildID.String(), userID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return models.Member{}, classify(err)
	}
	return memberFromDiscord(member), nil
}

const memberChannelPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

// CreatePrivateChannel creates a text channel hidden from @everyone and
// visible to the listed members.
func (s *Surface) CreatePrivateChannel(ctx context.Context, guildID models.Snowflake, req contact.PrivateChannel) (models.Snowflake, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	overwrites := []*discordgo.PermissionOverwrite{
		// The @everyone role shares the guild id.
		{ID: guildID.String(), Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
	}
	for _, member := range req.Members {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    member.String(),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberChannelPermissions,
		})
	}
	channel, err := s.session.GuildChannelCreateComplex(guildID.String(), discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.CategoryID.String(),
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, classify(err)
	}
	return models.ParseSnowflake(channel.ID)
}

func memberFromDiscord(member *discordgo.Member) models.Member {
	if member == nil || member.User == nil {
		return models.Member{}
	}
	id, _ := models.ParseSnowflake(member.User.ID)
	display := member.Nick
	if display == "" {
		display = member.User.GlobalName
	}
	return models.Member{ID: id, Username: member.User.Username, DisplayName: display}
}
