package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/apperr"
	"devbot/internal/models"
)

// request is the part of an interaction every handler needs.
type request struct {
	GuildID   models.Snowflake
	ChannelID models.Snowflake
	Actor     models.Actor
	UserName  string
}

// reply is what a handler wants sent back. followup runs after the initial
// response when it is deferred.
type reply struct {
	response *discordgo.InteractionResponse
	followup func(ctx context.Context) *discordgo.WebhookParams
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func actorFromMember(userID models.Snowflake, member *discordgo.Member) models.Actor {
	actor := models.Actor{UserID: userID}
	if member == nil {
		return actor
	}
	perms := member.Permissions
	actor.Admin = perms&discordgo.PermissionAdministrator != 0
	actor.ManageServer = perms&discordgo.PermissionManageServer != 0
	actor.ManageMessages = perms&discordgo.PermissionManageMessages != 0
	return actor
}

// newRequest extracts the guild, channel and actor. ok is false outside a guild.
func newRequest(i *discordgo.InteractionCreate) (request, bool) {
	user := interactionUser(i)
	if user == nil || i.GuildID == "" {
		return request{}, false
	}
	guildID, err := models.ParseSnowflake(i.GuildID)
	if err != nil {
		return request{}, false
	}
	userID, err := models.ParseSnowflake(user.ID)
	if err != nil {
		return request{}, false
	}
	channelID, _ := models.ParseSnowflake(i.ChannelID)
	return request{
		GuildID:   guildID,
		ChannelID: channelID,
		Actor:     actorFromMember(userID, i.Member),
		UserName:  user.Username,
	}, true
}

func message(content string, private bool) reply {
	data := &discordgo.InteractionResponseData{Content: content}
	if private {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return reply{response: &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}}
}

func ephemeral(content string) reply {
	return message(content, true)
}

func embedReply(embed *discordgo.MessageEmbed, private bool) reply {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if private {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return reply{response: &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}}
}

func modalReply(response *discordgo.InteractionResponse) reply {
	return reply{response: response}
}

func deferred(followup func(ctx context.Context) *discordgo.WebhookParams) reply {
	return reply{
		response: &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource},
		followup: followup,
	}
}

// deferredPrivate acknowledges with an ephemeral loading state before work
// runs, so slow REST calls cannot miss the acknowledgement window. The reply
// work returns is delivered as the followup.
func deferredPrivate(work func(ctx context.Context) reply) reply {
	return reply{
		response: &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		},
		followup: func(ctx context.Context) *discordgo.WebhookParams {
			return followupParams(work(ctx))
		},
	}
}

// followupParams turns a message reply into webhook params for a followup.
func followupParams(r reply) *discordgo.WebhookParams {
	if r.response == nil || r.response.Data == nil {
		return nil
	}
	return &discordgo.WebhookParams{
		Content: r.response.Data.Content,
		Embeds:  r.response.Data.Embeds,
		Flags:   r.response.Data.Flags,
	}
}

// options indexes command options by name.
func options(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		if opt != nil {
			out[opt.Name] = opt
		}
	}
	return out
}

func optionString(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	opt, ok := opts[name]
	if !ok {
		return ""
	}
	value, _ := opt.Value.(string)
	return strings.TrimSpace(value)
}

func optionBool(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	opt, ok := opts[name]
	if !ok {
		return false
	}
	value, _ := opt.Value.(bool)
	return value
}

// optionID reads a user, channel or role option; Discord sends those as
// snowflake strings.
func optionID(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (models.Snowflake, error) {
	raw := optionString(opts, name)
	if raw == "" {
		return 0, nil
	}
	id, err := models.ParseSnowflake(raw)
	if err != nil {
		return 0, apperr.Malformed(apperr.ErrCodeInvalidArgument, "Invalid "+strings.ReplaceAll(name, "_", " ")+".")
	}
	return id, nil
}

// subcommand splits a grouped command into its subcommand name and options.
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range data.Options {
		if opt != nil && opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt.Name, options(opt.Options)
		}
	}
	return "", options(data.Options)
}

// modalValues collects text input values of a modal submission by custom id.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := map[string]string{}
	for _, row := range data.Components {
		var inner []discordgo.MessageComponent
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			inner = r.Components
		case discordgo.ActionsRow:
			inner = r.Components
		}
		for _, component := range inner {
			switch input := component.(type) {
			case *discordgo.TextInput:
				values[input.CustomID] = input.Value
			case discordgo.TextInput:
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}
