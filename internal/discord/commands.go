package discord

import (
	"github.com/bwmarrin/discordgo"

	"devbot/internal/models"
)

const (
	cmdTaskPanel  = "taskpanel"
	cmdTasks      = "tasks"
	cmdTasksBoard = "tasksboard"
	cmdConfig     = "config"
	cmdDevPanel   = "devpanel"
	cmdAIPanel    = "aipanel"

	subChannels = "channels"
	subAI       = "ai"
	subShow     = "show"
	subAdd      = "add"
	subRemove   = "remove"
	subPanel    = "panel"
)

// Commands returns the slash commands registered by the bot.
func Commands() []*discordgo.ApplicationCommand {
	manageServer := int64(discordgo.PermissionManageServer)
	admin := int64(discordgo.PermissionAdministrator)
	guildOnly := false

	statusChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 3)
	for _, status := range models.TaskStatusStrings() {
		statusChoices = append(statusChoices, &discordgo.ApplicationCommandOptionChoice{Name: status, Value: status})
	}

	devUser := func(description string) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: description,
			Required:    true,
		}}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:                     cmdTaskPanel,
			Description:              "Post the Task Management Panel in this channel.",
			DefaultMemberPermissions: &manageServer,
			DMPermission:             &guildOnly,
		},
		{
			Name:         cmdTasks,
			Description:  "List tasks for this server.",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "status",
					Description: "Filter by status (Open, In Progress, Completed)",
					Choices:     statusChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "mine",
					Description: "Only show tasks assigned to you",
				},
			},
		},
		{
			Name:                     cmdTasksBoard,
			Description:              "Set or create the persistent task board in this channel.",
			DefaultMemberPermissions: &manageServer,
			DMPermission:             &guildOnly,
		},
		{
			Name:                     cmdConfig,
			Description:              "Configure the dev bot for this server.",
			DefaultMemberPermissions: &admin,
			DMPermission:             &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subChannels,
					Description: "Set logs and task channels.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "logs_channel",
							Description:  "Channel for logging actions",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "tasks_channel",
							Description:  "Channel where task panels/messages are posted",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "dev_category",
							Description:  "Category where private dev channels are created",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subAI,
					Description: "Enable/disable AI helper.",
					Options: []*discordgo.ApplicationCommandOption{{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "enabled",
						Description: "Enable (true) or disable (false) AI helper.",
						Required:    true,
					}},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subShow,
					Description: "Show current config.",
				},
			},
		},
		{
			Name:                     cmdDevPanel,
			Description:              "Configure and use the dev contact panel.",
			DefaultMemberPermissions: &manageServer,
			DMPermission:             &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subAdd,
					Description: "Add a developer to the dev contact list.",
					Options:     devUser("Developer to add"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subRemove,
					Description: "Remove a developer from the dev contact list.",
					Options:     devUser("Developer to remove"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subPanel,
					Description: "Post the dev contact panel in this channel.",
				},
			},
		},
		{
			Name:         cmdAIPanel,
			Description:  "Post the AI helper panel (Gemini) in this channel.",
			DMPermission: &guildOnly,
		},
	}
}
