package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/ai"
	"devbot/internal/apperr"
	"devbot/internal/contact"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
	"devbot/internal/settings"
)

const guildOnlyMessage = "This command must be used in a server."

// HandlerDeps are the services an interaction handler drives.
type HandlerDeps struct {
	Engine   *lifecycle.Engine
	Settings *settings.Service
	Contact  *contact.Service
	Relay    *ai.Relay
	Panels   embedPoster
	Logger   *slog.Logger
}

// Handler turns interactions into service calls and replies.
type Handler struct {
	engine   *lifecycle.Engine
	settings *settings.Service
	contact  *contact.Service
	relay    *ai.Relay
	panels   embedPoster
	logger   *slog.Logger
}

// NewHandler builds a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:   deps.Engine,
		settings: deps.Settings,
		contact:  deps.Contact,
		relay:    deps.Relay,
		panels:   deps.Panels,
		logger:   logger.With("component", "interactions"),
	}
}

// fail converts err into an ephemeral reply. Internal errors are logged at
// ERROR and shown generically.
func (h *Handler) fail(action string, req request, err error) reply {
	attrs := []any{"action", action, "guild", req.GuildID.String(), "user", req.Actor.UserID.String(), "code", apperr.CodeOf(err), "error", err}
	switch apperr.KindOf(err) {
	case apperr.KindInternal:
		h.logger.Error("interaction failed", attrs...)
	case apperr.KindExternalService:
		h.logger.Warn("interaction failed", attrs...)
	case apperr.KindPermissionDenied:
		h.logger.Warn("interaction refused", attrs...)
	default:
		h.logger.Debug("interaction rejected", attrs...)
	}
	return ephemeral(apperr.UserMessage(err))
}

// Dispatch handles one interaction. A reply without a response means the
// interaction is not ours.
func (h *Handler) Dispatch(ctx context.Context, i *discordgo.InteractionCreate) reply {
	req, ok := newRequest(i)
	if !ok {
		return ephemeral(guildOnlyMessage)
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return h.command(ctx, req, i.ApplicationCommandData())
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		return h.component(req, data.CustomID, data.Values)
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		return h.modal(ctx, req, data.CustomID, modalValues(data))
	}
	return reply{}
}

func (h *Handler) command(ctx context.Context, req request, data discordgo.ApplicationCommandInteractionData) reply {
	switch data.Name {
	case cmdTaskPanel:
		return h.taskPanel(ctx, req)
	case cmdTasks:
		return h.listTasks(ctx, req, options(data.Options))
	case cmdTasksBoard:
		return h.tasksBoard(req)
	case cmdConfig:
		sub, opts := subcommand(data)
		return h.config(ctx, req, sub, opts)
	case cmdDevPanel:
		sub, opts := subcommand(data)
		return h.devPanel(ctx, req, sub, opts)
	case cmdAIPanel:
		return h.aiPanel(ctx, req)
	}
	h.logger.Warn("unknown command", "command", data.Name)
	return ephemeral("Unknown command.")
}

func requireManageServer(actor models.Actor) error {
	if !actor.CanManageServer() {
		return apperr.PermissionDenied(apperr.ErrCodePermissionDenied, "You need the Manage Server permission to do that.")
	}
	return nil
}

func (h *Handler) postPanel(ctx context.Context, req request, action string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, done string) reply {
	if err := h.panels.PostEmbed(ctx, req.ChannelID, embed, components); err != nil {
		return h.fail(action, req, apperr.External(apperr.ErrCodeDiscordFailure, "Could not post the panel", err))
	}
	return ephemeral(done)
}

func (h *Handler) taskPanel(ctx context.Context, req request) reply {
	if err := requireManageServer(req.Actor); err != nil {
		return h.fail(cmdTaskPanel, req, err)
	}
	embed, components := taskPanel()
	return h.postPanel(ctx, req, cmdTaskPanel, embed, components, "Task panel created.")
}

func (h *Handler) listTasks(ctx context.Context, req request, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) reply {
	var filter lifecycle.Filter
	if raw := optionString(opts, "status"); raw != "" {
		status, err := models.ParseTaskStatus(raw)
		if err != nil {
			return h.fail(cmdTasks, req, apperr.Malformed(apperr.ErrCodeInvalidStatus, fmt.Sprintf("Unknown status %q.", raw)))
		}
		filter.Status = status
	}
	if optionBool(opts, "mine") {
		filter.AssigneeID = req.Actor.UserID
	}
	tasks, err := h.engine.List(ctx, req.GuildID, filter)
	if err != nil {
		return h.fail(cmdTasks, req, err)
	}
	if len(tasks) == 0 {
		return ephemeral("No tasks found with that filter.")
	}
	return embedReply(taskListEmbed(tasks), false)
}

func (h *Handler) tasksBoard(req request) reply {
	return deferredPrivate(func(ctx context.Context) reply {
		ref, err := h.engine.RelocateBoard(ctx, req.Actor, req.GuildID, req.ChannelID)
		if err != nil {
			return h.fail(cmdTasksBoard, req, err)
		}
		return ephemeral(fmt.Sprintf("Task board created/updated in %s.", ref.ChannelID.ChannelMention()))
	})
}

func (h *Handler) config(ctx context.Context, req request, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) reply {
	action := cmdConfig + " " + sub
	switch sub {
	case subChannels:
		var channels settings.Channels
		var err error
		if channels.Logs, err = optionID(opts, "logs_channel"); err != nil {
			return h.fail(action, req, err)
		}
		if channels.Tasks, err = optionID(opts, "tasks_channel"); err != nil {
			return h.fail(action, req, err)
		}
		if channels.DevCategory, err = optionID(opts, "dev_category"); err != nil {
			return h.fail(action, req, err)
		}
		if _, err := h.settings.SetChannels(ctx, req.Actor, req.GuildID, channels); err != nil {
			return h.fail(action, req, err)
		}
		return ephemeral("Configuration updated.")
	case subAI:
		enabled := optionBool(opts, "enabled")
		if _, err := h.settings.SetAI(ctx, req.Actor, req.GuildID, enabled); err != nil {
			return h.fail(action, req, err)
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		return ephemeral(fmt.Sprintf("AI helper %s for this server.", state))
	case subShow:
		cfg, err := h.settings.Show(ctx, req.GuildID)
		if err != nil {
			return h.fail(action, req, err)
		}
		return embedReply(configEmbed(cfg), true)
	}
	return ephemeral("Unknown command.")
}

func (h *Handler) devPanel(ctx context.Context, req request, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) reply {
	action := cmdDevPanel + " " + sub
	switch sub {
	case subAdd, subRemove:
		userID, err := optionID(opts, "user")
		if err != nil {
			return h.fail(action, req, err)
		}
		if userID.IsZero() {
			return h.fail(action, req, apperr.Malformed(apperr.ErrCodeMissingRequired, "A user is required."))
		}
		if sub == subAdd {
			if _, err := h.contact.AddDeveloper(ctx, req.Actor, req.GuildID, userID); err != nil {
				return h.fail(action, req, err)
			}
			return ephemeral(userID.Mention() + " added as a dev contact.")
		}
		if _, err := h.contact.RemoveDeveloper(ctx, req.Actor, req.GuildID, userID); err != nil {
			return h.fail(action, req, err)
		}
		return ephemeral(userID.Mention() + " removed from dev contacts.")
	case subPanel:
		devs, err := h.contact.PanelRoster(ctx, req.Actor, req.GuildID)
		if err != nil {
			return h.fail(action, req, err)
		}
		embed, components := devPanel(devs)
		return h.postPanel(ctx, req, action, embed, components, "Dev panel created.")
	}
	return ephemeral("Unknown command.")
}

func (h *Handler) aiPanel(ctx context.Context, req request) reply {
	if err := h.relay.CheckAvailable(ctx, req.GuildID); err != nil {
		return h.fail(cmdAIPanel, req, err)
	}
	embed, components := aiPanel()
	return h.postPanel(ctx, req, cmdAIPanel, embed, components, "AI panel created.")
}

func (h *Handler) component(req request, customID string, values []string) reply {
	r, err := parseRoute(customID)
	if err != nil {
		h.logger.Warn("unknown component", "custom_id", customID)
		return ephemeral("This control is no longer supported.")
	}
	switch r.Scope {
	case scopePanel:
		if r.Action == actionCreateTask {
			return modalReply(createTaskModal())
		}
	case scopeTask:
		return h.taskButton(req, r)
	case scopeAI:
		mode, err := ai.ParseMode(r.Action)
		if err != nil {
			return h.fail(customID, req, err)
		}
		return modalReply(aiModal(mode))
	case scopeDev:
		if r.Action == actionSelect {
			return h.openDevChannel(req, values)
		}
	}
	h.logger.Warn("unknown component", "custom_id", customID)
	return ephemeral("This control is no longer supported.")
}

func (h *Handler) taskButton(req request, r route) reply {
	action := r.String()
	taskID, err := r.TaskID()
	if err != nil {
		return h.fail(action, req, apperr.Malformed(apperr.ErrCodeInvalidArgument, "This control is no longer supported."))
	}
	switch r.Action {
	case actionAssignTo:
		return modalReply(assignModal(taskID))
	case actionSubmitWork:
		return modalReply(submitWorkModal(taskID))
	case actionAssignMe, actionOpenThread, actionInProgress, actionMarkDone:
		return deferredPrivate(func(ctx context.Context) reply {
			return h.runTaskAction(ctx, req, r.Action, taskID)
		})
	}
	return ephemeral("This control is no longer supported.")
}

func (h *Handler) runTaskAction(ctx context.Context, req request, act string, taskID int) reply {
	action := taskRoute(act, taskID).String()
	switch act {
	case actionAssignMe:
		if _, err := h.engine.Assign(ctx, req.Actor, req.GuildID, taskID, req.Actor.UserID); err != nil {
			return h.fail(action, req, err)
		}
		return ephemeral(fmt.Sprintf("Task #%d assigned to you.", taskID))
	case actionOpenThread:
		task, _, err := h.engine.OpenThread(ctx, req.Actor, req.GuildID, taskID)
		if err != nil {
			return h.fail(action, req, err)
		}
		return ephemeral("Task thread: " + task.ThreadID.ChannelMention())
	case actionInProgress:
		if _, err := h.engine.ChangeStatus(ctx, req.Actor, req.GuildID, taskID, models.StatusInProgress); err != nil {
			return h.fail(action, req, err)
		}
		return ephemeral(fmt.Sprintf("Status updated to %s.", models.StatusInProgress))
	case actionMarkDone:
		if _, err := h.engine.ChangeStatus(ctx, req.Actor, req.GuildID, taskID, models.StatusCompleted); err != nil {
			return h.fail(action, req, err)
		}
		return ephemeral("Task marked as completed and logged.")
	}
	return ephemeral("This control is no longer supported.")
}

func (h *Handler) openDevChannel(req request, values []string) reply {
	if len(values) == 0 {
		return h.fail("dev select", req, apperr.Malformed(apperr.ErrCodeMissingRequired, "Select a developer."))
	}
	devID, err := models.ParseSnowflake(values[0])
	if err != nil {
		return h.fail("dev select", req, apperr.Malformed(apperr.ErrCodeInvalidUserID, "Could not parse user ID."))
	}
	return deferredPrivate(func(ctx context.Context) reply {
		channelID, err := h.contact.Open(ctx, req.Actor, req.GuildID, devID)
		if err != nil {
			return h.fail("dev select", req, err)
		}
		return ephemeral("Private dev channel created: " + channelID.ChannelMention())
	})
}

func (h *Handler) modal(ctx context.Context, req request, customID string, values map[string]string) reply {
	r, err := parseRoute(customID)
	if err != nil || r.Scope != scopeModal {
		h.logger.Warn("unknown modal", "custom_id", customID)
		return ephemeral("This form is no longer supported.")
	}
	switch r.Action {
	case actionCreateTask:
		draft := lifecycle.Draft{
			Title:       values[fieldTitle],
			Description: values[fieldDescription],
			Priority:    values[fieldPriority],
		}
		return deferredPrivate(func(ctx context.Context) reply {
			task, err := h.engine.Create(ctx, req.Actor, req.GuildID, draft)
			if err != nil {
				return h.fail(customID, req, err)
			}
			return ephemeral(fmt.Sprintf("Task #%d created in %s.", task.ID, task.ChannelID.ChannelMention()))
		})
	case actionAssign:
		taskID, err := r.TaskID()
		if err != nil {
			return h.fail(customID, req, apperr.Malformed(apperr.ErrCodeInvalidArgument, "This form is no longer supported."))
		}
		return deferredPrivate(func(ctx context.Context) reply {
			task, err := h.engine.AssignByReference(ctx, req.Actor, req.GuildID, taskID, values[fieldUser])
			if err != nil {
				return h.fail(customID, req, err)
			}
			return ephemeral(fmt.Sprintf("Task #%d assigned to %s.", taskID, task.AssigneeID.Mention()))
		})
	case actionSubmitWork:
		taskID, err := r.TaskID()
		if err != nil {
			return h.fail(customID, req, apperr.Malformed(apperr.ErrCodeInvalidArgument, "This form is no longer supported."))
		}
		notes := values[fieldNotes]
		return deferredPrivate(func(ctx context.Context) reply {
			if err := h.engine.SubmitWorkNotes(ctx, req.Actor, req.GuildID, taskID, req.ChannelID, notes); err != nil {
				return h.fail(customID, req, err)
			}
			return ephemeral("Submission notes recorded. Attach your images/files in this thread as messages.")
		})
	case actionAsk:
		return h.ask(ctx, req, r.Arg, values[fieldQuestion])
	}
	h.logger.Warn("unknown modal", "custom_id", customID)
	return ephemeral("This form is no longer supported.")
}

func (h *Handler) ask(ctx context.Context, req request, rawMode, question string) reply {
	mode, err := ai.ParseMode(rawMode)
	if err != nil {
		return h.fail("ai", req, err)
	}
	if err := h.relay.CheckAvailable(ctx, req.GuildID); err != nil {
		return h.fail("ai", req, err)
	}
	return deferred(func(ctx context.Context) *discordgo.WebhookParams {
		answer, err := h.relay.Ask(ctx, req.GuildID, mode, question)
		if err != nil {
			return followupParams(h.fail("ai "+string(mode), req, err))
		}
		return &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{aiReplyEmbed(mode, answer, req.UserName)},
		}
	})
}
