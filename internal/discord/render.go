package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/ai"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
	"devbot/internal/settings"
)

const (
	colorTask      = 0xE67E22
	colorPanel     = 0x5865F2
	colorList      = 0x3498DB
	colorBoard     = 0x1ABC9C
	colorAudit     = 0x607D8B
	colorDevPanel  = 0x2ECC71
	colorAI        = 0x9B59B6
	listTaskLimit  = 20
	threadNameSize = 50
	// threadArchiveMinutes is the auto-archive window of task threads.
	threadArchiveMinutes = 1440
)

func taskSummary(task models.Task) string {
	return fmt.Sprintf("**Title:** %s\n**Status:** %s | **Priority:** %s\n**Assignee:** %s",
		task.Title, task.Status, task.Priority, task.AssigneeLabel())
}

func taskCardEmbed(task models.Task) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("[Task #%d] %s", task.ID, task.Title),
		Description: task.Description,
		Color:       colorTask,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Priority", Value: task.Priority, Inline: true},
			{Name: "Status", Value: string(task.Status), Inline: true},
			{Name: "Assignee", Value: task.AssigneeLabel(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Creator ID: " + task.CreatorID.String()},
	}
}

func taskCardComponents(taskID int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Assign to Me", Style: discordgo.PrimaryButton, CustomID: taskRoute(actionAssignMe, taskID).String()},
			discordgo.Button{Label: "Assign to Someone", Style: discordgo.SecondaryButton, CustomID: taskRoute(actionAssignTo, taskID).String()},
			discordgo.Button{Label: "Open Task Thread", Style: discordgo.SuccessButton, CustomID: taskRoute(actionOpenThread, taskID).String()},
		}},
	}
}

func threadName(task models.Task) string {
	return fmt.Sprintf("Task #%d - %s", task.ID, ai.Truncate(task.Title, threadNameSize))
}

func threadControlsContent(task models.Task) string {
	return fmt.Sprintf("Thread for **Task #%d**.\nUse this thread to post updates, images, and final work.", task.ID)
}

func threadControlsComponents(taskID int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Mark In Progress", Style: discordgo.PrimaryButton, CustomID: taskRoute(actionInProgress, taskID).String()},
			discordgo.Button{Label: "Submit Work", Style: discordgo.SecondaryButton, CustomID: taskRoute(actionSubmitWork, taskID).String()},
			discordgo.Button{Label: "Mark Done", Style: discordgo.SuccessButton, CustomID: taskRoute(actionMarkDone, taskID).String()},
		}},
	}
}

func boardEmbed(board lifecycle.Board) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: "Task Board", Color: colorBoard}
	if board.Empty() {
		embed.Description = "No tasks yet."
		return embed
	}
	embed.Description = fmt.Sprintf("Open/In Progress: %d | Completed: %d", board.ActiveTotal, board.CompletedTotal)
	for _, task := range board.Active {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Task #%d", task.ID),
			Value: taskSummary(task),
		})
	}
	if recent := board.RecentCompleted(lifecycle.BoardCompletedLimit); len(recent) > 0 {
		ids := make([]string, 0, len(recent))
		for _, id := range recent {
			ids = append(ids, fmt.Sprintf("#%d", id))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recently Completed",
			Value: strings.Join(ids, ", "),
		})
	}
	return embed
}

func taskListEmbed(tasks []models.Task) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Task List",
		Description: fmt.Sprintf("Found %d task(s).", len(tasks)),
		Color:       colorList,
	}
	for i, task := range tasks {
		if i == listTaskLimit {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Task #%d", task.ID),
			Value: taskSummary(task),
		})
	}
	return embed
}

func auditEmbed(entry models.AuditEntry) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: entry.Title, Description: entry.Description, Color: colorAudit}
}

func configEmbed(cfg models.ServerConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Server Configuration",
		Description: settings.Describe(cfg),
		Color:       colorPanel,
	}
}

func taskPanel() (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "Task Management Panel",
		Description: "Use the buttons below to create and manage tasks.\n\n" +
			"**Flow:**\n" +
			"1. Click **Create Task**\n" +
			"2. Assign the task and open its thread\n" +
			"3. Use the thread buttons to update status and submit work\n" +
			"4. When done, mark it completed (auto-logged & board updated)",
		Color: colorPanel,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Create Task", Style: discordgo.SuccessButton, CustomID: route{Scope: scopePanel, Action: actionCreateTask}.String()},
		}},
	}
	return embed, components
}

func devPanel(developers []models.Snowflake) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "Contact a Developer",
		Description: "Use the dropdown below to open a private channel with a developer.\n" +
			"Only you, the selected developer, and optionally admins will see it.",
		Color: colorDevPanel,
	}
	options := make([]discordgo.SelectMenuOption, 0, len(developers))
	for _, id := range developers {
		options = append(options, discordgo.SelectMenuOption{
			Label:       id.String(),
			Value:       id.String(),
			Description: "Developer",
		})
	}
	one := 1
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    route{Scope: scopeDev, Action: actionSelect}.String(),
				Placeholder: "Select a developer to contact...",
				MinValues:   &one,
				MaxValues:   1,
				Options:     options,
			},
		}},
	}
	return embed, components
}

var aiButtonStyles = map[ai.Mode]discordgo.ButtonStyle{
	ai.ModeBrainstorm: discordgo.PrimaryButton,
	ai.ModeBreakdown:  discordgo.SecondaryButton,
	ai.ModeGeneral:    discordgo.SuccessButton,
}

func aiPanel() (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: "AI Helper (Gemini)",
		Description: "Use the buttons below to:\n" +
			"- Brainstorm new ideas (mechanics, levels, systems)\n" +
			"- Break down complex tasks into steps\n" +
			"- Ask general questions about game dev / scripting\n\n" +
			"Responses will appear publicly in this channel.",
		Color: colorAI,
	}
	buttons := make([]discordgo.MessageComponent, 0, len(ai.Modes()))
	for _, mode := range ai.Modes() {
		buttons = append(buttons, discordgo.Button{
			Label:    mode.Label(),
			Style:    aiButtonStyles[mode],
			CustomID: route{Scope: scopeAI, Action: string(mode)}.String(),
		})
	}
	return embed, []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func aiReplyEmbed(mode ai.Mode, reply, requester string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       mode.Title(),
		Description: reply,
		Color:       colorAI,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Requested by " + requester},
	}
}

func textInput(id, label, placeholder string, style discordgo.TextInputStyle, required bool, maxLength int) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    id,
			Label:       label,
			Style:       style,
			Placeholder: placeholder,
			Required:    required,
			MaxLength:   maxLength,
		},
	}}
}

func modal(id route, title string, inputs ...discordgo.MessageComponent) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   id.String(),
			Title:      title,
			Components: inputs,
		},
	}
}

func createTaskModal() *discordgo.InteractionResponse {
	return modal(route{Scope: scopeModal, Action: actionCreateTask}, "Create New Task",
		textInput(fieldTitle, "Task Title", "e.g. Implement enemy AI behavior", discordgo.TextInputShort, true, models.TitleMaxLength),
		textInput(fieldDescription, "Task Description", "Describe the task details, requirements, notes...", discordgo.TextInputParagraph, true, models.DescriptionMaxLength),
		textInput(fieldPriority, "Priority (Low/Medium/High)", models.DefaultPriority, discordgo.TextInputShort, false, models.PriorityMaxLength),
	)
}

func assignModal(taskID int) *discordgo.InteractionResponse {
	return modal(taskModalRoute(actionAssign, taskID), "Assign Task to Someone",
		textInput(fieldUser, "User ID or mention", "Paste user ID or mention the user in the channel.", discordgo.TextInputShort, true, 50),
	)
}

func submitWorkModal(taskID int) *discordgo.InteractionResponse {
	return modal(taskModalRoute(actionSubmitWork, taskID), "Submit Work for Task",
		textInput(fieldNotes, "Summary / Notes (optional)", "", discordgo.TextInputParagraph, false, models.NotesMaxLength),
	)
}

func aiModal(mode ai.Mode) *discordgo.InteractionResponse {
	return modal(route{Scope: scopeModal, Action: actionAsk, Arg: string(mode)}, mode.Label(),
		textInput(fieldQuestion, "Describe what you need help with", "", discordgo.TextInputParagraph, true, 2000),
	)
}
