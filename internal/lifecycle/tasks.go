package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

// Draft is the user-supplied content of a new task.
type Draft struct {
	Title       string
	Description string
	Priority    string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return apperr.Malformed(apperr.ErrCodeMissingRequired, "Task title is required.")
	}
	checks := []struct {
		field string
		value string
		max   int
	}{
		{field: "Title", value: strings.TrimSpace(d.Title), max: models.TitleMaxLength},
		{field: "Description", value: d.Description, max: models.DescriptionMaxLength},
		{field: "Priority", value: strings.TrimSpace(d.Priority), max: models.PriorityMaxLength},
	}
	for _, check := range checks {
		if err := models.ValidateLength(check.field, check.value, check.max); err != nil {
			return apperr.Malformed(apperr.ErrCodeFieldTooLong, err.Error()+".")
		}
	}
	return nil
}

// Create stores a new task, posts its card into the tasks channel and records
// where the card lives.
func (e *Engine) Create(ctx context.Context, actor models.Actor, guildID models.Snowflake, draft Draft) (models.Task, error) {
	cfg, err := e.configs.GetConfig(ctx, guildID)
	if err != nil {
		return models.Task{}, storeError(err)
	}
	if cfg.TasksChannel.IsZero() {
		return models.Task{}, apperr.ConfigMissing(apperr.ErrCodeConfigMissing, "Tasks channel not configured. Ask an admin to run `/config channels`.")
	}
	if err := draft.validate(); err != nil {
		return models.Task{}, err
	}

	task, err := e.tasks.CreateTask(ctx, guildID, store.NewTask{
		CreatorID:   actor.UserID,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
	})
	if err != nil {
		return models.Task{}, storeError(err)
	}

	ref, err := e.surface.PostTaskCard(ctx, cfg.TasksChannel, task)
	if err != nil {
		if errors.Is(err, apperr.ErrNotExist) {
			return task, apperr.NotFound(apperr.ErrCodeChannelNotFound, "Configured tasks channel not found.")
		}
		return task, surfaceError(fmt.Sprintf("Task #%d was saved but its card could not be posted", task.ID), err)
	}
	task, err = e.tasks.UpdateTask(ctx, guildID, task.ID, store.TaskUpdate{Message: &ref})
	if err != nil {
		return task, taskError(task.ID, err)
	}

	e.record(ctx, guildID, task.ID,
		fmt.Sprintf("Task #%d created", task.ID),
		fmt.Sprintf("**Title:** %s\n**Creator:** %s", task.Title, actor.UserID.Mention()),
	)
	e.refreshBoard(ctx, guildID, task.ID)
	e.logger.Info("task created", "guild", guildID.String(), "task", task.ID, "creator", actor.UserID.String())
	return task, nil
}

// Assign sets the assignee of a task. Assigning someone other than the actor
// requires that user to be a member of the guild.
func (e *Engine) Assign(ctx context.Context, actor models.Actor, guildID models.Snowflake, taskID int, userID models.Snowflake) (models.Task, error) {
	if userID.IsZero() {
		return models.Task{}, apperr.Malformed(apperr.ErrCodeInvalidUserID, "Could not parse user ID.")
	}
	if userID != actor.UserID {
		if _, err := e.members.Member(ctx, guildID, userID); err != nil {
			if errors.Is(err, apperr.ErrNotExist) {
				return models.Task{}, apperr.NotFound(apperr.ErrCodeMemberNotFound, "User not found in this server.")
			}
			return models.Task{}, surfaceError("Could not look up that user", err)
		}
	}

	task, err := e.tasks.UpdateTask(ctx, guildID, taskID, store.TaskUpdate{AssigneeID: &userID})
	if err != nil {
		return models.Task{}, taskError(taskID, err)
	}

	e.sideEffect(guildID, taskID, "refresh card", e.refreshCard(ctx, task))
	description := "Assigned to " + userID.Mention()
	if userID != actor.UserID {
		description += " by " + actor.UserID.Mention()
	}
	e.record(ctx, guildID, taskID, fmt.Sprintf("Task #%d assigned", taskID), description)
	e.refreshBoard(ctx, guildID, taskID)
	return task, nil
}

// AssignByReference parses a mention or bare id and assigns the task to it.
func (e *Engine) AssignByReference(ctx context.Context, actor models.Actor, guildID models.Snowflake, taskID int, raw string) (models.Task, error) {
	userID, err := models.ParseUserReference(raw)
	if err != nil {
		return models.Task{}, apperr.Malformed(apperr.ErrCodeInvalidUserID, "Could not parse user ID.")
	}
	return e.Assign(ctx, actor, guildID, taskID, userID)
}

// ChangeStatus moves a task to In Progress or Completed. Completing requires
// the actor to be the assignee or to hold the manage-messages privilege.
func (e *Engine) ChangeStatus(ctx context.Context, actor models.Actor, guildID models.Snowflake, taskID int, status models.TaskStatus) (models.Task, error) {
	if status != models.StatusInProgress && status != models.StatusCompleted {
		return models.Task{}, apperr.Malformed(apperr.ErrCodeInvalidStatus, "Status must be In Progress or Completed.")
	}

	current, err := e.tasks.GetTask(ctx, guildID, taskID)
	if err != nil {
		return models.Task{}, taskError(taskID, err)
	}
	if current.Status == models.StatusCompleted {
		return current, apperr.Conflict(apperr.ErrCodeTaskCompleted, fmt.Sprintf("Task #%d is already completed.", taskID))
	}
	if status == models.StatusCompleted && !canComplete(actor, current) {
		return current, apperr.PermissionDenied(apperr.ErrCodePermissionDenied, "Only the assignee or a manager can mark this task as done.")
	}

	task, err := e.tasks.UpdateTask(ctx, guildID, taskID, store.TaskUpdate{Status: &status})
	if err != nil {
		return models.Task{}, taskError(taskID, err)
	}

	e.sideEffect(guildID, taskID, "refresh card", e.refreshCard(ctx, task))
	if status == models.StatusCompleted {
		if !task.ThreadID.IsZero() {
			err := e.surface.CloseThread(ctx, task.ThreadID)
			if errors.Is(err, apperr.ErrNotExist) {
				err = nil
			}
			e.sideEffect(guildID, taskID, "close thread", err)
		}
		e.record(ctx, guildID, taskID,
			fmt.Sprintf("Task #%d completed", taskID),
			fmt.Sprintf("**Title:** %s\n**Assignee:** %s\nMarked done by %s", task.Title, task.AssigneeLabel(), actor.UserID.Mention()),
		)
	} else {
		e.record(ctx, guildID, taskID,
			fmt.Sprintf("Task #%d status updated", taskID),
			fmt.Sprintf("New status: **%s** by %s", status, actor.UserID.Mention()),
		)
	}
	e.refreshBoard(ctx, guildID, taskID)
	e.logger.Info("task status changed", "guild", guildID.String(), "task", taskID, "status", string(status), "actor", actor.UserID.String())
	return task, nil
}

func canComplete(actor models.Actor, task models.Task) bool {
	if task.IsAssigned() && task.AssigneeID == actor.UserID {
		return true
	}
	return actor.CanManageTasks()
}

func (e *Engine) refreshCard(ctx context.Context, task models.Task) error {
	if task.Message().IsZero() {
		return nil
	}
	err := e.surface.RefreshTaskCard(ctx, task)
	if errors.Is(err, apperr.ErrNotExist) {
		return nil
	}
	return err
}

// Get returns one task.
func (e *Engine) Get(ctx context.Context, guildID models.Snowflake, taskID int) (models.Task, error) {
	task, err := e.tasks.GetTask(ctx, guildID, taskID)
	if err != nil {
		return models.Task{}, taskError(taskID, err)
	}
	return task, nil
}
