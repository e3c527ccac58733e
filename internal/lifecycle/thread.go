package lifecycle

import (
	"context"
	"errors"
	"strings"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

const workNotesHeader = "Work submission notes:"

// OpenThread returns the discussion thread of a task, starting one from the
// task card when none is recorded. The returned flag reports a new thread.
func (e *Engine) OpenThread(ctx context.Context, actor models.Actor, guildID models.Snowflake, taskID int) (models.Task, bool, error) {
	task, err := e.tasks.GetTask(ctx, guildID, taskID)
	if err != nil {
		return models.Task{}, false, taskError(taskID, err)
	}
	if !task.ThreadID.IsZero() {
		return task, false, nil
	}
	if task.Message().IsZero() {
		return task, false, apperr.NotFound(apperr.ErrCodeMessageNotFound, "Cannot locate task message to create a thread.")
	}

	threadID, err := e.surface.StartThread(ctx, task)
	if err != nil {
		if errors.Is(err, apperr.ErrNotExist) {
			return task, false, apperr.NotFound(apperr.ErrCodeMessageNotFound, "Cannot locate task message to create a thread.")
		}
		return task, false, surfaceError("Could not start the task thread", err)
	}

	updated, err := e.tasks.UpdateTask(ctx, guildID, taskID, store.TaskUpdate{ThreadID: &threadID})
	if errors.Is(err, store.ErrImmutableField) {
		// Another handler recorded a thread first; that one wins and ours is
		// closed so the task keeps a single discussion thread.
		e.sideEffect(guildID, taskID, "close duplicate thread", e.surface.CloseThread(ctx, threadID))
		existing, getErr := e.tasks.GetTask(ctx, guildID, taskID)
		if getErr != nil {
			return task, false, taskError(taskID, getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return task, false, taskError(taskID, err)
	}

	e.sideEffect(guildID, taskID, "thread controls", e.surface.PostThreadControls(ctx, threadID, updated))
	e.logger.Info("task thread opened", "guild", guildID.String(), "task", taskID, "thread", threadID.String(), "actor", actor.UserID.String())
	return updated, true, nil
}

// SubmitWorkNotes posts free-form notes into the task thread. It must be
// invoked from within that thread. Notes are not stored on the task.
func (e *Engine) SubmitWorkNotes(ctx context.Context, actor models.Actor, guildID models.Snowflake, taskID int, channelID models.Snowflake, notes string) error {
	task, err := e.tasks.GetTask(ctx, guildID, taskID)
	if err != nil {
		return taskError(taskID, err)
	}
	if task.ThreadID.IsZero() || task.ThreadID != channelID {
		return apperr.Malformed(apperr.ErrCodeWrongChannel, "This must be used inside the task thread.")
	}
	if err := models.ValidateLength("Notes", notes, models.NotesMaxLength); err != nil {
		return apperr.Malformed(apperr.ErrCodeFieldTooLong, err.Error()+".")
	}

	content := workNotesHeader
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		content += "\n" + trimmed
	}
	if err := e.surface.PostToThread(ctx, task.ThreadID, content); err != nil {
		if errors.Is(err, apperr.ErrNotExist) {
			return apperr.NotFound(apperr.ErrCodeChannelNotFound, "Task thread not found.")
		}
		return surfaceError("Could not post the notes", err)
	}
	e.logger.Debug("work notes submitted", "guild", guildID.String(), "task", taskID, "actor", actor.UserID.String())
	return nil
}
