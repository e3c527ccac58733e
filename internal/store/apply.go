package store

import (
	"fmt"
	"strings"

	"devbot/internal/models"
)

func newTaskRecord(id int, req NewTask) models.Task {
	return models.Task{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    models.NormalizePriority(req.Priority),
		Status:      models.StatusOpen,
		CreatorID:   req.CreatorID,
	}
}

// applyTaskUpdate merges update into task, enforcing set-once fields.
func applyTaskUpdate(task *models.Task, update TaskUpdate) error {
	if update.Message != nil {
		ref := *update.Message
		current := task.Message()
		if !current.IsZero() && current != ref {
			return fmt.Errorf("message of task %d: %w", task.ID, ErrImmutableField)
		}
	}
	if update.ThreadID != nil {
		if task.ThreadID != 0 && task.ThreadID != *update.ThreadID {
			return fmt.Errorf("thread of task %d: %w", task.ID, ErrImmutableField)
		}
	}

	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.AssigneeID != nil {
		task.AssigneeID = *update.AssigneeID
	}
	if update.Message != nil {
		task.ChannelID = update.Message.ChannelID
		task.MessageID = update.Message.MessageID
	}
	if update.ThreadID != nil {
		task.ThreadID = *update.ThreadID
	}
	return nil
}

// applyConfigUpdate merges update into cfg. Last write wins per field;
// duplicate developers are suppressed and insertion order is kept.
func applyConfigUpdate(cfg *models.ServerConfig, update ConfigUpdate) {
	if update.LogsChannel != nil {
		cfg.LogsChannel = *update.LogsChannel
	}
	if update.TasksChannel != nil {
		cfg.TasksChannel = *update.TasksChannel
	}
	if update.DevCategory != nil {
		cfg.DevCategory = *update.DevCategory
	}
	if update.BoardChannel != nil {
		cfg.BoardChannel = *update.BoardChannel
	}
	if update.BoardMessage != nil {
		cfg.BoardMessage = *update.BoardMessage
	}
	if update.AIEnabled != nil {
		cfg.AIEnabled = *update.AIEnabled
	}

	for _, id := range update.AddDevelopers {
		if id == 0 || cfg.HasDeveloper(id) {
			continue
		}
		cfg.Developers = append(cfg.Developers, id)
	}
	if len(update.RemoveDevelopers) > 0 {
		remove := make(map[models.Snowflake]struct{}, len(update.RemoveDevelopers))
		for _, id := range update.RemoveDevelopers {
			remove[id] = struct{}{}
		}
		kept := make([]models.Snowflake, 0, len(cfg.Developers))
		for _, id := range cfg.Developers {
			if _, ok := remove[id]; ok {
				continue
			}
			kept = append(kept, id)
		}
		cfg.Developers = kept
	}
	if len(cfg.Developers) == 0 {
		cfg.Developers = nil
	}
}

func dedupeDevelopers(ids []models.Snowflake) []models.Snowflake {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[models.Snowflake]struct{}, len(ids))
	out := make([]models.Snowflake, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
