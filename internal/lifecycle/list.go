package lifecycle

import (
	"context"

	"devbot/internal/models"
	"devbot/internal/store"
)

// Filter narrows a task listing. Zero fields match everything.
type Filter struct {
	Status     models.TaskStatus
	AssigneeID models.Snowflake
}

// Match reports whether task satisfies every set predicate.
func (f Filter) Match(task models.Task) bool {
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if !f.AssigneeID.IsZero() && task.AssigneeID != f.AssigneeID {
		return false
	}
	return true
}

// ApplyFilter returns the matching tasks sorted by id.
func ApplyFilter(tasks map[int]models.Task, filter Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range store.SortTasks(tasks) {
		if filter.Match(task) {
			out = append(out, task)
		}
	}
	return out
}

// List returns the guild's tasks matching filter, sorted by id.
func (e *Engine) List(ctx context.Context, guildID models.Snowflake, filter Filter) ([]models.Task, error) {
	tasks, err := e.tasks.ListTasks(ctx, guildID)
	if err != nil {
		return nil, storeError(err)
	}
	return ApplyFilter(tasks, filter), nil
}
