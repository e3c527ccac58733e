package store

import (
	"context"
	"errors"

	"devbot/internal/models"
)

var (
	// ErrNotFound is returned when a task id does not exist in a guild.
	ErrNotFound = errors.New("task not found")
	// ErrImmutableField is returned when an update touches a set-once field
	// that already holds a different value.
	ErrImmutableField = errors.New("field is immutable once set")
)

// ConfigStore persists per-guild settings.
type ConfigStore interface {
	GetConfig(ctx context.Context, guildID models.Snowflake) (models.ServerConfig, error)
	UpdateConfig(ctx context.Context, guildID models.Snowflake, update ConfigUpdate) (models.ServerConfig, error)
}

// TaskStore persists per-guild tasks and their id counter.
type TaskStore interface {
	ListTasks(ctx context.Context, guildID models.Snowflake) (map[int]models.Task, error)
	GetTask(ctx context.Context, guildID models.Snowflake, id int) (models.Task, error)
	CreateTask(ctx context.Context, guildID models.Snowflake, task NewTask) (models.Task, error)
	UpdateTask(ctx context.Context, guildID models.Snowflake, id int, update TaskUpdate) (models.Task, error)
	Counter(ctx context.Context, guildID models.Snowflake) (int, error)
}

// Backend bundles both stores over one storage medium.
type Backend interface {
	ConfigStore
	TaskStore
	Close() error
}

// NewTask holds the caller-supplied fields of a new task.
type NewTask struct {
	CreatorID   models.Snowflake
	Title       string
	Description string
	Priority    string
}

// TaskUpdate lists the mutable field groups of a task. Nil means unchanged.
type TaskUpdate struct {
	Status *models.TaskStatus
	// AssigneeID set to a pointer to zero clears the assignee.
	AssigneeID *models.Snowflake
	// Message is set once, right after the card is first posted.
	Message *models.MessageRef
	// ThreadID is set once, when the discussion thread is opened.
	ThreadID *models.Snowflake
}

// ConfigUpdate lists the mutable fields of a guild config. Nil means unchanged.
type ConfigUpdate struct {
	LogsChannel      *models.Snowflake
	TasksChannel     *models.Snowflake
	DevCategory      *models.Snowflake
	BoardChannel     *models.Snowflake
	BoardMessage     *models.Snowflake
	AIEnabled        *bool
	AddDevelopers    []models.Snowflake
	RemoveDevelopers []models.Snowflake
}

var (
	_ Backend = (*FileStore)(nil)
	_ Backend = (*SQLStore)(nil)
)
