// Package lifecycle implements the task lifecycle: creation, assignment,
// status transitions, discussion threads and the aggregate board.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

// Surface renders tasks and boards on the chat platform. Implementations
// return apperr.ErrNotExist (possibly wrapped) when a target is gone.
type Surface interface {
	PostTaskCard(ctx context.Context, channelID models.Snowflake, task models.Task) (models.MessageRef, error)
	RefreshTaskCard(ctx context.Context, task models.Task) error
	StartThread(ctx context.Context, task models.Task) (models.Snowflake, error)
	PostThreadControls(ctx context.Context, threadID models.Snowflake, task models.Task) error
	PostToThread(ctx context.Context, threadID models.Snowflake, content string) error
	CloseThread(ctx context.Context, threadID models.Snowflake) error
	PostBoard(ctx context.Context, channelID models.Snowflake, board Board) (models.MessageRef, error)
	RefreshBoard(ctx context.Context, ref models.MessageRef, board Board) error
	DeleteMessage(ctx context.Context, ref models.MessageRef) error
}

// MemberResolver looks up guild members. A missing member is reported as
// apperr.ErrNotExist.
type MemberResolver interface {
	Member(ctx context.Context, guildID, userID models.Snowflake) (models.Member, error)
}

// AuditSink appends entries to the guild audit log. It is a no-op when the
// guild has no logs channel.
type AuditSink interface {
	Record(ctx context.Context, guildID models.Snowflake, entry models.AuditEntry) error
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Tasks   store.TaskStore
	Configs store.ConfigStore
	Surface Surface
	Members MemberResolver
	Audit   AuditSink
	Logger  *slog.Logger
}

// Engine runs lifecycle operations against the stores and the surface.
type Engine struct {
	tasks   store.TaskStore
	configs store.ConfigStore
	surface Surface
	members MemberResolver
	audit   AuditSink
	logger  *slog.Logger
}

// New builds an Engine. Audit may be nil.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	audit := deps.Audit
	if audit == nil {
		audit = discardAudit{}
	}
	return &Engine{
		tasks:   deps.Tasks,
		configs: deps.Configs,
		surface: deps.Surface,
		members: deps.Members,
		audit:   audit,
		logger:  logger.With("component", "lifecycle"),
	}
}

type discardAudit struct{}

func (discardAudit) Record(context.Context, models.Snowflake, models.AuditEntry) error { return nil }

// sideEffect logs the failure of a follow-up action taken after the state
// change was persisted.
func (e *Engine) sideEffect(guildID models.Snowflake, taskID int, action string, err error) {
	if err == nil {
		return
	}
	e.logger.Warn("follow-up action failed", "guild", guildID.String(), "task", taskID, "action", action, "error", err)
}

func (e *Engine) record(ctx context.Context, guildID models.Snowflake, taskID int, title, description string) {
	err := e.audit.Record(ctx, guildID, models.AuditEntry{Title: title, Description: description})
	e.sideEffect(guildID, taskID, "audit", err)
}

func taskError(taskID int, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(apperr.ErrCodeTaskNotFound, "Task not found.")
	}
	return storeError(fmt.Errorf("task %d: %w", taskID, err))
}

func storeError(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Internal(apperr.ErrCodeStoreFailure, err)
}

func surfaceError(message string, err error) error {
	return apperr.External(apperr.ErrCodeDiscordFailure, message, err)
}
