package lifecycle

import (
	"context"
	"errors"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

const (
	// BoardActiveLimit caps the active tasks listed on the board.
	BoardActiveLimit = 15
	// BoardCompletedLimit caps the completed ids shown by renderers.
	BoardCompletedLimit = 20
)

// Board is the aggregate view of a guild's tasks.
type Board struct {
	Active         []models.Task `json:"active"`
	ActiveTotal    int           `json:"active_total"`
	CompletedIDs   []int         `json:"completed_ids"`
	CompletedTotal int           `json:"completed_total"`
}

// Empty reports whether the guild has no tasks at all.
func (b Board) Empty() bool {
	return b.ActiveTotal == 0 && b.CompletedTotal == 0
}

// RecentCompleted returns the last n completed ids in ascending order.
func (b Board) RecentCompleted(n int) []int {
	if n <= 0 || len(b.CompletedIDs) <= n {
		return b.CompletedIDs
	}
	return b.CompletedIDs[len(b.CompletedIDs)-n:]
}

// BuildBoard derives the board from a guild's tasks.
func BuildBoard(tasks map[int]models.Task) Board {
	board := Board{Active: []models.Task{}, CompletedIDs: []int{}}
	for _, task := range store.SortTasks(tasks) {
		switch {
		case task.Status.IsActive():
			board.ActiveTotal++
			if len(board.Active) < BoardActiveLimit {
				board.Active = append(board.Active, task)
			}
		case task.Status == models.StatusCompleted:
			board.CompletedTotal++
			board.CompletedIDs = append(board.CompletedIDs, task.ID)
		}
	}
	return board
}

// Board computes the current board of a guild.
func (e *Engine) Board(ctx context.Context, guildID models.Snowflake) (Board, error) {
	tasks, err := e.tasks.ListTasks(ctx, guildID)
	if err != nil {
		return Board{}, storeError(err)
	}
	return BuildBoard(tasks), nil
}

// RefreshBoard re-renders the board message. It does nothing when no board is
// configured or the configured message is gone.
func (e *Engine) RefreshBoard(ctx context.Context, guildID models.Snowflake) error {
	cfg, err := e.configs.GetConfig(ctx, guildID)
	if err != nil {
		return storeError(err)
	}
	ref := cfg.Board()
	if ref.IsZero() {
		return nil
	}
	board, err := e.Board(ctx, guildID)
	if err != nil {
		return err
	}
	err = e.surface.RefreshBoard(ctx, ref, board)
	if errors.Is(err, apperr.ErrNotExist) {
		e.logger.Debug("board message vanished", "guild", guildID.String(), "channel", ref.ChannelID.String())
		return nil
	}
	if err != nil {
		return surfaceError("Could not update the task board", err)
	}
	return nil
}

func (e *Engine) refreshBoard(ctx context.Context, guildID models.Snowflake, taskID int) {
	e.sideEffect(guildID, taskID, "refresh board", e.RefreshBoard(ctx, guildID))
}

// RelocateBoard replaces the board with a new message in channelID.
func (e *Engine) RelocateBoard(ctx context.Context, actor models.Actor, guildID, channelID models.Snowflake) (models.MessageRef, error) {
	if !actor.CanManageServer() {
		return models.MessageRef{}, apperr.PermissionDenied(apperr.ErrCodePermissionDenied, "You need the Manage Server permission to do that.")
	}
	cfg, err := e.configs.GetConfig(ctx, guildID)
	if err != nil {
		return models.MessageRef{}, storeError(err)
	}

	if old := cfg.Board(); !old.IsZero() {
		err := e.surface.DeleteMessage(ctx, old)
		if err != nil && !errors.Is(err, apperr.ErrNotExist) {
			e.logger.Warn("delete old board failed", "guild", guildID.String(), "error", err)
		}
	}

	board, err := e.Board(ctx, guildID)
	if err != nil {
		return models.MessageRef{}, err
	}
	ref, err := e.surface.PostBoard(ctx, channelID, board)
	if err != nil {
		if errors.Is(err, apperr.ErrNotExist) {
			return models.MessageRef{}, apperr.NotFound(apperr.ErrCodeChannelNotFound, "Channel not found.")
		}
		return models.MessageRef{}, surfaceError("Could not post the task board", err)
	}

	if _, err := e.configs.UpdateConfig(ctx, guildID, store.ConfigUpdate{
		BoardChannel: &ref.ChannelID,
		BoardMessage: &ref.MessageID,
	}); err != nil {
		return ref, storeError(err)
	}
	e.logger.Info("task board relocated", "guild", guildID.String(), "channel", ref.ChannelID.String(), "message", ref.MessageID.String())
	return ref, nil
}
