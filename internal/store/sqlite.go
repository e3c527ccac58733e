package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"devbot/internal/models"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute

	maxOpenConnsEnvKey    = "DEVBOT_SQLITE_MAX_OPEN_CONNS"
	connMaxLifetimeEnvKey = "DEVBOT_SQLITE_CONN_MAX_LIFETIME"
)

// SQLStore keeps guild configs and tasks in SQLite.
type SQLStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens the database at path and bootstraps the schema.
func OpenSQLite(path string) (*SQLStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := bootstrapSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	db.SetMaxOpenConns(intFromEnv(maxOpenConnsEnvKey, maxOpenConns))
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(durationFromEnv(connMaxLifetimeEnvKey, connMaxLifetime))

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// durationFromEnv accepts Go durations ("45s") or bare seconds ("30").
func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return fallback
		}
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func nullID(id models.Snowflake) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

func idFromNull(value sql.NullInt64) models.Snowflake {
	if !value.Valid {
		return 0
	}
	return models.Snowflake(value.Int64)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetConfig returns the stored config for guildID, or an empty one.
func (s *SQLStore) GetConfig(ctx context.Context, guildID models.Snowflake) (models.ServerConfig, error) {
	return loadConfig(ctx, s.db, guildID)
}

func loadConfig(ctx context.Context, q queryer, guildID models.Snowflake) (models.ServerConfig, error) {
	var (
		cfg                                   models.ServerConfig
		logs, tasks, category, board, message sql.NullInt64
		aiEnabled                             int
	)
	err := q.QueryRowContext(ctx, `
		SELECT logs_channel_id, tasks_channel_id, dev_category_id, task_board_channel_id, task_board_message_id, ai_enabled
		FROM guild_config WHERE guild_id = ?
	`, int64(guildID)).Scan(&logs, &tasks, &category, &board, &message, &aiEnabled)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return cfg, err
	}
	cfg.LogsChannel = idFromNull(logs)
	cfg.TasksChannel = idFromNull(tasks)
	cfg.DevCategory = idFromNull(category)
	cfg.BoardChannel = idFromNull(board)
	cfg.BoardMessage = idFromNull(message)
	cfg.AIEnabled = aiEnabled != 0

	rows, err := q.QueryContext(ctx, `
		SELECT user_id FROM guild_developers WHERE guild_id = ? ORDER BY position
	`, int64(guildID))
	if err != nil {
		return cfg, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return cfg, err
		}
		cfg.Developers = append(cfg.Developers, models.Snowflake(userID))
	}
	return cfg, rows.Err()
}

// UpdateConfig merges update into the guild config inside one transaction.
func (s *SQLStore) UpdateConfig(ctx context.Context, guildID models.Snowflake, update ConfigUpdate) (cfg models.ServerConfig, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cfg, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cfg, err = loadConfig(ctx, tx, guildID)
	if err != nil {
		return cfg, err
	}
	applyConfigUpdate(&cfg, update)

	aiEnabled := 0
	if cfg.AIEnabled {
		aiEnabled = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO guild_config (
			guild_id, logs_channel_id, tasks_channel_id, dev_category_id, task_board_channel_id, task_board_message_id, ai_enabled
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			logs_channel_id = excluded.logs_channel_id,
			tasks_channel_id = excluded.tasks_channel_id,
			dev_category_id = excluded.dev_category_id,
			task_board_channel_id = excluded.task_board_channel_id,
			task_board_message_id = excluded.task_board_message_id,
			ai_enabled = excluded.ai_enabled
	`,
		int64(guildID),
		nullID(cfg.LogsChannel),
		nullID(cfg.TasksChannel),
		nullID(cfg.DevCategory),
		nullID(cfg.BoardChannel),
		nullID(cfg.BoardMessage),
		aiEnabled,
	)
	if err != nil {
		return cfg, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM guild_developers WHERE guild_id = ?`, int64(guildID)); err != nil {
		return cfg, err
	}
	for position, dev := range cfg.Developers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO guild_developers (guild_id, user_id, position) VALUES (?, ?, ?)
		`, int64(guildID), int64(dev), position)
		if err != nil {
			return cfg, err
		}
	}

	if err = tx.Commit(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

const taskColumns = `id, title, description, priority, status, creator_id, assignee_id, channel_id, message_id, thread_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task                                  models.Task
		status                                string
		creator                               int64
		assignee, channel, message, threadCol sql.NullInt64
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&status,
		&creator,
		&assignee,
		&channel,
		&message,
		&threadCol,
	); err != nil {
		return models.Task{}, err
	}
	task.Status = models.TaskStatus(status)
	task.CreatorID = models.Snowflake(creator)
	task.AssigneeID = idFromNull(assignee)
	task.ChannelID = idFromNull(channel)
	task.MessageID = idFromNull(message)
	task.ThreadID = idFromNull(threadCol)
	return task, nil
}

// ListTasks returns every task of the guild keyed by id.
func (s *SQLStore) ListTasks(ctx context.Context, guildID models.Snowflake) (map[int]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE guild_id = ?
	`, int64(guildID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out[task.ID] = task
	}
	return out, rows.Err()
}

// GetTask returns one task or ErrNotFound.
func (s *SQLStore) GetTask(ctx context.Context, guildID models.Snowflake, id int) (models.Task, error) {
	return getTask(ctx, s.db, guildID, id)
}

func getTask(ctx context.Context, q queryer, guildID models.Snowflake, id int) (models.Task, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE guild_id = ? AND id = ?
	`, int64(guildID), id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return task, err
}

// CreateTask increments the guild counter and inserts the task in one transaction.
func (s *SQLStore) CreateTask(ctx context.Context, guildID models.Snowflake, req NewTask) (task models.Task, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO task_counters (guild_id, counter) VALUES (?, 1)
		ON CONFLICT(guild_id) DO UPDATE SET counter = counter + 1
		RETURNING counter
	`, int64(guildID)).Scan(&id)
	if err != nil {
		return task, err
	}

	task = newTaskRecord(id, req)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (
			guild_id, id, title, description, priority, status, creator_id, assignee_id, channel_id, message_id, thread_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, NULL)
	`,
		int64(guildID),
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		string(task.Status),
		int64(task.CreatorID),
	)
	if err != nil {
		return task, err
	}

	if err = tx.Commit(); err != nil {
		return task, err
	}
	return task, nil
}

// UpdateTask applies update to an existing task. Unknown ids are not created.
func (s *SQLStore) UpdateTask(ctx context.Context, guildID models.Snowflake, id int, update TaskUpdate) (task models.Task, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	task, err = getTask(ctx, tx, guildID, id)
	if err != nil {
		return models.Task{}, err
	}
	if err = applyTaskUpdate(&task, update); err != nil {
		return models.Task{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, assignee_id = ?, channel_id = ?, message_id = ?, thread_id = ?
		WHERE guild_id = ? AND id = ?
	`,
		string(task.Status),
		nullID(task.AssigneeID),
		nullID(task.ChannelID),
		nullID(task.MessageID),
		nullID(task.ThreadID),
		int64(guildID),
		id,
	)
	if err != nil {
		return models.Task{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Counter returns the last allocated task id of the guild.
func (s *SQLStore) Counter(ctx context.Context, guildID models.Snowflake) (int, error) {
	var counter int
	err := s.db.QueryRowContext(ctx, `SELECT counter FROM task_counters WHERE guild_id = ?`, int64(guildID)).Scan(&counter)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return counter, err
}
