package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"devbot/internal/models"
)

const (
	ConfigFileName = "server_config.json"
	TasksFileName  = "tasks.json"
)

// FileStore keeps guild configs and tasks in two JSON documents under a data
// directory. Every mutation rewrites the whole document.
type FileStore struct {
	mu         sync.Mutex
	configPath string
	tasksPath  string
	logger     *slog.Logger
}

// NewFileStore prepares a file store rooted at dataDir.
func NewFileStore(dataDir string, logger *slog.Logger) (*FileStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		configPath: filepath.Join(dataDir, ConfigFileName),
		tasksPath:  filepath.Join(dataDir, TasksFileName),
		logger:     logger.With("component", "store", "backend", "json"),
	}, nil
}

// Close is a no-op; files are not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// readDocument decodes path into dst and reports whether dst holds a complete
// document. A missing or unparsable file is not an error; callers must drop
// dst when it returns false since json.Unmarshal may have filled it partially.
func (s *FileStore) readDocument(path string, dst any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read document failed, using empty state", "path", path, "error", err)
		}
		return false
	}
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("document is not valid JSON, using empty state", "path", path, "error", err)
		return false
	}
	return true
}

func (s *FileStore) loadConfigs() configDocument {
	var doc configDocument
	if !s.readDocument(s.configPath, &doc) || doc == nil {
		return configDocument{}
	}
	return doc
}

func (s *FileStore) loadTasks() taskDocument {
	var doc taskDocument
	if !s.readDocument(s.tasksPath, &doc) || doc == nil {
		return taskDocument{}
	}
	return doc
}

// GetConfig returns the stored config for guildID, or an empty one.
func (s *FileStore) GetConfig(ctx context.Context, guildID models.Snowflake) (models.ServerConfig, error) {
	if err := ctx.Err(); err != nil {
		return models.ServerConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadConfigs()
	return configFromRecord(doc[guildKey(guildID)]), nil
}

// UpdateConfig merges update into the guild config and persists the document.
func (s *FileStore) UpdateConfig(ctx context.Context, guildID models.Snowflake, update ConfigUpdate) (models.ServerConfig, error) {
	if err := ctx.Err(); err != nil {
		return models.ServerConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadConfigs()
	key := guildKey(guildID)
	previous := doc[key]
	cfg := configFromRecord(previous)
	applyConfigUpdate(&cfg, update)
	doc[key] = recordFromConfig(cfg, previous)

	if err := writeJSONAtomic(s.configPath, doc); err != nil {
		return models.ServerConfig{}, fmt.Errorf("save config: %w", err)
	}
	return cfg, nil
}

// ListTasks returns every task of the guild keyed by id.
func (s *FileStore) ListTasks(ctx context.Context, guildID models.Snowflake) (map[int]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.loadTasks()[guildKey(guildID)]
	out := make(map[int]models.Task, len(guild.Tasks))
	for _, rec := range guild.Tasks {
		out[rec.ID] = taskFromRecord(rec)
	}
	return out, nil
}

// GetTask returns one task or ErrNotFound.
func (s *FileStore) GetTask(ctx context.Context, guildID models.Snowflake, id int) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.loadTasks()[guildKey(guildID)]
	rec, ok := guild.Tasks[taskKey(id)]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return taskFromRecord(rec), nil
}

// CreateTask allocates the next id and stores the task in a single write.
func (s *FileStore) CreateTask(ctx context.Context, guildID models.Snowflake, req NewTask) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadTasks()
	key := guildKey(guildID)
	guild := doc[key]
	if guild.Tasks == nil {
		guild.Tasks = map[string]taskRecord{}
	}
	guild.Counter++
	task := newTaskRecord(guild.Counter, req)
	guild.Tasks[taskKey(task.ID)] = recordFromTask(task)
	doc[key] = guild

	if err := writeJSONAtomic(s.tasksPath, doc); err != nil {
		return models.Task{}, fmt.Errorf("save tasks: %w", err)
	}
	return task, nil
}

// UpdateTask applies update to an existing task. Unknown ids are not created.
func (s *FileStore) UpdateTask(ctx context.Context, guildID models.Snowflake, id int, update TaskUpdate) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadTasks()
	key := guildKey(guildID)
	guild, ok := doc[key]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	rec, ok := guild.Tasks[taskKey(id)]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	task := taskFromRecord(rec)
	if err := applyTaskUpdate(&task, update); err != nil {
		return models.Task{}, err
	}
	guild.Tasks[taskKey(id)] = recordFromTask(task)
	doc[key] = guild

	if err := writeJSONAtomic(s.tasksPath, doc); err != nil {
		return models.Task{}, fmt.Errorf("save tasks: %w", err)
	}
	return task, nil
}

// Counter returns the last allocated task id of the guild.
func (s *FileStore) Counter(ctx context.Context, guildID models.Snowflake) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadTasks()[guildKey(guildID)].Counter, nil
}
