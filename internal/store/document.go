package store

import (
	"sort"
	"strconv"

	"devbot/internal/models"
)

// configDocument is the server_config.json layout: guild id string -> record.
type configDocument map[string]configRecord

type configRecord struct {
	LogsChannelID      *models.Snowflake  `json:"logs_channel_id,omitempty"`
	TasksChannelID     *models.Snowflake  `json:"tasks_channel_id,omitempty"`
	DevCategoryID      *models.Snowflake  `json:"dev_category_id,omitempty"`
	TaskBoardChannelID *models.Snowflake  `json:"task_board_channel_id,omitempty"`
	TaskBoardMessageID *models.Snowflake  `json:"task_board_message_id,omitempty"`
	AIEnabled          *bool              `json:"ai_enabled,omitempty"`
	DevIDs             []models.Snowflake `json:"dev_ids,omitempty"`
}

// taskDocument is the tasks.json layout: guild id string -> guild tasks.
type taskDocument map[string]guildTasks

type guildTasks struct {
	Counter int                   `json:"counter"`
	Tasks   map[string]taskRecord `json:"tasks"`
}

// taskRecord mirrors models.Task with explicit nulls for unset identifiers.
type taskRecord struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	CreatorID   models.Snowflake  `json:"creator_id"`
	AssigneeID  *models.Snowflake `json:"assignee_id"`
	MessageID   *models.Snowflake `json:"message_id"`
	ChannelID   *models.Snowflake `json:"channel_id"`
	ThreadID    *models.Snowflake `json:"thread_id"`
}

func guildKey(guildID models.Snowflake) string {
	return strconv.FormatUint(uint64(guildID), 10)
}

func taskKey(id int) string {
	return strconv.Itoa(id)
}

func optionalID(value models.Snowflake) *models.Snowflake {
	if value == 0 {
		return nil
	}
	v := value
	return &v
}

func idValue(value *models.Snowflake) models.Snowflake {
	if value == nil {
		return 0
	}
	return *value
}

func configFromRecord(rec configRecord) models.ServerConfig {
	cfg := models.ServerConfig{
		LogsChannel:  idValue(rec.LogsChannelID),
		TasksChannel: idValue(rec.TasksChannelID),
		DevCategory:  idValue(rec.DevCategoryID),
		BoardChannel: idValue(rec.TaskBoardChannelID),
		BoardMessage: idValue(rec.TaskBoardMessageID),
		Developers:   dedupeDevelopers(rec.DevIDs),
	}
	if rec.AIEnabled != nil {
		cfg.AIEnabled = *rec.AIEnabled
	}
	return cfg
}

func recordFromConfig(cfg models.ServerConfig, previous configRecord) configRecord {
	rec := configRecord{
		LogsChannelID:      optionalID(cfg.LogsChannel),
		TasksChannelID:     optionalID(cfg.TasksChannel),
		DevCategoryID:      optionalID(cfg.DevCategory),
		TaskBoardChannelID: optionalID(cfg.BoardChannel),
		TaskBoardMessageID: optionalID(cfg.BoardMessage),
	}
	if cfg.AIEnabled || previous.AIEnabled != nil {
		enabled := cfg.AIEnabled
		rec.AIEnabled = &enabled
	}
	if len(cfg.Developers) > 0 {
		rec.DevIDs = append([]models.Snowflake(nil), cfg.Developers...)
	} else if previous.DevIDs != nil {
		rec.DevIDs = []models.Snowflake{}
	}
	return rec
}

func taskFromRecord(rec taskRecord) models.Task {
	return models.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    rec.Priority,
		Status:      models.TaskStatus(rec.Status),
		CreatorID:   rec.CreatorID,
		AssigneeID:  idValue(rec.AssigneeID),
		ChannelID:   idValue(rec.ChannelID),
		MessageID:   idValue(rec.MessageID),
		ThreadID:    idValue(rec.ThreadID),
	}
}

func recordFromTask(task models.Task) taskRecord {
	return taskRecord{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      string(task.Status),
		CreatorID:   task.CreatorID,
		AssigneeID:  optionalID(task.AssigneeID),
		MessageID:   optionalID(task.MessageID),
		ChannelID:   optionalID(task.ChannelID),
		ThreadID:    optionalID(task.ThreadID),
	}
}

// SortTasks returns tasks ordered by id.
func SortTasks(tasks map[int]models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
