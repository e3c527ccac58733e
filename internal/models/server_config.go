package models

// ServerConfig holds per-guild routing, feature flags and the developer roster.
type ServerConfig struct {
	LogsChannel  Snowflake   `json:"logs_channel_id,omitempty"`
	TasksChannel Snowflake   `json:"tasks_channel_id,omitempty"`
	DevCategory  Snowflake   `json:"dev_category_id,omitempty"`
	BoardChannel Snowflake   `json:"task_board_channel_id,omitempty"`
	BoardMessage Snowflake   `json:"task_board_message_id,omitempty"`
	AIEnabled    bool        `json:"ai_enabled"`
	Developers   []Snowflake `json:"dev_ids,omitempty"`
}

// Board returns where the aggregate board lives.
func (c ServerConfig) Board() MessageRef {
	return MessageRef{ChannelID: c.BoardChannel, MessageID: c.BoardMessage}
}

// HasDeveloper reports whether id is on the roster.
func (c ServerConfig) HasDeveloper(id Snowflake) bool {
	for _, dev := range c.Developers {
		if dev == id {
			return true
		}
	}
	return false
}

// Actor is the member invoking an operation together with the permission
// bits that gate administrative actions.
type Actor struct {
	UserID         Snowflake
	Admin          bool
	ManageServer   bool
	ManageMessages bool
}

// CanManageTasks reports the elevated privilege needed to complete someone
// else's task.
func (a Actor) CanManageTasks() bool {
	return a.Admin || a.ManageMessages
}

// CanManageServer reports the privilege needed for panels, roster and board.
func (a Actor) CanManageServer() bool {
	return a.Admin || a.ManageServer
}

// Member is a resolved guild member.
type Member struct {
	ID          Snowflake
	Username    string
	DisplayName string
}

// Name returns the display name, falling back to the username.
func (m Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}
