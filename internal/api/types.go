package api

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// TaskResponse is one task as seen by status API consumers.
type TaskResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatorID   string `json:"creator_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	ThreadID    string `json:"thread_id,omitempty"`
}

// TaskListResponse wraps a filtered listing.
type TaskListResponse struct {
	GuildID string         `json:"guild_id"`
	Count   int            `json:"count"`
	Tasks   []TaskResponse `json:"tasks"`
}

// BoardResponse mirrors the task board of a guild.
type BoardResponse struct {
	GuildID        string         `json:"guild_id"`
	Active         []TaskResponse `json:"active"`
	ActiveTotal    int            `json:"active_total"`
	CompletedIDs   []int          `json:"completed_ids"`
	CompletedTotal int            `json:"completed_total"`
}
