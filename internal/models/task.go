package models

// Task represents a single tracked unit of work in a guild.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      TaskStatus `json:"status"`
	CreatorID   Snowflake  `json:"creator_id"`
	AssigneeID  Snowflake  `json:"assignee_id,omitempty"`
	ChannelID   Snowflake  `json:"channel_id,omitempty"`
	MessageID   Snowflake  `json:"message_id,omitempty"`
	ThreadID    Snowflake  `json:"thread_id,omitempty"`
}

// MessageRef locates a rendered message.
type MessageRef struct {
	ChannelID Snowflake `json:"channel_id"`
	MessageID Snowflake `json:"message_id"`
}

// IsZero reports whether the reference points nowhere.
func (r MessageRef) IsZero() bool {
	return r.ChannelID == 0 || r.MessageID == 0
}

// Message returns where the task card was posted.
func (t Task) Message() MessageRef {
	return MessageRef{ChannelID: t.ChannelID, MessageID: t.MessageID}
}

// IsAssigned reports whether someone owns the task.
func (t Task) IsAssigned() bool {
	return t.AssigneeID != 0
}

// AssigneeLabel renders the assignee as a mention, or "Unassigned".
func (t Task) AssigneeLabel() string {
	if !t.IsAssigned() {
		return "Unassigned"
	}
	return t.AssigneeID.Mention()
}
