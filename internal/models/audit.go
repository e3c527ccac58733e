package models

// AuditEntry is one line appended to a guild's audit log channel.
type AuditEntry struct {
	Title       string
	Description string
}
