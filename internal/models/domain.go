package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TaskStatus defines allowed lifecycle states for tasks.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "Open"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

const (
	DefaultPriority = "Medium"

	TitleMaxLength       = 100
	DescriptionMaxLength = 2000
	PriorityMaxLength    = 20
	NotesMaxLength       = 1000
)

var validTaskStatuses = map[TaskStatus]struct{}{
	StatusOpen:       {},
	StatusInProgress: {},
	StatusCompleted:  {},
}

var activeTaskStatuses = []TaskStatus{
	StatusOpen,
	StatusInProgress,
}

func IsValidTaskStatus(status TaskStatus) bool {
	_, ok := validTaskStatuses[status]
	return ok
}

// IsActive reports whether a status is shown on the board as outstanding work.
func (s TaskStatus) IsActive() bool {
	for _, active := range activeTaskStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// ParseTaskStatus accepts canonical names case-insensitively, with '_' or '-'
// standing in for the space in "In Progress".
func ParseTaskStatus(raw string) (TaskStatus, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	value = strings.Join(strings.Fields(value), " ")
	for status := range validTaskStatuses {
		if strings.EqualFold(value, string(status)) {
			return status, nil
		}
	}
	if strings.EqualFold(value, "inprogress") {
		return StatusInProgress, nil
	}
	return "", fmt.Errorf("invalid status: %s", raw)
}

// TaskStatusStrings lists the statuses in lifecycle order.
func TaskStatusStrings() []string {
	return []string{string(StatusOpen), string(StatusInProgress), string(StatusCompleted)}
}

// NormalizePriority trims the value and falls back to DefaultPriority when blank.
func NormalizePriority(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return DefaultPriority
	}
	return value
}

// ValidateLength checks a field against a maximum measured in characters.
func ValidateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}
