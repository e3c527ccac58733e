// Package taskfile parses markdown task lists for bulk import.
//
// A file is an optional YAML front matter block followed by list items:
//
//	---
//	priority: High
//	assignee: "<@1002>"
//	---
//	- Fix jump bug | Player clips through platforms
//	- [Low] Update credits
//
// Each item becomes one task. An item may carry a bracketed priority prefix
// and a description after " | ". Front matter supplies defaults.
package taskfile

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"devbot/internal/lifecycle"
	"devbot/internal/models"
)

var (
	listItemRegex = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	priorityRegex = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)
)

const descriptionSeparator = " | "

// Defaults are the front matter keys understood by the parser.
type Defaults struct {
	Priority    string `yaml:"priority"`
	Description string `yaml:"description"`
	Assignee    string `yaml:"assignee"`
}

// Item is one task to import.
type Item struct {
	Line       int
	Draft      lifecycle.Draft
	AssigneeID models.Snowflake
}

// File is a parsed task list.
type File struct {
	Defaults Defaults
	Items    []Item
}

// Parse reads input into a File. Items are not validated against field
// limits; the engine does that on create.
func Parse(input string) (File, error) {
	var file File
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	body := 0

	if len(lines) >= 2 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return File{}, fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &file.Defaults); err != nil {
			return File{}, fmt.Errorf("parse front matter: %w", err)
		}
		body = end + 1
	}

	var defaultAssignee models.Snowflake
	if raw := strings.TrimSpace(file.Defaults.Assignee); raw != "" {
		id, err := models.ParseUserReference(raw)
		if err != nil {
			return File{}, fmt.Errorf("front matter assignee: %w", err)
		}
		defaultAssignee = id
	}

	for i := body; i < len(lines); i++ {
		match := listItemRegex.FindStringSubmatch(lines[i])
		if len(match) != 2 {
			continue
		}
		text := strings.TrimSpace(match[1])
		if text == "" {
			continue
		}
		item := Item{
			Line: i + 1,
			Draft: lifecycle.Draft{
				Description: file.Defaults.Description,
				Priority:    models.NormalizePriority(file.Defaults.Priority),
			},
			AssigneeID: defaultAssignee,
		}
		if m := priorityRegex.FindStringSubmatch(text); len(m) == 3 {
			item.Draft.Priority = models.NormalizePriority(m[1])
			text = strings.TrimSpace(m[2])
		}
		if title, description, ok := strings.Cut(text, descriptionSeparator); ok {
			text = strings.TrimSpace(title)
			item.Draft.Description = strings.TrimSpace(description)
		}
		if text == "" {
			return File{}, fmt.Errorf("line %d: task title is empty", i+1)
		}
		item.Draft.Title = text
		file.Items = append(file.Items, item)
	}

	return file, nil
}
