package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"devbot/internal/api"
	"devbot/internal/format"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{Indent: "  "}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeTaskList(tasks []models.Task) error {
	if len(tasks) == 0 {
		return writePlain("no tasks\n")
	}
	for _, task := range tasks {
		if err := writePlain("%s\n", formatTaskLine(task.ID, string(task.Status), task.Priority, task.Title, task.AssigneeID.String())); err != nil {
			return err
		}
	}
	return nil
}

func writeRemoteTaskList(tasks []api.TaskResponse) error {
	if len(tasks) == 0 {
		return writePlain("no tasks\n")
	}
	for _, task := range tasks {
		if err := writePlain("%s\n", formatTaskLine(task.ID, task.Status, task.Priority, task.Title, task.AssigneeID)); err != nil {
			return err
		}
	}
	return nil
}

func writeTaskDetail(task models.Task) error {
	lines := []string{
		fmt.Sprintf("id: %d", task.ID),
		fmt.Sprintf("title: %s", task.Title),
		fmt.Sprintf("status: %s", task.Status),
		fmt.Sprintf("priority: %s", task.Priority),
		fmt.Sprintf("creator_id: %s", task.CreatorID),
	}
	if task.IsAssigned() {
		lines = append(lines, fmt.Sprintf("assignee_id: %s", task.AssigneeID))
	}
	if !task.Message().IsZero() {
		lines = append(lines, fmt.Sprintf("card: channel %s message %s", task.ChannelID, task.MessageID))
	}
	if !task.ThreadID.IsZero() {
		lines = append(lines, fmt.Sprintf("thread_id: %s", task.ThreadID))
	}
	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", task.Description))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeBoard(board lifecycle.Board) error {
	if board.Empty() {
		return writePlain("no tasks yet\n")
	}
	if err := writeTaskList(board.Active); err != nil {
		return err
	}
	recent := board.RecentCompleted(lifecycle.BoardCompletedLimit)
	ids := make([]string, 0, len(recent))
	for _, id := range recent {
		ids = append(ids, "#"+strconv.Itoa(id))
	}
	if err := writePlain("open/in progress: %d | completed: %d\n", board.ActiveTotal, board.CompletedTotal); err != nil {
		return err
	}
	if len(ids) > 0 {
		return writePlain("recently completed: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

func writeImportResults(results []importResult, jsonOutput, dryRun bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{"dry_run": dryRun, "results": results})
	}
	for _, r := range results {
		var line string
		switch {
		case r.Error != "":
			line = fmt.Sprintf("line %d: %s: error: %s", r.Line, r.Title, r.Error)
		case dryRun:
			line = fmt.Sprintf("line %d: would create %q", r.Line, r.Title)
		default:
			line = fmt.Sprintf("line %d: created #%d %s", r.Line, r.TaskID, r.Title)
		}
		if r.Assignee != "" {
			line += " (assignee " + r.Assignee + ")"
		}
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func formatTaskLine(id int, status, priority, title, assignee string) string {
	if assignee == "" {
		assignee = "unassigned"
	}
	return fmt.Sprintf("#%d [%s] [%s] %s (%s)", id, status, priority, title, assignee)
}
