package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"devbot/internal/api"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	guildID, ok := s.guildParam(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	tasks, err := s.reader.List(r.Context(), guildID, filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	out := make([]api.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	s.writeJSON(w, http.StatusOK, api.TaskListResponse{GuildID: guildID.String(), Count: len(out), Tasks: out})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	guildID, ok := s.guildParam(w, r)
	if !ok {
		return
	}
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || taskID <= 0 {
		err := badRequestCode(fmt.Errorf("invalid task id %q", r.PathValue("id")), ErrCodeInvalidTaskID)
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	task, err := s.reader.Get(r.Context(), guildID, taskID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	guildID, ok := s.guildParam(w, r)
	if !ok {
		return
	}

	board, err := s.reader.Board(r.Context(), guildID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	active := make([]api.TaskResponse, 0, len(board.Active))
	for _, task := range board.Active {
		active = append(active, toTaskResponse(task))
	}
	s.writeJSON(w, http.StatusOK, api.BoardResponse{
		GuildID:        guildID.String(),
		Active:         active,
		ActiveTotal:    board.ActiveTotal,
		CompletedIDs:   board.CompletedIDs,
		CompletedTotal: board.CompletedTotal,
	})
}

func (s *Server) guildParam(w http.ResponseWriter, r *http.Request) (models.Snowflake, bool) {
	raw := r.PathValue("guild")
	guildID, err := models.ParseSnowflake(raw)
	if err != nil || guildID.IsZero() {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("invalid guild id %q", raw), ErrCodeInvalidGuildID))
		return 0, false
	}
	return guildID, true
}

func parseFilter(r *http.Request) (lifecycle.Filter, error) {
	var filter lifecycle.Filter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := models.ParseTaskStatus(raw)
		if err != nil {
			return filter, badRequestCode(fmt.Errorf("invalid status %q; expected one of %s", raw, strings.Join(models.TaskStatusStrings(), ", ")), ErrCodeInvalidStatus)
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(query.Get("assignee")); raw != "" {
		assignee, err := models.ParseUserReference(raw)
		if err != nil {
			return filter, badRequestCode(fmt.Errorf("invalid assignee %q", raw), ErrCodeInvalidUserID)
		}
		filter.AssigneeID = assignee
	}
	return filter, nil
}

func toTaskResponse(task models.Task) api.TaskResponse {
	resp := api.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      string(task.Status),
		CreatorID:   task.CreatorID.String(),
	}
	if task.IsAssigned() {
		resp.AssigneeID = task.AssigneeID.String()
	}
	if !task.ThreadID.IsZero() {
		resp.ThreadID = task.ThreadID.String()
	}
	return resp
}
