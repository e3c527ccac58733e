package discord

import (
	"fmt"
	"strconv"
	"strings"
)

// Component and modal custom ids carry everything a handler needs, so buttons
// posted before a restart keep working.
const (
	scopePanel = "panel"
	scopeTask  = "task"
	scopeAI    = "ai"
	scopeDev   = "dev"
	scopeModal = "modal"

	actionCreateTask = "create_task"
	actionAssignMe   = "assign_me"
	actionAssignTo   = "assign_other"
	actionOpenThread = "open_thread"
	actionInProgress = "in_progress"
	actionSubmitWork = "submit_work"
	actionMarkDone   = "mark_done"
	actionAssign     = "assign"
	actionSelect     = "select"
	actionAsk        = "ai"

	fieldTitle       = "title"
	fieldDescription = "description"
	fieldPriority    = "priority"
	fieldUser        = "user"
	fieldNotes       = "notes"
	fieldQuestion    = "question"
)

// route is a parsed custom id: scope:action[:arg].
type route struct {
	Scope  string
	Action string
	Arg    string
}

func (r route) String() string {
	if r.Arg == "" {
		return r.Scope + ":" + r.Action
	}
	return r.Scope + ":" + r.Action + ":" + r.Arg
}

// TaskID returns the task id argument.
func (r route) TaskID() (int, error) {
	id, err := strconv.Atoi(r.Arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("custom id %q: invalid task id", r.String())
	}
	return id, nil
}

func parseRoute(customID string) (route, error) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return route{}, fmt.Errorf("malformed custom id %q", customID)
	}
	r := route{Scope: parts[0], Action: parts[1]}
	if len(parts) == 3 {
		r.Arg = parts[2]
	}
	return r, nil
}

func taskRoute(action string, taskID int) route {
	return route{Scope: scopeTask, Action: action, Arg: strconv.Itoa(taskID)}
}

func taskModalRoute(action string, taskID int) route {
	return route{Scope: scopeModal, Action: action, Arg: strconv.Itoa(taskID)}
}
