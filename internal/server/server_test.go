package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"devbot/internal/api"
	"devbot/internal/apperr"
	"devbot/internal/auth"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
)

const testGuild models.Snowflake = 500

type fakeReader struct {
	tasks map[int]models.Task
	err   error
}

func (f *fakeReader) List(_ context.Context, guildID models.Snowflake, filter lifecycle.Filter) ([]models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	if guildID != testGuild {
		return []models.Task{}, nil
	}
	return lifecycle.ApplyFilter(f.tasks, filter), nil
}

func (f *fakeReader) Get(_ context.Context, guildID models.Snowflake, taskID int) (models.Task, error) {
	if f.err != nil {
		return models.Task{}, f.err
	}
	task, ok := f.tasks[taskID]
	if !ok || guildID != testGuild {
		return models.Task{}, apperr.NotFound(apperr.ErrCodeTaskNotFound, "Task not found.")
	}
	return task, nil
}

func (f *fakeReader) Board(_ context.Context, guildID models.Snowflake) (lifecycle.Board, error) {
	if f.err != nil {
		return lifecycle.Board{}, f.err
	}
	if guildID != testGuild {
		return lifecycle.BuildBoard(nil), nil
	}
	return lifecycle.BuildBoard(f.tasks), nil
}

func newFakeReader() *fakeReader {
	return &fakeReader{tasks: map[int]models.Task{
		1: {ID: 1, Title: "Fix jump bug", Priority: "Medium", Status: models.StatusInProgress, CreatorID: 1001, AssigneeID: 1002, ThreadID: 900},
		2: {ID: 2, Title: "Write docs", Priority: "Low", Status: models.StatusOpen, CreatorID: 1001},
		3: {ID: 3, Title: "Ship it", Priority: "High", Status: models.StatusCompleted, CreatorID: 1001, AssigneeID: 1002},
	}}
}

func serve(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return errResp
}

func TestListenAddrRemoteGuard(t *testing.T) {
	t.Run("allows loopback", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("127.0.0.1:7334")
		if err != nil {
			t.Fatalf("expected loopback to be allowed, got error: %v", err)
		}
		if addr != "127.0.0.1:7334" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("accepts base url", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("http://localhost:7334")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if addr != "localhost:7334" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("blocks non-loopback by default", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		for _, addr := range []string{"0.0.0.0:7334", ":7334", "http://10.0.0.5:7334"} {
			if _, err := ListenAddr(addr); err == nil {
				t.Fatalf("expected error for %q", addr)
			}
		}
	})

	t.Run("allows non-loopback when explicitly enabled", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "true")
		addr, err := ListenAddr("0.0.0.0:7334")
		if err != nil {
			t.Fatalf("expected allow-remote to permit host, got error: %v", err)
		}
		if addr != "0.0.0.0:7334" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})
}

func TestWithAuth(t *testing.T) {
	hash, err := auth.HashToken("status-token-1234")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	srv := New("", newFakeReader(), hash, nil)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "denies missing auth", path: "/v1/guilds/500/board", want: http.StatusUnauthorized},
		{name: "denies wrong token", path: "/v1/guilds/500/board", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "denies wrong scheme", path: "/v1/guilds/500/board", header: "Basic status-token-1234", want: http.StatusUnauthorized},
		{name: "allows valid auth", path: "/v1/guilds/500/board", header: "Bearer status-token-1234", want: http.StatusOK},
		{name: "health stays open", path: "/health", want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(t, srv, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
			if tc.want == http.StatusUnauthorized {
				if got := decodeError(t, w).ErrorCode; got != ErrCodeUnauthorized {
					t.Fatalf("expected error_code %d, got %d", ErrCodeUnauthorized, got)
				}
			}
		})
	}
}

func TestWithAuthDisabledWithoutHash(t *testing.T) {
	srv := New("", newFakeReader(), "", nil)
	w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/guilds/500/tasks", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := New("", newFakeReader(), "", nil)

	w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/guilds/abc/tasks", nil)
	req.Header.Set(requestIDHeader, "caller-7")
	w = serve(t, srv, req)
	if got := w.Header().Get(requestIDHeader); got != "caller-7" {
		t.Fatalf("request id = %q, want caller-7", got)
	}
}

func TestListTasksFilters(t *testing.T) {
	srv := New("", newFakeReader(), "", nil)

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "all", query: "", want: []int{1, 2, 3}},
		{name: "status", query: "?status=open", want: []int{2}},
		{name: "status underscore", query: "?status=in_progress", want: []int{1}},
		{name: "assignee mention", query: "?assignee=%3C%401002%3E", want: []int{1, 3}},
		{name: "both", query: "?status=Completed&assignee=1002", want: []int{3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/guilds/500/tasks"+tc.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp api.TaskListResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got := make([]int, 0, len(resp.Tasks))
			for _, task := range resp.Tasks {
				got = append(got, task.ID)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
			if resp.Count != len(tc.want) || resp.GuildID != "500" {
				t.Fatalf("unexpected envelope: %+v", resp)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	srv := New("", newFakeReader(), "", nil)

	tests := []struct {
		name string
		path string
		code int
	}{
		{name: "guild", path: "/v1/guilds/abc/tasks", code: ErrCodeInvalidGuildID},
		{name: "status", path: "/v1/guilds/500/tasks?status=archived", code: ErrCodeInvalidStatus},
		{name: "assignee", path: "/v1/guilds/500/tasks?assignee=bob", code: ErrCodeInvalidUserID},
		{name: "task id", path: "/v1/guilds/500/tasks/zero", code: ErrCodeInvalidTaskID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, srv, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			errResp := decodeError(t, w)
			if errResp.ErrorCode != tc.code || errResp.Code != "invalid_argument" {
				t.Fatalf("unexpected error response: %+v", errResp)
			}
		})
	}
}

func TestGetTask(t *testing.T) {
	srv := New("", newFakeReader(), "", nil)

	w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/guilds/500/tasks/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got api.TaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := api.TaskResponse{ID: 1, Title: "Fix jump bug", Priority: "Medium", Status: "In Progress", CreatorID: "1001", AssigneeID: "1002", ThreadID: "900"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	w = serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/guilds/500/tasks/99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	errResp := decodeError(t, w)
	if errResp.ErrorCode != ErrCodeTaskNotFound || errResp.Error != "Task not found." {
		t.Fatalf("unexpected error response: %+v", errResp)
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	reader := &fakeReader{err: apperr.Internal(apperr.ErrCodeStoreFailure, errors.New("disk on fire"))}
	srv := New("", reader, "", nil)

	w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/guilds/500/board", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	errResp := decodeError(t, w)
	if errResp.Error != "internal error" || errResp.ErrorCode != ErrCodeStoreFailure {
		t.Fatalf("unexpected error response: %+v", errResp)
	}
}

func TestClientAgainstServer(t *testing.T) {
	hash, err := auth.HashToken("status-token-1234")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	ts := httptest.NewServer(New("", newFakeReader(), hash, nil).Handler())
	defer ts.Close()

	t.Setenv(api.StatusTokenEnvKey, "status-token-1234")
	client := api.NewClient(ts.URL)
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	board, err := client.Board(ctx, "500")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if board.ActiveTotal != 2 || board.CompletedTotal != 1 {
		t.Fatalf("unexpected board: %+v", board)
	}
	if diff := cmp.Diff([]int{3}, board.CompletedIDs); diff != "" {
		t.Fatalf("completed ids (-want +got):\n%s", diff)
	}

	_, err = client.WithToken("wrong").Board(ctx, "500")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 api error, got %v", err)
	}
}
