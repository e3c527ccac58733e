package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "default", value: "", want: defaultHTTPTimeout},
		{name: "duration format", value: "45s", want: 45 * time.Second},
		{name: "integer seconds", value: "25", want: 25 * time.Second},
		{name: "invalid falls back", value: "soon", want: defaultHTTPTimeout},
		{name: "negative falls back", value: "-3", want: defaultHTTPTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(httpTimeoutEnvKey, tc.value)
			if got := httpTimeoutFromEnv(); got != tc.want {
				t.Fatalf("timeout = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClientSendsTokenAndQuery(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guild_id":"500","count":1,"tasks":[{"id":1,"title":"a","status":"Open"}]}`))
	}))
	defer ts.Close()

	t.Setenv(StatusTokenEnvKey, "")
	client := NewClient(ts.URL + "/").WithToken("secret")
	resp, err := client.ListTasks(context.Background(), "500", "Open", "")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if resp.Count != 1 || resp.Tasks[0].Title != "a" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotPath != "/v1/guilds/500/tasks" || gotQuery != "status=Open" {
		t.Fatalf("request = %s?%s", gotPath, gotQuery)
	}
}

func TestClientDecodesErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Task not found.","code":"not_found","error_code":2001}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).GetTask(context.Background(), "500", 9)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if !apiErr.NotFound() || apiErr.ErrorCode != 2001 || apiErr.Message != "Task not found." {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if apiErr.Error() != "not_found (2001): Task not found." {
		t.Fatalf("Error() = %q", apiErr.Error())
	}
}
