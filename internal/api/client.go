package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "DEVBOT_HTTP_TIMEOUT"
	// StatusTokenEnvKey holds the bearer token sent to the status API.
	StatusTokenEnvKey = "DEVBOT_STATUS_TOKEN"
)

// Client reads a running devbot instance over its status API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a client for baseURL. The bearer token is read from
// DEVBOT_STATUS_TOKEN.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(StatusTokenEnvKey)),
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.authToken = strings.TrimSpace(token)
	return &clone
}

// Ping checks whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var resp HealthResponse
	return c.get(ctx, "/health", nil, &resp)
}

// ListTasks lists the guild's tasks. Empty status or assignee match everything.
func (c *Client) ListTasks(ctx context.Context, guild, status, assignee string) (TaskListResponse, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if assignee != "" {
		query.Set("assignee", assignee)
	}
	var resp TaskListResponse
	err := c.get(ctx, guildPath(guild, "tasks"), query, &resp)
	return resp, err
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, guild string, id int) (TaskResponse, error) {
	var resp TaskResponse
	err := c.get(ctx, guildPath(guild, "tasks", strconv.Itoa(id)), nil, &resp)
	return resp, err
}

// Board fetches the guild board.
func (c *Client) Board(ctx context.Context, guild string) (BoardResponse, error) {
	var resp BoardResponse
	err := c.get(ctx, guildPath(guild, "board"), nil, &resp)
	return resp, err
}

func guildPath(guild string, parts ...string) string {
	segments := append([]string{"/v1/guilds", url.PathEscape(guild)}, parts...)
	return strings.Join(segments, "/")
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
	}
	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
