package main

import (
	"context"
	"errors"
	"net"

	"devbot/internal/api"
	"devbot/internal/apperr"
	"devbot/internal/config"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: set "+api.StatusTokenEnvKey+" to the token hashed into http.status_token_hash.")
		case "":
			lines = append(lines, "hint: verify --url points to a devbot status API.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase DEVBOT_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure devbot is running with the status API enabled.",
			"hint: start it with: devbot run",
		)
		return uniqueLines(lines)
	}

	var appErr apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Code() {
		case apperr.ErrCodeChannelNotFound, apperr.ErrCodeConfigMissing, apperr.ErrCodeBoardMissing:
			lines = append(lines, "hint: inspect the guild with: devbot guild show --guild <id>")
		case apperr.ErrCodeDiscordFailure:
			lines = append(lines, "hint: verify the bot token ("+config.DiscordTokenEnvKey+") and the bot's channel permissions.")
		}
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
