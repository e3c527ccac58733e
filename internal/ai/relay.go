// Package ai relays free-text prompts to a text-generation model.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devbot/internal/apperr"
	"devbot/internal/models"
	"devbot/internal/store"
)

// MaxReplyLength is the longest reply handed back to callers, in characters.
const MaxReplyLength = 4000

// NoResponse is returned in place of an empty completion.
const NoResponse = "No response from AI."

// Mode selects the system prompt.
type Mode string

const (
	ModeBrainstorm Mode = "brainstorm"
	ModeBreakdown  Mode = "breakdown"
	ModeGeneral    Mode = "general"
)

var systemPrompts = map[Mode]string{
	ModeBrainstorm: "You are an AI assistant helping a Roblox game development team brainstorm ideas. " +
		"Provide multiple concrete, creative ideas with bullet points or numbered lists.",
	ModeBreakdown: "You are an AI assistant helping a Roblox game developer break down complex tasks. " +
		"Return a list of clear, ordered steps, maybe with small notes or hints.",
	ModeGeneral: "You are an AI assistant helping a Roblox game developer with scripting, design, and workflow. " +
		"Give concise but useful explanations with examples where necessary.",
}

var modeTitles = map[Mode]string{
	ModeBrainstorm: "AI Brainstorm Ideas",
	ModeBreakdown:  "AI Task Breakdown",
	ModeGeneral:    "AI Answer",
}

var modeLabels = map[Mode]string{
	ModeBrainstorm: "Brainstorm Ideas",
	ModeBreakdown:  "Break Down Task",
	ModeGeneral:    "Ask General Question",
}

// ParseMode validates a mode name.
func ParseMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := systemPrompts[mode]; !ok {
		return "", apperr.Malformed(apperr.ErrCodeInvalidMode, fmt.Sprintf("Unknown AI mode %q.", raw))
	}
	return mode, nil
}

// Modes lists the supported modes in panel order.
func Modes() []Mode {
	return []Mode{ModeBrainstorm, ModeBreakdown, ModeGeneral}
}

// SystemPrompt returns the fixed instructions for mode.
func (m Mode) SystemPrompt() string {
	return systemPrompts[m]
}

// Title is the heading of a reply in this mode.
func (m Mode) Title() string {
	return modeTitles[m]
}

// Label is the button and modal caption of this mode.
func (m Mode) Label() string {
	return modeLabels[m]
}

// Completer produces a completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Relay gates and forwards requests to a Completer.
type Relay struct {
	configs   store.ConfigStore
	completer Completer
	logger    *slog.Logger
}

// NewRelay builds a Relay. A nil completer means no API key is configured.
func NewRelay(configs store.ConfigStore, completer Completer, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{configs: configs, completer: completer, logger: logger.With("component", "ai")}
}

// KeyConfigured reports whether requests can reach a model at all.
func (r *Relay) KeyConfigured() bool {
	return r.completer != nil
}

// CheckAvailable fails when the guild disabled the helper or no key is set.
func (r *Relay) CheckAvailable(ctx context.Context, guildID models.Snowflake) error {
	cfg, err := r.configs.GetConfig(ctx, guildID)
	if err != nil {
		return apperr.Internal(apperr.ErrCodeStoreFailure, err)
	}
	if !cfg.AIEnabled {
		return apperr.ConfigMissing(apperr.ErrCodeAIDisabled, "AI helper is disabled. Ask an admin to run `/config ai enabled:true`.")
	}
	if !r.KeyConfigured() {
		return apperr.ConfigMissing(apperr.ErrCodeAIKeyMissing, "AI API key not configured on the server. (Missing GEMINI_API_KEY).")
	}
	return nil
}

// Ask sends text under mode's system prompt and returns the truncated reply.
func (r *Relay) Ask(ctx context.Context, guildID models.Snowflake, mode Mode, text string) (string, error) {
	if err := r.CheckAvailable(ctx, guildID); err != nil {
		return "", err
	}
	system := mode.SystemPrompt()
	if system == "" {
		return "", apperr.Malformed(apperr.ErrCodeInvalidMode, fmt.Sprintf("Unknown AI mode %q.", mode))
	}
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return "", apperr.Malformed(apperr.ErrCodeMissingRequired, "Please describe what you need help with.")
	}

	reply, err := r.completer.Complete(ctx, system, prompt)
	if err != nil {
		r.logger.Warn("completion failed", "guild", guildID.String(), "mode", string(mode), "error", err)
		return "", apperr.External(apperr.ErrCodeExternalService, "Error while contacting AI", err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = NoResponse
	}
	return Truncate(reply, MaxReplyLength), nil
}

// Truncate cuts value to at most max characters.
func Truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
