// Package apperr defines the error taxonomy shared by the engine, the Discord
// surface, the HTTP API and the CLI.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for presentation.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindPermissionDenied     Kind = "permission_denied"
	KindConfigurationMissing Kind = "configuration_missing"
	KindExternalService      Kind = "external_service"
	KindMalformedInput       Kind = "malformed_input"
	KindConflict             Kind = "conflict"
	KindInternal             Kind = "internal"
)

// ErrNotExist is returned by collaborators (surface, member resolver) when the
// referenced remote object is gone.
var ErrNotExist = errors.New("does not exist")

const genericMessage = "Something went wrong. Please try again later."

// Error carries a kind, a numeric code and a short user-visible message.
type Error struct {
	kind    Kind
	code    int
	message string
	err     error
}

func (e Error) Error() string {
	if e.message == "" && e.err != nil {
		return e.err.Error()
	}
	return e.message
}

func (e Error) Unwrap() error {
	return e.err
}

// Kind returns the error classification.
func (e Error) Kind() Kind {
	return e.kind
}

// Code returns the numeric error code.
func (e Error) Code() int {
	return e.code
}

// Message returns the user-visible message.
func (e Error) Message() string {
	return e.message
}

func makeError(kind Kind, code int, message string, err error) error {
	var existing Error
	if errors.As(err, &existing) && existing.kind != "" {
		return existing
	}
	if code == 0 {
		code = defaultCodeByKind(kind)
	}
	return Error{kind: kind, code: code, message: message, err: err}
}

func NotFound(code int, message string) error {
	return makeError(KindNotFound, code, message, nil)
}

func PermissionDenied(code int, message string) error {
	return makeError(KindPermissionDenied, code, message, nil)
}

func ConfigMissing(code int, message string) error {
	return makeError(KindConfigurationMissing, code, message, nil)
}

func Malformed(code int, message string) error {
	return makeError(KindMalformedInput, code, message, nil)
}

func Conflict(code int, message string) error {
	return makeError(KindConflict, code, message, nil)
}

// External wraps a failure of a remote dependency. The cause is kept verbatim
// in the user message.
func External(code int, message string, err error) error {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return makeError(KindExternalService, code, message, err)
}

// Internal wraps an unexpected failure; its cause is never shown to users.
func Internal(code int, err error) error {
	return makeError(KindInternal, code, "", err)
}

// KindOf returns the classification of err, KindInternal when untyped.
func KindOf(err error) Kind {
	var appErr Error
	if errors.As(err, &appErr) && appErr.kind != "" {
		return appErr.kind
	}
	return KindInternal
}

// CodeOf returns the numeric code of err.
func CodeOf(err error) int {
	var appErr Error
	if errors.As(err, &appErr) && appErr.code > 0 {
		return appErr.code
	}
	return ErrCodeInternal
}

// UserMessage returns the text safe to show an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr Error
	if errors.As(err, &appErr) && appErr.kind != KindInternal && appErr.message != "" {
		return appErr.message
	}
	return genericMessage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
