package server

import "devbot/internal/apperr"

// Status API codes share the numeric ranges of apperr; the ones below have no
// domain counterpart.
const (
	ErrCodeInvalidArgument = apperr.ErrCodeInvalidArgument
	ErrCodeInvalidGuildID  = 1010
	ErrCodeInvalidTaskID   = 1011
	ErrCodeInvalidStatus   = apperr.ErrCodeInvalidStatus
	ErrCodeInvalidUserID   = apperr.ErrCodeInvalidUserID

	ErrCodeTaskNotFound = apperr.ErrCodeTaskNotFound
	ErrCodeRouteMissing = 2010
	ErrCodeConflict     = apperr.ErrCodeTaskCompleted

	ErrCodeUnauthorized = 3010
	ErrCodeForbidden    = apperr.ErrCodePermissionDenied

	ErrCodeInternal     = apperr.ErrCodeInternal
	ErrCodeStoreFailure = apperr.ErrCodeStoreFailure
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeRouteMissing
	case 409:
		return ErrCodeConflict
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
