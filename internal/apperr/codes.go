package apperr

const (
	// Input (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidUserID   = 1001
	ErrCodeInvalidStatus   = 1002
	ErrCodeMissingRequired = 1003
	ErrCodeFieldTooLong    = 1004
	ErrCodeInvalidMode     = 1005
	ErrCodeWrongChannel    = 1006

	// Domain state (2xxx)
	ErrCodeTaskNotFound      = 2001
	ErrCodeMemberNotFound    = 2002
	ErrCodeChannelNotFound   = 2003
	ErrCodeMessageNotFound   = 2004
	ErrCodeDeveloperNotFound = 2005
	ErrCodeTaskCompleted     = 2101

	// Permission (3xxx)
	ErrCodePermissionDenied = 3001
	ErrCodeAdminRequired    = 3002

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002

	// Configuration (5xxx)
	ErrCodeConfigMissing = 5001
	ErrCodeAIDisabled    = 5002
	ErrCodeAIKeyMissing  = 5003
	ErrCodeRosterEmpty   = 5004
	ErrCodeBoardMissing  = 5005

	// External services (6xxx)
	ErrCodeExternalService = 6001
	ErrCodeDiscordFailure  = 6002
)

func defaultCodeByKind(kind Kind) int {
	switch kind {
	case KindMalformedInput:
		return ErrCodeInvalidArgument
	case KindNotFound:
		return ErrCodeTaskNotFound
	case KindConflict:
		return ErrCodeTaskCompleted
	case KindPermissionDenied:
		return ErrCodePermissionDenied
	case KindConfigurationMissing:
		return ErrCodeConfigMissing
	case KindExternalService:
		return ErrCodeExternalService
	default:
		return ErrCodeInternal
	}
}
