package errprocess

import (
	"errors"

	"social_network_service/pkg/logger"
)

// AppError carries a stable error code next to the message so that the
// route and websocket layers can map failures onto a structured response.
type AppError struct {
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError with the given code
func New(code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Set logs err info and returns it as an error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// CodeOf extracts the AppError code, falling back to the internal code
// for unclassified errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Error codes shared across services.
const (
	CodeSuccess          = "GEN_000"
	CodeInvalidParameter = "GEN_100"
	CodeInternal         = "GEN_999"

	CodeUserNotFound = "USR_003"

	CodeRoomNotFound       = "CHAT_001"
	CodeInvalidRoomAccess  = "CHAT_002"
	CodeChatConnection     = "CHAT_003"
	CodeInvalidParticipant = "CHAT_004"
)
