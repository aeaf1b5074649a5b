package domain

import (
	errprocess "social_network_service/pkg/err"
)

// Chat error taxonomy. Store level failures are wrapped into these before
// they cross the use case boundary.
var (
	// ErrRoomNotFound referenced room absent, inactive, or the requester
	// is not an active participant
	ErrRoomNotFound = errprocess.New(errprocess.CodeRoomNotFound, "chat room not found")

	// ErrParticipantNotFound identity resolution failed for one or more
	// requested participant ids
	ErrParticipantNotFound = errprocess.New(errprocess.CodeUserNotFound, "user not found")

	// ErrInvalidParticipantList creator included in the participant list
	ErrInvalidParticipantList = errprocess.New(errprocess.CodeInvalidParticipant, "participant list cannot include the creator")

	// ErrChatConnection failure establishing a live connection registration
	ErrChatConnection = errprocess.New(errprocess.CodeChatConnection, "failed to establish chat connection")

	// ErrInvalidParameter malformed request input
	ErrInvalidParameter = errprocess.New(errprocess.CodeInvalidParameter, "invalid parameter")

	// ErrInternal unclassified failure during decode or dispatch
	ErrInternal = errprocess.New(errprocess.CodeInternal, "internal server error")
)
