package domain

import "time"

// ChatConn is a live handle the server can push frames through. One user
// may hold several handles at once (multi device).
type ChatConn interface {
	WriteText(data []byte) error
	Close() error
}

// ChatSession ephemeral per-connection identity, never persisted
type ChatSession struct {
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	SessionID string `json:"sessionId"`
}

// ChatMessageRequest inbound send-message frame. RoomID absent means
// "message a specific user": a direct room with OtherUserID is found or
// created first.
type ChatMessageRequest struct {
	Content     string  `json:"content"`
	RoomID      *string `json:"roomId,omitempty"`
	OtherUserID *int64  `json:"otherUserId,omitempty"`
}

// CreateChatRoomRequest payload to create a chat room. The creator is
// implicit and must not appear in ParticipantIDs.
type CreateChatRoomRequest struct {
	Name           string  `json:"name"`
	ParticipantIDs []int64 `json:"participantIds"`
}

// ChatRoomResponse room summary for the room list, the last message is
// bounded by the requester's own leave timestamp.
type ChatRoomResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
	LastMessage  *ChatMessage  `json:"lastMessage,omitempty"`
	MessageCount int           `json:"messageCount"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// CommonResponse response envelope shared by the REST and websocket layers
type CommonResponse struct {
	Result       string      `json:"result"`
	Data         interface{} `json:"data,omitempty"`
	ErrorCode    string      `json:"errorCode,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data interface{}) CommonResponse {
	return CommonResponse{Result: "SUCCESS", Data: data}
}

// NewErrorResponse wraps an error code and message in a failure envelope
func NewErrorResponse(code, message string) CommonResponse {
	return CommonResponse{Result: "ERROR", ErrorCode: code, ErrorMessage: message}
}
