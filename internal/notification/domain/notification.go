package domain

import "time"

// Notification payload pushed to a user's registered devices and kept in
// the notification feed.
type Notification struct {
	Type                   string  `json:"type"`
	Title                  string  `json:"title"`
	Body                   string  `json:"body"`
	UserID                 *int64  `json:"userId,omitempty"`
	RoomID                 *string `json:"roomId,omitempty"`
	SenderID               *int64  `json:"senderId,omitempty"`
	SenderName             *string `json:"senderName,omitempty"`
	SenderLoginID          *string `json:"senderLoginId,omitempty"`
	SenderProfileImagePath *string `json:"senderProfileImagePath,omitempty"`
	BoardID                *int64  `json:"boardId,omitempty"`
	CommentID              *int64  `json:"commentId,omitempty"`
}

// DeviceTokenRequest register a device for push delivery
type DeviceTokenRequest struct {
	Token      string `json:"token"`
	DeviceInfo string `json:"deviceInfo"`
}

// NotificationRecord persisted feed entry
type NotificationRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Body      string    `json:"body"`
	SenderID  *int64    `json:"senderId,omitempty"`
	BoardID   *int64    `json:"boardId,omitempty"`
	CommentID *int64    `json:"commentId,omitempty"`
	RoomID    *string   `json:"roomId,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
