package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipantStatus definition participant state inside a room
type ParticipantStatus string

const (
	// ParticipantActive participant takes part in the conversation
	ParticipantActive ParticipantStatus = "ACTIVE"
	// ParticipantLeft participant left the room, history before the
	// leave timestamp is hidden from them
	ParticipantLeft ParticipantStatus = "LEFT"
)

// RoomStatus definition room state
type RoomStatus string

const (
	// RoomActive room accepts messages
	RoomActive RoomStatus = "ACTIVE"
	// RoomClosed kept for the document schema, a room with no active
	// participants is deleted instead of being closed
	RoomClosed RoomStatus = "CLOSED"
)

// Participant is a user's membership record inside a room.
type Participant struct {
	UserID           int64             `bson:"user_id" json:"userId"`
	UserLoginID      string            `bson:"user_login_id" json:"userLoginId"`
	UserName         string            `bson:"user_name" json:"userName"`
	ProfileImagePath *string           `bson:"profile_image_path,omitempty" json:"profileImagePath,omitempty"`
	Status           ParticipantStatus `bson:"status" json:"status"`
	UnreadCount      int               `bson:"unread_count" json:"unreadCount"`
	LastReadMsgID    string            `bson:"last_read_message_id,omitempty" json:"lastReadMessageId,omitempty"`
	LeaveTimestamp   *time.Time        `bson:"leave_timestamp,omitempty" json:"leaveTimestamp,omitempty"`
}

// ChatRoom definition chat room document
type ChatRoom struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Participants  []Participant      `bson:"participants" json:"participants"`
	Status        RoomStatus         `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	LastMessageAt time.Time          `bson:"last_message_at" json:"lastMessageAt"`
	MessageCount  int                `bson:"message_count" json:"messageCount"`
}

// FindParticipant returns the membership record for userID, nil when the
// user never belonged to the room.
func (r *ChatRoom) FindParticipant(userID int64) *Participant {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i]
		}
	}
	return nil
}

// ActiveParticipantCount counts participants in ACTIVE status
func (r *ChatRoom) ActiveParticipantCount() int {
	count := 0
	for i := range r.Participants {
		if r.Participants[i].Status == ParticipantActive {
			count++
		}
	}
	return count
}
