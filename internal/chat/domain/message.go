package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage definition chat message document. Messages are immutable
// once created except for the leave_timestamp barrier, which is stamped
// retroactively when a participant leaves the room.
type ChatMessage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID         string             `bson:"room_id" json:"roomId"`
	SenderID       int64              `bson:"sender_id" json:"senderId"`
	SenderName     string             `bson:"sender_name" json:"senderName"`
	Content        string             `bson:"content" json:"content"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	LeaveTimestamp *time.Time         `bson:"leave_timestamp,omitempty" json:"leaveTimestamp,omitempty"`
}
