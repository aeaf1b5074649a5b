package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social_network_service/internal/chat/domain"
)

// MessageRepository definition chat message persistence. Visibility is
// per participant: a leave timestamp lower bound hides pre-leave history
// from a rejoining participant while the other participants keep the
// full history.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	FindVisibleMessages(ctx context.Context, roomID string, after *time.Time, page, size int) ([]domain.ChatMessage, error)
	FindLastVisibleMessage(ctx context.Context, roomID string, after *time.Time) (*domain.ChatMessage, error)
	// ApplyLeaveBarrier stamps every message created at or before the
	// barrier with that timestamp.
	ApplyLeaveBarrier(ctx context.Context, roomID string, barrier time.Time) error
	DeleteByRoom(ctx context.Context, roomID string) error
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository backed by the messages collection
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

// Insert append a message, fills in the generated id
func (r *messageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return msg, nil
}

func visibilityFilter(roomID string, after *time.Time) bson.M {
	filter := bson.M{"room_id": roomID}
	if after != nil {
		filter["created_at"] = bson.M{"$gt": *after}
	}
	return filter
}

// FindVisibleMessages paged messages newest first, bounded below by the
// participant's leave timestamp when set
func (r *messageRepository) FindVisibleMessages(ctx context.Context, roomID string, after *time.Time, page, size int) ([]domain.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))

	cur, err := r.coll.Find(ctx, visibilityFilter(roomID, after), opts)
	if err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) FindLastVisibleMessage(ctx context.Context, roomID string, after *time.Time) (*domain.ChatMessage, error) {
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})

	var msg domain.ChatMessage
	err := r.coll.FindOne(ctx, visibilityFilter(roomID, after), opts).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ApplyLeaveBarrier(ctx context.Context, roomID string, barrier time.Time) error {
	filter := bson.M{
		"room_id":    roomID,
		"created_at": bson.M{"$lte": barrier},
	}
	update := bson.M{"$set": bson.M{"leave_timestamp": barrier}}

	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *messageRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"room_id": roomID})
	return err
}

func (r *messageRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"room_id": roomID})
}
