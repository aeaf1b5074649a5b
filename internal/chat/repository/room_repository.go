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

// RoomRepository definition chat room persistence
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *domain.ChatRoom) (string, error)
	FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	// FindActiveRoomByParticipants matches on the exact participant set,
	// order independent, restricted to active rooms.
	FindActiveRoomByParticipants(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error)
	// FindActiveRoomForUser returns the room only when both the room and
	// the given participant are in ACTIVE status.
	FindActiveRoomForUser(ctx context.Context, roomID string, userID int64) (*domain.ChatRoom, error)
	FindRoomsForUser(ctx context.Context, userID int64, page, size int) ([]domain.ChatRoom, error)
	ReactivateLeftParticipants(ctx context.Context, roomID string) error
	ReactivateParticipant(ctx context.Context, roomID string, userID int64) error
	MarkParticipantLeft(ctx context.Context, roomID string, userID int64, ts time.Time) error
	DeleteRoom(ctx context.Context, roomID string) error
	BumpMessageStats(ctx context.Context, roomID string, lastMessageAt time.Time) error
	IncrementUnreadForOthers(ctx context.Context, roomID string, exceptUserID int64) error
	ResetUnread(ctx context.Context, roomID string, userID int64, lastReadMessageID string) error
}

type roomRepository struct {
	coll *mongo.Collection
}

// NewMongoRoomRepository create a RoomRepository backed by the chat_rooms collection
func NewMongoRoomRepository(db *mongo.Database) RoomRepository {
	return &roomRepository{
		coll: db.Collection("chat_rooms"),
	}
}

// CreateRoom insert room, returns the generated id
func (r *roomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) (string, error) {
	res, err := r.coll.InsertOne(ctx, room)
	if err != nil {
		return "", err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	room.ID = oid
	return oid.Hex(), nil
}

// FindByID find room by id, nil when absent
func (r *roomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, nil
	}

	var room domain.ChatRoom
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindActiveRoomByParticipants(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error) {
	filter := bson.M{
		"participants.user_id": bson.M{"$all": userIDs},
		"participants":         bson.M{"$size": len(userIDs)},
		"status":               domain.RoomActive,
	}

	var room domain.ChatRoom
	err := r.coll.FindOne(ctx, filter).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindActiveRoomForUser(ctx context.Context, roomID string, userID int64) (*domain.ChatRoom, error) {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, nil
	}

	filter := bson.M{
		"_id":    oid,
		"status": domain.RoomActive,
		"participants": bson.M{"$elemMatch": bson.M{
			"user_id": userID,
			"status":  domain.ParticipantActive,
		}},
	}

	var room domain.ChatRoom
	err = r.coll.FindOne(ctx, filter).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindRoomsForUser page through the user's active rooms, most recent
// message first
func (r *roomRepository) FindRoomsForUser(ctx context.Context, userID int64, page, size int) ([]domain.ChatRoom, error) {
	filter := bson.M{
		"status": domain.RoomActive,
		"participants": bson.M{"$elemMatch": bson.M{
			"user_id": userID,
			"status":  domain.ParticipantActive,
		}},
	}

	opts := options.Find().
		SetSort(bson.M{"last_message_at": -1}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var rooms []domain.ChatRoom
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ReactivateLeftParticipants flips every LEFT participant back to ACTIVE
// with a clean unread counter, used when a same-set room is reused
// instead of duplicated.
func (r *roomRepository) ReactivateLeftParticipants(ctx context.Context, roomID string) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"participants.$[elem].status":       domain.ParticipantActive,
		"participants.$[elem].unread_count": 0,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem.status": domain.ParticipantLeft}},
	})

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update, opts)
	return err
}

// ReactivateParticipant flips one participant back to ACTIVE, sending a
// message into a room the user previously left implicitly rejoins it.
func (r *roomRepository) ReactivateParticipant(ctx context.Context, roomID string, userID int64) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":          oid,
		"participants": bson.M{"$elemMatch": bson.M{"user_id": userID}},
	}
	update := bson.M{"$set": bson.M{
		"participants.$.status":       domain.ParticipantActive,
		"participants.$.unread_count": 0,
	}}

	_, err = r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *roomRepository) MarkParticipantLeft(ctx context.Context, roomID string, userID int64, ts time.Time) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":          oid,
		"participants": bson.M{"$elemMatch": bson.M{"user_id": userID}},
	}
	update := bson.M{"$set": bson.M{
		"participants.$.status":          domain.ParticipantLeft,
		"participants.$.leave_timestamp": ts,
	}}

	_, err = r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *roomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// BumpMessageStats advance last_message_at and the message counter after
// a successful append
func (r *roomRepository) BumpMessageStats(ctx context.Context, roomID string, lastMessageAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{"last_message_at": lastMessageAt},
		"$inc": bson.M{"message_count": 1},
	}

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

// IncrementUnreadForOthers bump the unread counter of every other ACTIVE
// participant in one filtered update
func (r *roomRepository) IncrementUnreadForOthers(ctx context.Context, roomID string, exceptUserID int64) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	update := bson.M{"$inc": bson.M{"participants.$[other].unread_count": 1}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"other.user_id": bson.M{"$ne": exceptUserID},
			"other.status":  domain.ParticipantActive,
		}},
	})

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update, opts)
	return err
}

func (r *roomRepository) ResetUnread(ctx context.Context, roomID string, userID int64, lastReadMessageID string) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":          oid,
		"participants": bson.M{"$elemMatch": bson.M{"user_id": userID}},
	}
	update := bson.M{"$set": bson.M{
		"participants.$.unread_count":         0,
		"participants.$.last_read_message_id": lastReadMessageID,
	}}

	_, err = r.coll.UpdateOne(ctx, filter, update)
	return err
}
