package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"social_network_service/internal/chat/domain"
	memberdomain "social_network_service/internal/member/domain"
	notifdomain "social_network_service/internal/notification/domain"
	"social_network_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestUseCase(roomRepo *MockRoomRepository, msgRepo *MockMessageRepository, userRepo *MockUserRepository, notifier *MockPushNotifier) (*ChatUseCase, *PresenceRegistry) {
	logger.SetNewNop()
	presence := NewPresenceRegistry()
	return NewChatUseCase(roomRepo, msgRepo, userRepo, presence, notifier), presence
}

func activeRoom(id primitive.ObjectID, name string, userIDs ...int64) *domain.ChatRoom {
	participants := make([]domain.Participant, 0, len(userIDs))
	for _, userID := range userIDs {
		participants = append(participants, domain.Participant{
			UserID:      userID,
			UserLoginID: "login",
			UserName:    "user",
			Status:      domain.ParticipantActive,
		})
	}
	return &domain.ChatRoom{
		ID:           id,
		Name:         name,
		Participants: participants,
		Status:       domain.RoomActive,
		CreatedAt:    time.Now(),
	}
}

func TestChatUseCase_CreateRoom(t *testing.T) {
	ctx := context.Background()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockPushNotifier)

	mockRoomRepo.On("FindActiveRoomByParticipants", ctx, []int64{2, 1}).Return(nil, nil)
	mockUserRepo.On("FindByIDs", ctx, []int64{2, 1}).Return([]memberdomain.User{
		{ID: 2, LoginID: "bob", UserName: "Bob"},
		{ID: 1, LoginID: "alice", UserName: "Alice"},
	}, nil)
	mockRoomRepo.On("CreateRoom", ctx, mock.Anything).Return(primitive.NewObjectID().Hex(), nil)

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, mockUserRepo, mockNotifier)
	roomID, err := uc.CreateRoom(ctx, domain.CreateChatRoomRequest{Name: "pair", ParticipantIDs: []int64{2}}, 1)

	assert.NoError(t, err)
	assert.NotEmpty(t, roomID)
	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestChatUseCase_CreateRoom_RejectsCreatorInList(t *testing.T) {
	ctx := context.Background()

	uc, _ := newTestUseCase(new(MockRoomRepository), new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))
	_, err := uc.CreateRoom(ctx, domain.CreateChatRoomRequest{ParticipantIDs: []int64{1, 2}}, 1)

	assert.ErrorIs(t, err, domain.ErrInvalidParticipantList)
}

func TestChatUseCase_CreateRoom_RejectsUnknownParticipant(t *testing.T) {
	ctx := context.Background()

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)

	mockRoomRepo.On("FindActiveRoomByParticipants", ctx, []int64{2, 99, 1}).Return(nil, nil)
	// user 99 does not resolve
	mockUserRepo.On("FindByIDs", ctx, []int64{2, 99, 1}).Return([]memberdomain.User{
		{ID: 2, LoginID: "bob", UserName: "Bob"},
		{ID: 1, LoginID: "alice", UserName: "Alice"},
	}, nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), mockUserRepo, new(MockPushNotifier))
	_, err := uc.CreateRoom(ctx, domain.CreateChatRoomRequest{ParticipantIDs: []int64{2, 99}}, 1)

	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
	mockUserRepo.AssertExpectations(t)
}

// Creating a room with the same participant set twice must return the
// existing room id and reactivate any LEFT participant in it.
func TestChatUseCase_CreateRoom_CoalescesExistingRoom(t *testing.T) {
	ctx := context.Background()
	existingID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockUserRepo := new(MockUserRepository)

	existing := activeRoom(existingID, "pair", 2, 1)
	mockRoomRepo.On("FindActiveRoomByParticipants", ctx, []int64{2, 1}).Return(existing, nil)
	mockRoomRepo.On("ReactivateLeftParticipants", ctx, existingID.Hex()).Return(nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), mockUserRepo, new(MockPushNotifier))
	roomID, err := uc.CreateRoom(ctx, domain.CreateChatRoomRequest{Name: "pair", ParticipantIDs: []int64{2}}, 1)

	assert.NoError(t, err)
	assert.Equal(t, existingID.Hex(), roomID)
	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestChatUseCase_CheckExistingRoom(t *testing.T) {
	ctx := context.Background()
	existingID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("FindActiveRoomByParticipants", ctx, []int64{1, 2}).Return(activeRoom(existingID, "pair", 1, 2), nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))
	roomID, err := uc.CheckExistingRoom(ctx, 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, existingID.Hex(), roomID)
}

func TestChatUseCase_CheckExistingRoom_NoRoom(t *testing.T) {
	ctx := context.Background()

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("FindActiveRoomByParticipants", ctx, []int64{1, 2}).Return(nil, nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))
	roomID, err := uc.CheckExistingRoom(ctx, 1, 2)

	assert.NoError(t, err)
	assert.Empty(t, roomID)
}

// Online recipients get exactly one frame per live handle and no push.
func TestChatUseCase_SendMessage_DeliversToLiveHandles(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockNotifier := new(MockPushNotifier)

	room := activeRoom(roomID, "pair", 1, 2)
	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("FindActiveRoomForUser", ctx, roomID.Hex(), int64(1)).Return(room, nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(&domain.ChatMessage{}, nil)
	mockRoomRepo.On("BumpMessageStats", ctx, roomID.Hex(), mock.Anything).Return(nil)
	mockRoomRepo.On("IncrementUnreadForOthers", ctx, roomID.Hex(), int64(1)).Return(nil)

	uc, presence := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), mockNotifier)

	recipient := &mockConn{}
	presence.Register(2, recipient)

	hexID := roomID.Hex()
	msg, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1, UserName: "Alice"}, domain.ChatMessageRequest{
		Content: "hi",
		RoomID:  &hexID,
	})

	assert.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)

	frames := recipient.Frames()
	assert.Len(t, frames, 1)

	var delivered domain.ChatMessage
	assert.NoError(t, json.Unmarshal(frames[0], &delivered))
	assert.Equal(t, "hi", delivered.Content)
	assert.Equal(t, int64(1), delivered.SenderID)

	mockNotifier.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything, mock.Anything)
	mockRoomRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
}

// One dead handle must not block delivery to the recipient's remaining
// handles, and a recipient with at least one live handle gets no push.
func TestChatUseCase_SendMessage_DeadHandleDoesNotBlockFanOut(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockNotifier := new(MockPushNotifier)

	room := activeRoom(roomID, "pair", 1, 2)
	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("FindActiveRoomForUser", ctx, roomID.Hex(), int64(1)).Return(room, nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(&domain.ChatMessage{}, nil)
	mockRoomRepo.On("BumpMessageStats", ctx, roomID.Hex(), mock.Anything).Return(nil)
	mockRoomRepo.On("IncrementUnreadForOthers", ctx, roomID.Hex(), int64(1)).Return(nil)

	uc, presence := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), mockNotifier)

	dead := &mockConn{writeErr: errors.New("broken pipe")}
	live := &mockConn{}
	presence.Register(2, dead)
	presence.Register(2, live)

	hexID := roomID.Hex()
	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1, UserName: "Alice"}, domain.ChatMessageRequest{
		Content: "hi",
		RoomID:  &hexID,
	})

	assert.NoError(t, err)
	assert.Empty(t, dead.Frames())
	assert.Len(t, live.Frames(), 1)

	var delivered domain.ChatMessage
	assert.NoError(t, json.Unmarshal(live.Frames()[0], &delivered))
	assert.Equal(t, "hi", delivered.Content)

	mockNotifier.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything, mock.Anything)
}

// A recipient with zero live handles gets exactly one push notification
// carrying a preview of the content.
func TestChatUseCase_SendMessage_PushFallbackWhenOffline(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockNotifier := new(MockPushNotifier)

	room := activeRoom(roomID, "pair", 1, 2)
	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("FindActiveRoomForUser", ctx, roomID.Hex(), int64(1)).Return(room, nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(&domain.ChatMessage{}, nil)
	mockRoomRepo.On("BumpMessageStats", ctx, roomID.Hex(), mock.Anything).Return(nil)
	mockRoomRepo.On("IncrementUnreadForOthers", ctx, roomID.Hex(), int64(1)).Return(nil)

	mockNotifier.On("SendToUser", ctx, int64(2), mock.MatchedBy(func(n notifdomain.Notification) bool {
		return n.Type == "chat" && n.Body == "hi" && n.Title == "Alice"
	})).Return()

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), mockNotifier)

	hexID := roomID.Hex()
	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1, UserName: "Alice"}, domain.ChatMessageRequest{
		Content: "hi",
		RoomID:  &hexID,
	})

	assert.NoError(t, err)
	mockNotifier.AssertNumberOfCalls(t, "SendToUser", 1)
}

func TestChatUseCase_SendMessage_TruncatesPushPreview(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	longContent := ""
	for i := 0; i < 150; i++ {
		longContent += "x"
	}

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockNotifier := new(MockPushNotifier)

	room := activeRoom(roomID, "pair", 1, 2)
	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("FindActiveRoomForUser", ctx, roomID.Hex(), int64(1)).Return(room, nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(&domain.ChatMessage{}, nil)
	mockRoomRepo.On("BumpMessageStats", ctx, roomID.Hex(), mock.Anything).Return(nil)
	mockRoomRepo.On("IncrementUnreadForOthers", ctx, roomID.Hex(), int64(1)).Return(nil)

	mockNotifier.On("SendToUser", ctx, int64(2), mock.MatchedBy(func(n notifdomain.Notification) bool {
		return len([]rune(n.Body)) == pushPreviewLimit
	})).Return()

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), mockNotifier)

	hexID := roomID.Hex()
	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1, UserName: "Alice"}, domain.ChatMessageRequest{
		Content: longContent,
		RoomID:  &hexID,
	})

	assert.NoError(t, err)
	mockNotifier.AssertExpectations(t)
}

// Sending into a room the sender previously left implicitly rejoins.
func TestChatUseCase_SendMessage_ReactivatesLeftSender(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockNotifier := new(MockPushNotifier)

	leaveTs := time.Now().Add(-time.Hour)
	room := activeRoom(roomID, "pair", 1, 2)
	room.Participants[0].Status = domain.ParticipantLeft
	room.Participants[0].LeaveTimestamp = &leaveTs

	rejoined := activeRoom(roomID, "pair", 1, 2)

	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("ReactivateParticipant", ctx, roomID.Hex(), int64(1)).Return(nil)
	mockRoomRepo.On("FindActiveRoomForUser", ctx, roomID.Hex(), int64(1)).Return(rejoined, nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(&domain.ChatMessage{}, nil)
	mockRoomRepo.On("BumpMessageStats", ctx, roomID.Hex(), mock.Anything).Return(nil)
	mockRoomRepo.On("IncrementUnreadForOthers", ctx, roomID.Hex(), int64(1)).Return(nil)
	mockNotifier.On("SendToUser", ctx, int64(2), mock.Anything).Return()

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), mockNotifier)

	hexID := roomID.Hex()
	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1, UserName: "Alice"}, domain.ChatMessageRequest{
		Content: "back again",
		RoomID:  &hexID,
	})

	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
}

func TestChatUseCase_SendMessage_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID().Hex()

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("FindByID", ctx, roomID).Return(nil, nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))

	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1}, domain.ChatMessageRequest{
		Content: "hi",
		RoomID:  &roomID,
	})

	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestChatUseCase_SendMessage_NonParticipant(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	room := activeRoom(roomID, "pair", 1, 2)
	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	// user 3 is no participant, the active lookup comes back empty
	mockRoomRepo.On("FindActiveRoomForUser", ctx, roomID.Hex(), int64(3)).Return(nil, nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))

	hexID := roomID.Hex()
	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 3}, domain.ChatMessageRequest{
		Content: "hi",
		RoomID:  &hexID,
	})

	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestChatUseCase_SendMessage_NoTarget(t *testing.T) {
	ctx := context.Background()

	uc, _ := newTestUseCase(new(MockRoomRepository), new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))

	_, err := uc.SendMessage(ctx, domain.ChatSession{UserID: 1}, domain.ChatMessageRequest{Content: "hi"})

	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestChatUseCase_MarkAsRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID().Hex()
	messageID := primitive.NewObjectID().Hex()

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("ResetUnread", ctx, roomID, int64(1), messageID).Return(nil).Twice()

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))

	assert.NoError(t, uc.MarkAsRead(ctx, 1, roomID, messageID))
	assert.NoError(t, uc.MarkAsRead(ctx, 1, roomID, messageID))
	mockRoomRepo.AssertExpectations(t)
}

// Leaving with other active participants remaining marks the participant
// LEFT and stamps the barrier onto the existing history.
func TestChatUseCase_LeaveRoom(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	room := activeRoom(roomID, "pair", 1, 2)
	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("MarkParticipantLeft", ctx, roomID.Hex(), int64(1), mock.Anything).Return(nil)
	mockMsgRepo.On("ApplyLeaveBarrier", ctx, roomID.Hex(), mock.Anything).Return(nil)

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), new(MockPushNotifier))

	assert.NoError(t, uc.LeaveRoom(ctx, 1, roomID.Hex()))
	mockRoomRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
}

// The last active participant leaving deletes the room and its messages.
func TestChatUseCase_LeaveRoom_LastParticipantDeletesRoom(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	leaveTs := time.Now().Add(-time.Hour)
	room := activeRoom(roomID, "pair", 1, 2)
	room.Participants[1].Status = domain.ParticipantLeft
	room.Participants[1].LeaveTimestamp = &leaveTs

	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockRoomRepo.On("DeleteRoom", ctx, roomID.Hex()).Return(nil)
	mockMsgRepo.On("DeleteByRoom", ctx, roomID.Hex()).Return(nil)

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), new(MockPushNotifier))

	assert.NoError(t, uc.LeaveRoom(ctx, 1, roomID.Hex()))
	mockRoomRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
	mockRoomRepo.AssertNotCalled(t, "MarkParticipantLeft", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatUseCase_LeaveRoom_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID().Hex()

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("FindByID", ctx, roomID).Return(nil, nil)

	uc, _ := newTestUseCase(mockRoomRepo, new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))

	assert.ErrorIs(t, uc.LeaveRoom(ctx, 1, roomID), domain.ErrRoomNotFound)
}

// GetMessages passes the requester's leave timestamp as the lower bound.
func TestChatUseCase_GetMessages_BoundedByLeaveTimestamp(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	leaveTs := time.Now().Add(-time.Hour)
	room := activeRoom(roomID, "pair", 1, 2)
	room.Participants[0].LeaveTimestamp = &leaveTs

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockRoomRepo.On("FindByID", ctx, roomID.Hex()).Return(room, nil)
	mockMsgRepo.On("FindVisibleMessages", ctx, roomID.Hex(), &leaveTs, 0, 50).Return([]domain.ChatMessage{}, nil)

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), new(MockPushNotifier))

	_, err := uc.GetMessages(ctx, 1, roomID.Hex(), 0, 50)

	assert.NoError(t, err)
	mockMsgRepo.AssertExpectations(t)
}

func TestChatUseCase_GetRooms(t *testing.T) {
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	room := activeRoom(roomID, "pair", 1, 2)
	lastMsg := &domain.ChatMessage{RoomID: roomID.Hex(), SenderID: 2, Content: "latest"}

	mockRoomRepo.On("FindRoomsForUser", ctx, int64(1), 0, 20).Return([]domain.ChatRoom{*room}, nil)
	mockMsgRepo.On("FindLastVisibleMessage", ctx, roomID.Hex(), (*time.Time)(nil)).Return(lastMsg, nil)

	uc, _ := newTestUseCase(mockRoomRepo, mockMsgRepo, new(MockUserRepository), new(MockPushNotifier))

	rooms, err := uc.GetRooms(ctx, 1, 0, 20)

	assert.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, roomID.Hex(), rooms[0].ID)
	assert.Equal(t, "latest", rooms[0].LastMessage.Content)
}

func TestChatUseCase_ConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()

	uc, presence := newTestUseCase(new(MockRoomRepository), new(MockMessageRepository), new(MockUserRepository), new(MockPushNotifier))

	assert.ErrorIs(t, uc.Connect(ctx, nil, domain.ChatSession{UserID: 1}), domain.ErrChatConnection)

	first := &mockConn{}
	second := &mockConn{}
	assert.NoError(t, uc.Connect(ctx, first, domain.ChatSession{UserID: 1}))
	assert.NoError(t, uc.Connect(ctx, second, domain.ChatSession{UserID: 1}))
	assert.True(t, presence.HasActiveConns(1))

	uc.Disconnect(1)

	assert.False(t, presence.HasActiveConns(1))
	assert.True(t, first.Closed())
	assert.True(t, second.Closed())
}
