package app

import (
	"context"
	"sync"
	"time"

	"social_network_service/internal/chat/domain"
	memberdomain "social_network_service/internal/member/domain"
	notifdomain "social_network_service/internal/notification/domain"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// CreateRoom mock create room
func (m *MockRoomRepository) CreateRoom(ctx context.Context, room *domain.ChatRoom) (string, error) {
	args := m.Called(ctx, room)
	return args.String(0), args.Error(1)
}

// FindByID mock find room by room id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindActiveRoomByParticipants mock exact participant set lookup
func (m *MockRoomRepository) FindActiveRoomByParticipants(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindActiveRoomForUser mock active room lookup for one participant
func (m *MockRoomRepository) FindActiveRoomForUser(ctx context.Context, roomID string, userID int64) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindRoomsForUser mock paged room listing
func (m *MockRoomRepository) FindRoomsForUser(ctx context.Context, userID int64, page, size int) ([]domain.ChatRoom, error) {
	args := m.Called(ctx, userID, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// ReactivateLeftParticipants mock reactivate all LEFT participants
func (m *MockRoomRepository) ReactivateLeftParticipants(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// ReactivateParticipant mock reactivate one participant
func (m *MockRoomRepository) ReactivateParticipant(ctx context.Context, roomID string, userID int64) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

// MarkParticipantLeft mock mark participant LEFT
func (m *MockRoomRepository) MarkParticipantLeft(ctx context.Context, roomID string, userID int64, ts time.Time) error {
	args := m.Called(ctx, roomID, userID, ts)
	return args.Error(0)
}

// DeleteRoom mock delete room
func (m *MockRoomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// BumpMessageStats mock room aggregate bump
func (m *MockRoomRepository) BumpMessageStats(ctx context.Context, roomID string, lastMessageAt time.Time) error {
	args := m.Called(ctx, roomID, lastMessageAt)
	return args.Error(0)
}

// IncrementUnreadForOthers mock unread counter increment
func (m *MockRoomRepository) IncrementUnreadForOthers(ctx context.Context, roomID string, exceptUserID int64) error {
	args := m.Called(ctx, roomID, exceptUserID)
	return args.Error(0)
}

// ResetUnread mock reset unread counter
func (m *MockRoomRepository) ResetUnread(ctx context.Context, roomID string, userID int64, lastReadMessageID string) error {
	args := m.Called(ctx, roomID, userID, lastReadMessageID)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert msg
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindVisibleMessages mock paged history read
func (m *MockMessageRepository) FindVisibleMessages(ctx context.Context, roomID string, after *time.Time, page, size int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID, after, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindLastVisibleMessage mock last message read
func (m *MockMessageRepository) FindLastVisibleMessage(ctx context.Context, roomID string, after *time.Time) (*domain.ChatMessage, error) {
	args := m.Called(ctx, roomID, after)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// ApplyLeaveBarrier mock leave barrier stamp
func (m *MockMessageRepository) ApplyLeaveBarrier(ctx context.Context, roomID string, barrier time.Time) error {
	args := m.Called(ctx, roomID, barrier)
	return args.Error(0)
}

// DeleteByRoom mock delete all room messages
func (m *MockMessageRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// CountByRoom mock message count
func (m *MockMessageRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// FindByID mock find user identity
func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*memberdomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*memberdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs mock resolve user identities
func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []int64) ([]memberdomain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]memberdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPushNotifier Mock PushNotifier
type MockPushNotifier struct {
	mock.Mock
}

// SendToUser mock push delivery
func (m *MockPushNotifier) SendToUser(ctx context.Context, userID int64, notification notifdomain.Notification) {
	m.Called(ctx, userID, notification)
}

// mockConn in-memory ChatConn capturing written frames
type mockConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool

	writeErr error
}

func (c *mockConn) WriteText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *mockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *mockConn) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *mockConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
