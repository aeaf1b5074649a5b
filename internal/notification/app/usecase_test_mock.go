package app

import (
	"context"

	"social_network_service/internal/notification/domain"

	"github.com/stretchr/testify/mock"
)

// MockDeviceTokenRepository Mock DeviceTokenRepository
type MockDeviceTokenRepository struct {
	mock.Mock
}

// Register mock register device token
func (m *MockDeviceTokenRepository) Register(ctx context.Context, userID int64, token, deviceInfo string) error {
	args := m.Called(ctx, userID, token, deviceInfo)
	return args.Error(0)
}

// Remove mock deactivate device token
func (m *MockDeviceTokenRepository) Remove(ctx context.Context, userID int64, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

// ActiveTokens mock load active tokens
func (m *MockDeviceTokenRepository) ActiveTokens(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// Invalidate mock stale token invalidation
func (m *MockDeviceTokenRepository) Invalidate(ctx context.Context, userID int64, tokens []string) error {
	args := m.Called(ctx, userID, tokens)
	return args.Error(0)
}

// MockNotificationRepository Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

// Save mock save feed entry
func (m *MockNotificationRepository) Save(ctx context.Context, record domain.NotificationRecord) (int64, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(int64), args.Error(1)
}

// FindByUser mock paged feed read
func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID int64, page, size int) ([]domain.NotificationRecord, error) {
	args := m.Called(ctx, userID, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.NotificationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkAsRead mock mark feed entry read
func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// HasUnread mock unread check
func (m *MockNotificationRepository) HasUnread(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// Delete mock delete feed entry
func (m *MockNotificationRepository) Delete(ctx context.Context, userID, notificationID int64) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// DeleteAll mock clear feed
func (m *MockNotificationRepository) DeleteAll(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPushClient Mock PushClient
type MockPushClient struct {
	mock.Mock
}

// Send mock push delivery
func (m *MockPushClient) Send(ctx context.Context, tokens []string, notification domain.Notification) ([]string, error) {
	args := m.Called(ctx, tokens, notification)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}
