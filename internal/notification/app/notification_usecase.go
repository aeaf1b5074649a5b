package app

import (
	"context"

	"go.uber.org/zap"

	"social_network_service/internal/notification/domain"
	"social_network_service/internal/notification/repository"
	"social_network_service/pkg/logger"
)

// NotificationUseCase push delivery and the persisted notification feed.
// Delivery is best effort, a failed push is logged and never surfaces to
// the caller that triggered it.
type NotificationUseCase struct {
	tokenRepo repository.DeviceTokenRepository
	notifRepo repository.NotificationRepository
	push      repository.PushClient
}

// NewNotificationUseCase create NotificationUseCase
func NewNotificationUseCase(
	tokenRepo repository.DeviceTokenRepository,
	notifRepo repository.NotificationRepository,
	push repository.PushClient,
) *NotificationUseCase {
	return &NotificationUseCase{
		tokenRepo: tokenRepo,
		notifRepo: notifRepo,
		push:      push,
	}
}

// RegisterDeviceToken register or refresh a device token for the user
func (uc *NotificationUseCase) RegisterDeviceToken(ctx context.Context, userID int64, req domain.DeviceTokenRequest) error {
	return uc.tokenRepo.Register(ctx, userID, req.Token, req.DeviceInfo)
}

// RemoveDeviceToken deactivate a device token
func (uc *NotificationUseCase) RemoveDeviceToken(ctx context.Context, userID int64, token string) error {
	return uc.tokenRepo.Remove(ctx, userID, token)
}

// SendToUser pushes the notification to every active device of the user and
// records it in the feed.
func (uc *NotificationUseCase) SendToUser(ctx context.Context, userID int64, notification domain.Notification) {
	uc.saveRecord(ctx, userID, notification)

	tokens, err := uc.tokenRepo.ActiveTokens(ctx, userID)
	if err != nil {
		logger.Log.Error("load device tokens failed",
			zap.Int64("userID", userID),
			zap.String("err", err.Error()),
		)
		return
	}
	if len(tokens) == 0 {
		return
	}

	stale, err := uc.push.Send(ctx, tokens, notification)
	if err != nil {
		logger.Log.Error("push send failed",
			zap.Int64("userID", userID),
			zap.String("err", err.Error()),
		)
		return
	}

	if len(stale) > 0 {
		if err := uc.tokenRepo.Invalidate(ctx, userID, stale); err != nil {
			logger.Log.Errorf("invalidate stale tokens failed:", err)
		}
	}
}

func (uc *NotificationUseCase) saveRecord(ctx context.Context, userID int64, notification domain.Notification) {
	record := domain.NotificationRecord{
		UserID:    userID,
		Type:      notification.Type,
		Body:      notification.Body,
		SenderID:  notification.SenderID,
		BoardID:   notification.BoardID,
		CommentID: notification.CommentID,
		RoomID:    notification.RoomID,
	}
	if _, err := uc.notifRepo.Save(ctx, record); err != nil {
		logger.Log.Errorf("save notification record failed:", err)
	}
}

// GetNotifications page through the user's feed, newest first
func (uc *NotificationUseCase) GetNotifications(ctx context.Context, userID int64, page, size int) ([]domain.NotificationRecord, error) {
	return uc.notifRepo.FindByUser(ctx, userID, page, size)
}

// MarkAsRead mark one feed entry read
func (uc *NotificationUseCase) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	return uc.notifRepo.MarkAsRead(ctx, userID, notificationID)
}

// HasUnread report whether any unread feed entry exists
func (uc *NotificationUseCase) HasUnread(ctx context.Context, userID int64) (bool, error) {
	return uc.notifRepo.HasUnread(ctx, userID)
}

// Delete remove one feed entry
func (uc *NotificationUseCase) Delete(ctx context.Context, userID, notificationID int64) error {
	return uc.notifRepo.Delete(ctx, userID, notificationID)
}

// DeleteAll clear the user's feed
func (uc *NotificationUseCase) DeleteAll(ctx context.Context, userID int64) error {
	return uc.notifRepo.DeleteAll(ctx, userID)
}
