package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"social_network_service/internal/notification/domain"
)

// NotificationRepository persisted notification feed
type NotificationRepository interface {
	Save(ctx context.Context, record domain.NotificationRecord) (int64, error)
	FindByUser(ctx context.Context, userID int64, page, size int) ([]domain.NotificationRecord, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
	HasUnread(ctx context.Context, userID int64) (bool, error)
	Delete(ctx context.Context, userID, notificationID int64) error
	DeleteAll(ctx context.Context, userID int64) error
}

type notificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository create a NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Save(ctx context.Context, record domain.NotificationRecord) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, type, body, sender_id, board_id, comment_id, room_id, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
		 RETURNING id`,
		record.UserID, record.Type, record.Body,
		record.SenderID, record.BoardID, record.CommentID, record.RoomID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID int64, page, size int) ([]domain.NotificationRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, type, body, sender_id, board_id, comment_id, room_id, is_read, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`,
		userID, page*size, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.NotificationRecord
	for rows.Next() {
		var rec domain.NotificationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Body,
			&rec.SenderID, &rec.BoardID, &rec.CommentID, &rec.RoomID,
			&rec.IsRead, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2",
		notificationID, userID)
	return err
}

func (r *notificationRepository) HasUnread(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM notifications WHERE user_id = $1 AND is_read = FALSE)",
		userID).Scan(&exists)
	return exists, err
}

func (r *notificationRepository) Delete(ctx context.Context, userID, notificationID int64) error {
	_, err := r.db.Exec(ctx,
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2",
		notificationID, userID)
	return err
}

func (r *notificationRepository) DeleteAll(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM notifications WHERE user_id = $1", userID)
	return err
}
