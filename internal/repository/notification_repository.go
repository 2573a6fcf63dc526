package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-escrow/internal/models"
)

// NotificationRepository хранит ленту уведомлений пользователей.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление непрочитанным.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.GetContext(ctx, n, `
		INSERT INTO notifications (user_id, payload)
		VALUES ($1, $2)
		RETURNING id, user_id, payload, is_read, created_at
	`, n.UserID, n.Payload)
	if err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}
	return nil
}

// List возвращает страницу ленты пользователя, новые сверху, и общее количество.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)
	`, userID, unreadOnly); err != nil {
		return nil, 0, fmt.Errorf("notification repository: count %w", err)
	}

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, payload, is_read, created_at FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, userID, unreadOnly, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("notification repository: list %w", err)
	}
	return notifications, total, nil
}

// MarkAsRead отмечает уведомление прочитанным. Чужое уведомление считается ненайденным.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	var marked uuid.UUID
	err := r.db.GetContext(ctx, &marked, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2 RETURNING id
	`, id, userID)
	return notFoundOr(err, ErrNotificationNotFound, "notification repository: mark as read")
}

// MarkAllAsRead отмечает прочитанной всю ленту и возвращает число изменённых записей.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("notification repository: mark all as read %w", err)
	}
	return res.RowsAffected()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}
	return count, nil
}
