package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService ведёт ленту уведомлений пользователя. Хаб вебсокетов
// сохраняет через него каждое событие перед живой доставкой.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Save сохраняет событие в ленту пользователя.
func (s *NotificationService) Save(ctx context.Context, userID uuid.UUID, event string, data any) (*models.Notification, error) {
	payload, err := json.Marshal(models.NotificationPayload{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload %w", err)
	}

	n := &models.Notification{UserID: userID, Payload: payload}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Persist реализует ws.NotificationStore.
func (s *NotificationService) Persist(ctx context.Context, userID uuid.UUID, event string, data any) error {
	_, err := s.Save(ctx, userID, event, data)
	return err
}

// List возвращает страницу ленты, новые сверху.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page int, unreadOnly bool) (*models.Page[models.Notification], error) {
	page, limit, offset := pageBounds(page, models.NotificationsPerPage)
	items, total, err := s.repo.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return newPage(items, page, limit, total), nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return translate(s.repo.MarkAsRead(ctx, id, userID))
}

// MarkAllAsRead возвращает число отмеченных уведомлений.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}
