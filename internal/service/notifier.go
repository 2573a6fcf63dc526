package service

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/metrics"
)

// Broadcaster - приёмник уведомлений. BroadcastToUser сохраняет уведомление в ленту,
// Push только отправляет в открытые соединения.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
	Push(userID uuid.UUID, event string, data any) error
}

// EventNotifier - канал уведомлений движков. Доставка best-effort:
// Notify и NotifyAdmin никогда не возвращают ошибку вызывающему.
type EventNotifier interface {
	Deliver(userID uuid.UUID, event string, data any) error
	Notify(userID uuid.UUID, event string, data any)
	NotifyAdmin(event string, data any)
}

// Notifier логирует и подавляет ошибки доставки.
type Notifier struct {
	sink    Broadcaster
	adminID uuid.UUID
}

func NewNotifier(sink Broadcaster, adminID uuid.UUID) *Notifier {
	return &Notifier{sink: sink, adminID: adminID}
}

// Deliver отправляет уведомление и возвращает ошибку доставки.
func (n *Notifier) Deliver(userID uuid.UUID, event string, data any) error {
	return n.sink.BroadcastToUser(userID, event, data)
}

func (n *Notifier) Notify(userID uuid.UUID, event string, data any) {
	if err := n.Deliver(userID, event, data); err != nil {
		metrics.NotificationFailure(event)
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
		}).WithError(err).Warn("не удалось доставить уведомление")
	}
}

// NotifyAdmin отправляет событие в консоль администратора.
func (n *Notifier) NotifyAdmin(event string, data any) {
	if err := n.sink.Push(n.adminID, event, data); err != nil {
		metrics.NotificationFailure(event)
		logger.Log.WithField("event", event).WithError(err).Warn("не удалось уведомить администратора")
	}
}
