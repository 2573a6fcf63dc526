package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
)

type Report struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ReporterID uuid.UUID `db:"reporter_id" json:"reporter_id"`
	ReportedID uuid.UUID `db:"reported_id" json:"reported_id"`
	Reason     string    `db:"reason" json:"reason"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Review - оценка одного участника заказа другим после завершения.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	JobID      uuid.UUID `db:"job_id" json:"job_id"`
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID uuid.UUID `db:"reviewee_id" json:"reviewee_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NotificationPayload - тело уведомления: имя события и его данные.
type NotificationPayload struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Notification - сохранённое уведомление пользователя.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
