package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
)

// User описывает участника площадки. Баланс меняется только через кошелёк.
type User struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	ExternalID  string                 `db:"external_id" json:"external_id"`
	Username    *string                `db:"username" json:"username,omitempty"`
	DisplayName string                 `db:"display_name" json:"display_name"`
	Role        valueobject.Role       `db:"role" json:"role"`
	Status      valueobject.UserStatus `db:"status" json:"status"`
	Balance     decimal.Decimal        `db:"balance" json:"balance"`
	Bio         *string                `db:"bio" json:"bio,omitempty"`
	AdminNotes  *string                `db:"admin_notes" json:"-"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time              `db:"updated_at" json:"updated_at"`
	Skills      []Skill                `db:"-" json:"skills,omitempty"`
}

// IsBanned сообщает, заблокирован ли пользователь администратором.
func (u *User) IsBanned() bool {
	return u.Status == valueobject.UserStatusBanned
}

// HasRole проверяет выбранную роль.
func (u *User) HasRole(role valueobject.Role) bool {
	return u.Role == role
}

// FreelancerProfile содержит публичную статистику исполнителя.
type FreelancerProfile struct {
	User          *User   `json:"user"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
	CompletedJobs int     `json:"completed_jobs"`
}

// EarningsSummary - итог заработка исполнителя.
type EarningsSummary struct {
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	TotalEarned  decimal.Decimal `db:"total_earned" json:"total_earned"`
	EarningCount int             `db:"earning_count" json:"earning_count"`
}
