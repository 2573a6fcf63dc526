package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolveContactRequest - запрос доверенного фронтенда на вход пользователя по внешнему идентификатору.
type ResolveContactRequest struct {
	ExternalID  string  `json:"external_id" binding:"required"`
	Username    *string `json:"username"`
	DisplayName string  `json:"display_name"`
}

// RefreshRequest - обмен refresh токена на новую пару.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AdminLoginRequest - вход в консоль администратора.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SelectRoleRequest - однократный выбор роли.
type SelectRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type UpdateBioRequest struct {
	Bio *string `json:"bio"`
}

// CreateJobRequest - публикация заказа или черновика.
type CreateJobRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Budget      decimal.Decimal `json:"budget"`
	SkillIDs    []uuid.UUID     `json:"skill_ids"`
}

// ApplyRequest - отклик исполнителя на заказ.
type ApplyRequest struct {
	Proposal string          `json:"proposal" binding:"required"`
	Bid      decimal.Decimal `json:"bid"`
}

type SubmitReviewRequest struct {
	RevieweeID uuid.UUID `json:"reviewee_id" binding:"required"`
	Rating     int       `json:"rating" binding:"required,min=1,max=5"`
	Comment    *string   `json:"comment"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type WithdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Address string          `json:"address" binding:"required"`
}

type ReportRequest struct {
	ReportedID uuid.UUID `json:"reported_id" binding:"required"`
	Reason     string    `json:"reason" binding:"required"`
}

// BanRequest - блокировка пользователя с обязательной причиной.
type BanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type UnbanRequest struct {
	Reason *string `json:"reason"`
}
