package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

// ErrorResponse - стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Shortfall заполняется только при нехватке средств.
	Shortfall *decimal.Decimal `json:"shortfall,omitempty"`
}

// SuccessResponse - стандартный ответ без тела сущности.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse - результат входа пользователя.
type AuthResponse struct {
	User    *models.User       `json:"user"`
	Created bool               `json:"created"`
	Tokens  *service.TokenPair `json:"tokens"`
}

// JobFundedResponse - созданный (или оплаченный) заказ и транзакция удержания.
type JobFundedResponse struct {
	Job         *models.Job         `json:"job"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// ToggleSkillResponse - результат переключения навыка.
type ToggleSkillResponse struct {
	Added  bool           `json:"added"`
	Skills []models.Skill `json:"skills"`
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
