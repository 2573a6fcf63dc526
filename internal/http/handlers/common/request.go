package common

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/http/middleware"
)

var (
	// ErrUserNotFound - в контексте запроса нет идентификатора пользователя.
	ErrUserNotFound = errors.New("пользователь не найден в контексте")

	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentUserID достаёт субъекта, положенного AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := c.Value(middleware.ContextUserIDKey).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, ErrUserNotFound
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}
	return id, nil
}

// BindAndValidate читает JSON тело и проверяет binding теги.
func BindAndValidate(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("ошибка валидации запроса: %w", err)
	}
	return nil
}

// PageQuery возвращает номер страницы из ?page. Мусор и пустое значение дают 1,
// остальные границы проверяет сервис.
func PageQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return page
}
