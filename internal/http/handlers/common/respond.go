package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
)

const internalMessage = "внутренняя ошибка сервера"

// RespondError отправляет ошибку в стандартном формате.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, dto.ErrorResponse{Error: message})
}

// RespondAppError переводит ошибку сервиса в HTTP ответ.
// Ошибки без кода и 5xx считаются внутренними: текст скрывается, причина пишется в лог.
func RespondAppError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).Error("Ошибка обработки запроса")
		RespondError(c, http.StatusInternalServerError, internalMessage)
		return
	}

	resp := dto.ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)}
	if shortfall, ok := apperror.ShortfallOf(err); ok {
		resp.Shortfall = &shortfall
	}
	c.JSON(appErr.HTTPStatus, resp)
}

func RespondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.SuccessResponse{Message: message, Data: data})
}

func RespondUnauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, orDefault(message, "требуется авторизация"))
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, orDefault(message, "некорректный запрос"))
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
