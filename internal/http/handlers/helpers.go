package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
)

// userAndParam достаёт текущего пользователя и UUID из пути.
// При ошибке ответ уже отправлен.
func userAndParam(c *gin.Context, param, badMessage string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	id, err := common.ParseUUIDParam(c, param)
	if err != nil {
		common.RespondBadRequest(c, badMessage)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
