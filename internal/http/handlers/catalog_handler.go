package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

// CatalogHandler - справочник навыков и навыки исполнителя.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListSkills GET /api/skills?page=
// С параметрами name=... ищет навыки по названиям без учёта регистра.
func (h *CatalogHandler) ListSkills(c *gin.Context) {
	if names := c.QueryArray("name"); len(names) > 0 {
		skills, err := h.catalog.FindByNames(c.Request.Context(), names)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": skills})
		return
	}

	page, err := h.catalog.ListSkills(c.Request.Context(), common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ToggleSkill POST /api/me/skills/:skillId/toggle
func (h *CatalogHandler) ToggleSkill(c *gin.Context) {
	userID, skillID, ok := userAndParam(c, "skillId", "неверный skill_id")
	if !ok {
		return
	}

	added, skills, err := h.catalog.ToggleSkill(c.Request.Context(), userID, skillID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToggleSkillResponse{Added: added, Skills: skills})
}
