package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

// ApplicationHandler - отклики исполнителей и их просмотр заказчиком.
type ApplicationHandler struct {
	apps *service.ApplicationService
}

func NewApplicationHandler(apps *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

// Apply POST /api/jobs/:id/applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.apps.Submit(c.Request.Context(), userID, jobID, req.Proposal, req.Bid)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListForJob GET /api/jobs/:id/applications?page=
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	page, err := h.apps.ListForJob(c.Request.Context(), userID, jobID, common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListMine GET /api/applications/my?page=
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, err := h.apps.ListMine(c.Request.Context(), userID, common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetApplication GET /api/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	userID, appID, ok := userAndParam(c, "id", "неверный application_id")
	if !ok {
		return
	}

	app, err := h.apps.GetApplication(c.Request.Context(), userID, appID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Reject POST /api/applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	userID, appID, ok := userAndParam(c, "id", "неверный application_id")
	if !ok {
		return
	}

	app, err := h.apps.Reject(c.Request.Context(), userID, appID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
