package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

// JobHandler - жизненный цикл заказа: публикация, оплата черновика, найм, сдача, приёмка, отмена.
type JobHandler struct {
	jobs *service.JobService
}

func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// CreateJob POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	h.create(c, false)
}

// CreateDraft POST /api/jobs/drafts
func (h *JobHandler) CreateDraft(c *gin.Context) {
	h.create(c, true)
}

func (h *JobHandler) create(c *gin.Context, draft bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateJobRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	input := service.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		SkillIDs:    req.SkillIDs,
	}

	if draft {
		job, err := h.jobs.CreateDraft(c.Request.Context(), userID, input)
		if err != nil {
			common.RespondAppError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.JobFundedResponse{Job: job})
		return
	}

	job, payment, err := h.jobs.CreateJob(c.Request.Context(), userID, input)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.JobFundedResponse{Job: job, Transaction: payment})
}

// FundJob POST /api/jobs/:id/fund
func (h *JobHandler) FundJob(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	job, payment, err := h.jobs.FundJob(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.JobFundedResponse{Job: job, Transaction: payment})
}

// Hire POST /api/applications/:id/hire
func (h *JobHandler) Hire(c *gin.Context) {
	userID, applicationID, ok := userAndParam(c, "id", "неверный application_id")
	if !ok {
		return
	}

	result, err := h.jobs.Hire(c.Request.Context(), userID, applicationID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MarkWorkComplete POST /api/jobs/:id/complete
func (h *JobHandler) MarkWorkComplete(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	job, err := h.jobs.MarkWorkComplete(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ConfirmCompletion POST /api/jobs/:id/confirm
func (h *JobHandler) ConfirmCompletion(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	result, err := h.jobs.ConfirmCompletion(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelJob POST /api/jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	result, err := h.jobs.CancelJob(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetJob GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный job_id")
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListOpen GET /api/jobs?page=
func (h *JobHandler) ListOpen(c *gin.Context) {
	page, err := h.jobs.ListOpen(c.Request.Context(), common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListMine GET /api/jobs/my?page=
func (h *JobHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, err := h.jobs.ListMine(c.Request.Context(), userID, common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
