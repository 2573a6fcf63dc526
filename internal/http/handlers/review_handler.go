package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// SubmitReview POST /api/jobs/:id/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, jobID, ok := userAndParam(c, "id", "неверный job_id")
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "рейтинг должен быть от 1 до 5")
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), userID, jobID, req.RevieweeID, req.Rating, req.Comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListJobReviews GET /api/jobs/:id/reviews
func (h *ReviewHandler) ListJobReviews(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный job_id")
		return
	}

	reviews, err := h.reviews.ListJobReviews(c.Request.Context(), jobID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// ListUserReviews GET /api/users/:id/reviews?page=
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный user_id")
		return
	}

	reviews, err := h.reviews.ListUserReviews(c.Request.Context(), userID, common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
