package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

// AdminHandler - консоль оператора: пользователи, подтверждение денежных операций, жалобы.
type AdminHandler struct {
	users   *service.UserService
	wallet  *service.WalletService
	reports *service.ReportService
}

func NewAdminHandler(users *service.UserService, wallet *service.WalletService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{users: users, wallet: wallet, reports: reports}
}

// ListUsers GET /api/admin/users?page=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := h.users.ListUsers(c.Request.Context(), common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// BanUser POST /api/admin/users/:id/ban
func (h *AdminHandler) BanUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный user_id")
		return
	}

	var req dto.BanRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, "укажите причину блокировки")
		return
	}

	user, err := h.users.Ban(c.Request.Context(), userID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UnbanUser POST /api/admin/users/:id/unban
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный user_id")
		return
	}

	// тело необязательно
	var req dto.UnbanRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	user, err := h.users.Unban(c.Request.Context(), userID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ConfirmDeposit POST /api/admin/transactions/:id/confirm-deposit
func (h *AdminHandler) ConfirmDeposit(c *gin.Context) {
	h.settle(c, h.wallet.ConfirmDeposit)
}

// RejectDeposit POST /api/admin/transactions/:id/reject-deposit
func (h *AdminHandler) RejectDeposit(c *gin.Context) {
	h.settle(c, h.wallet.RejectDeposit)
}

// ConfirmWithdrawal POST /api/admin/transactions/:id/confirm-withdrawal
func (h *AdminHandler) ConfirmWithdrawal(c *gin.Context) {
	h.settle(c, h.wallet.ConfirmWithdrawal)
}

// RejectWithdrawal POST /api/admin/transactions/:id/reject-withdrawal
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	h.settle(c, h.wallet.RejectWithdrawal)
}

func (h *AdminHandler) settle(c *gin.Context, op func(context.Context, uuid.UUID) (*models.Transaction, error)) {
	txID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный transaction_id")
		return
	}

	tx, err := op(c.Request.Context(), txID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Revenue GET /api/admin/revenue
func (h *AdminHandler) Revenue(c *gin.Context) {
	total, err := h.wallet.PlatformRevenue(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

// ListReports GET /api/admin/reports?page=
func (h *AdminHandler) ListReports(c *gin.Context) {
	page, err := h.reports.List(c.Request.Context(), common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// MarkReportReviewed POST /api/admin/reports/:id/review
func (h *AdminHandler) MarkReportReviewed(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный report_id")
		return
	}

	if err := h.reports.MarkReviewed(c.Request.Context(), reportID); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "жалоба отмечена как рассмотренная", gin.H{"report_id": reportID})
}
