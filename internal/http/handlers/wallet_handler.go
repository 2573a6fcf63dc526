package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-escrow/internal/dto"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/freelance-escrow/internal/service"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

// receiptField - имя поля multipart формы с квитанцией.
const receiptField = "receipt"

// WalletHandler - баланс, история, пополнения и выводы текущего пользователя.
type WalletHandler struct {
	wallet         *service.WalletService
	maxUploadBytes int64
}

func NewWalletHandler(wallet *service.WalletService, maxUploadMB int64) *WalletHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &WalletHandler{wallet: wallet, maxUploadBytes: maxUploadMB << 20}
}

// GetWallet GET /api/wallet и GET /api/wallet/transactions?page=
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	wallet, err := h.wallet.GetWallet(c.Request.Context(), userID, common.PageQuery(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// GetTransaction GET /api/wallet/transactions/:id
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	txID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный transaction_id")
		return
	}

	tx, err := h.wallet.GetTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// RequestDeposit POST /api/wallet/deposits
func (h *WalletHandler) RequestDeposit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.DepositRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deposit, err := h.wallet.RequestDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

// MarkDepositSent POST /api/wallet/deposits/:id/sent
// Квитанция необязательна; если она есть, принимается multipart поле "receipt".
func (h *WalletHandler) MarkDepositSent(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	txID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный transaction_id")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var upload *service.ReceiptUpload
	fileHeader, err := c.FormFile(receiptField)
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			common.RespondBadRequest(c, "не удалось прочитать файл")
			return
		}
		defer file.Close()

		header := make([]byte, validation.ReceiptHeaderSize)
		n, err := io.ReadFull(file, header)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			common.RespondBadRequest(c, "не удалось прочитать файл")
			return
		}
		header = header[:n]
		if _, err := validation.ValidateReceipt(fileHeader.Filename, header); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		upload = &service.ReceiptUpload{
			Filename: fileHeader.Filename,
			Body:     io.MultiReader(bytes.NewReader(header), file),
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		common.RespondBadRequest(c, "файл слишком большой или форма повреждена")
		return
	}

	tx, err := h.wallet.MarkDepositSent(c.Request.Context(), userID, txID, upload)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// RequestWithdrawal POST /api/wallet/withdrawals
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.WithdrawalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tx, err := h.wallet.RequestWithdrawal(c.Request.Context(), userID, req.Amount, req.Address)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// Earnings GET /api/wallet/earnings
func (h *WalletHandler) Earnings(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	summary, err := h.wallet.Earnings(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
