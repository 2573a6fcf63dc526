package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
)

// Transaction - запись журнала. Сумма всегда положительна, знак задаёт тип.
type Transaction struct {
	ID              uuid.UUID                     `db:"id" json:"id"`
	UserID          uuid.UUID                     `db:"user_id" json:"user_id"`
	Type            valueobject.TransactionType   `db:"type" json:"type"`
	Amount          decimal.Decimal               `db:"amount" json:"amount"`
	Status          valueobject.TransactionStatus `db:"status" json:"status"`
	JobID           *uuid.UUID                    `db:"job_id" json:"job_id,omitempty"`
	ExternalAddress *string                       `db:"external_address" json:"external_address,omitempty"`
	ReceiptPath     *string                       `db:"receipt_path" json:"receipt_path,omitempty"`
	SentAt          *time.Time                    `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt       time.Time                     `db:"created_at" json:"created_at"`
	CompletedAt     *time.Time                    `db:"completed_at" json:"completed_at,omitempty"`
}

// SignedAmount возвращает вклад транзакции в баланс владельца.
// Вывод списывается сразу при запросе, поэтому учитывается и в статусе pending.
func (t *Transaction) SignedAmount() decimal.Decimal {
	switch t.Status {
	case valueobject.TransactionStatusCompleted:
		if t.Type.IsCredit() {
			return t.Amount
		}
		return t.Amount.Neg()
	case valueobject.TransactionStatusPending:
		if t.Type == valueobject.TransactionTypeWithdrawal {
			return t.Amount.Neg()
		}
	}
	return decimal.Zero
}

// DepositRequest - созданный запрос на пополнение и реквизиты для перевода.
type DepositRequest struct {
	Transaction   *Transaction `json:"transaction"`
	WalletAddress string       `json:"wallet_address"`
}

// Wallet - баланс и страница истории операций.
type Wallet struct {
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
}

// PlatformRevenue - комиссия, удержанная платформой с завершённого заказа.
type PlatformRevenue struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	JobID     uuid.UUID       `db:"job_id" json:"job_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
