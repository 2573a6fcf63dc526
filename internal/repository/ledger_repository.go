package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository/common"
)

const transactionColumns = `id, user_id, type, amount, status, job_id, external_address, receipt_path, sent_at, created_at, completed_at`

// LedgerRepository - хранилище балансов и журнала транзакций.
// Каждый публичный метод - одна транзакция БД: баланс и запись журнала меняются вместе.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetBalance возвращает текущий баланс пользователя.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	user, err := common.GetByID[models.User](ctx, r.db, "users", userID, ErrUserNotFound)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

// GetTransaction возвращает транзакцию по ID.
func (r *LedgerRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return common.GetByID[models.Transaction](ctx, r.db, "transactions", id, ErrTransactionNotFound)
}

// CreateDeposit создаёт ожидающий подтверждения депозит. Баланс не меняется.
func (r *LedgerRepository) CreateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.GetContext(ctx, &transaction, `
		INSERT INTO transactions (user_id, type, amount, status)
		VALUES ($1, 'deposit', $2, 'pending')
		RETURNING `+transactionColumns, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: create deposit %w", err)
	}
	return &transaction, nil
}

// MarkDepositSent отмечает, что пользователь отправил перевод, и сохраняет путь к квитанции.
func (r *LedgerRepository) MarkDepositSent(ctx context.Context, txID, userID uuid.UUID, receiptPath *string) (*models.Transaction, error) {
	var transaction *models.Transaction
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := common.LockByID[models.Transaction](ctx, tx, "transactions", txID, ErrTransactionNotFound)
		if err != nil {
			return err
		}
		if current.UserID != userID {
			return ErrNotOwner
		}
		if current.Type != valueobject.TransactionTypeDeposit || current.Status != valueobject.TransactionStatusPending {
			return invalidState("transaction", current.Status)
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions SET sent_at = $2, receipt_path = COALESCE($3, receipt_path) WHERE id = $1
		`, txID, now, receiptPath); err != nil {
			return fmt.Errorf("ledger repository: mark deposit sent %w", err)
		}
		current.SentAt = &now
		if receiptPath != nil {
			current.ReceiptPath = receiptPath
		}
		transaction = current
		return nil
	})
	return transaction, err
}

// ConfirmDeposit проводит депозит и зачисляет сумму на баланс.
// Повторное подтверждение отклоняется: статус меняется только из pending.
func (r *LedgerRepository) ConfirmDeposit(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return r.settle(ctx, txID, valueobject.TransactionTypeDeposit, valueobject.TransactionStatusCompleted, true)
}

// RejectDeposit помечает депозит как неуспешный. Баланс не меняется.
func (r *LedgerRepository) RejectDeposit(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return r.settle(ctx, txID, valueobject.TransactionTypeDeposit, valueobject.TransactionStatusFailed, false)
}

// ConfirmWithdrawal проводит вывод. Баланс уже списан при запросе.
func (r *LedgerRepository) ConfirmWithdrawal(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return r.settle(ctx, txID, valueobject.TransactionTypeWithdrawal, valueobject.TransactionStatusCompleted, false)
}

// RejectWithdrawal отклоняет вывод и возвращает списанную сумму на баланс.
func (r *LedgerRepository) RejectWithdrawal(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return r.settle(ctx, txID, valueobject.TransactionTypeWithdrawal, valueobject.TransactionStatusFailed, true)
}

// settle переводит pending-транзакцию ожидаемого типа в конечный статус
// и при credit зачисляет её сумму владельцу.
func (r *LedgerRepository) settle(ctx context.Context, txID uuid.UUID, txType valueobject.TransactionType, to valueobject.TransactionStatus, credit bool) (*models.Transaction, error) {
	var transaction *models.Transaction
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := common.LockByID[models.Transaction](ctx, tx, "transactions", txID, ErrTransactionNotFound)
		if err != nil {
			return err
		}
		if current.Type != txType {
			return invalidState("transaction type", current.Type)
		}
		if !current.Status.CanTransitionTo(to) {
			return invalidState("transaction", current.Status)
		}

		now := time.Now()
		var completedAt *time.Time
		if to == valueobject.TransactionStatusCompleted {
			completedAt = &now
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE transactions SET status = $2, completed_at = $3 WHERE id = $1 AND status = 'pending'
		`, txID, to, completedAt)
		if err != nil {
			return fmt.Errorf("ledger repository: settle %w", err)
		}
		n, err := rowsAffected(res, "ledger repository: settle")
		if err != nil {
			return err
		}
		if n != 1 {
			return invalidState("transaction", current.Status)
		}

		if credit {
			if err := creditBalance(ctx, tx, current.UserID, current.Amount); err != nil {
				return err
			}
		}

		current.Status = to
		current.CompletedAt = completedAt
		transaction = current
		return nil
	})
	return transaction, err
}

// RequestWithdrawal списывает сумму сразу и создаёт pending-транзакцию вывода
// с адресом получателя.
func (r *LedgerRepository) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, address string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := debitBalance(ctx, tx, userID, amount); err != nil {
			return err
		}
		return tx.GetContext(ctx, &transaction, `
			INSERT INTO transactions (user_id, type, amount, status, external_address)
			VALUES ($1, 'withdrawal', $2, 'pending', $3)
			RETURNING `+transactionColumns, userID, amount, address)
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ListTransactions возвращает страницу истории (новые сверху) и общее количество.
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("ledger repository: count transactions %w", err)
	}

	transactions := []models.Transaction{}
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger repository: list transactions %w", err)
	}
	return transactions, total, nil
}

// EarningsSummary суммирует проведённые начисления исполнителя.
func (r *LedgerRepository) EarningsSummary(ctx context.Context, userID uuid.UUID) (*models.EarningsSummary, error) {
	summary := models.EarningsSummary{UserID: userID}
	err := r.db.GetContext(ctx, &summary, `
		SELECT $1::uuid AS user_id, COALESCE(SUM(amount), 0) AS total_earned, COUNT(*) AS earning_count
		FROM transactions WHERE user_id = $1 AND type = 'earning' AND status = 'completed'
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: earnings summary %w", err)
	}
	return &summary, nil
}

// PlatformRevenueTotal возвращает сумму удержанных комиссий.
func (r *LedgerRepository) PlatformRevenueTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM platform_revenue`); err != nil {
		return decimal.Zero, fmt.Errorf("ledger repository: platform revenue %w", err)
	}
	return total, nil
}

// debitBalance атомарно списывает сумму: проверка и списание - одно выражение
// под блокировкой строки, так что параллельные списания не уводят баланс в минус.
func debitBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	var balance decimal.Decimal
	if err := tx.GetContext(ctx, &balance, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		return notFoundOr(err, ErrUserNotFound, "ledger repository: lock balance")
	}
	if balance.LessThan(amount) {
		return &InsufficientFundsError{Balance: balance, Required: amount}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET balance = balance - $2, updated_at = NOW() WHERE id = $1 AND balance >= $2
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ledger repository: debit %w", err)
	}
	n, err := rowsAffected(res, "ledger repository: debit")
	if err != nil {
		return err
	}
	if n != 1 {
		return &InsufficientFundsError{Balance: balance, Required: amount}
	}
	return nil
}

func creditBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET balance = balance + $2, updated_at = NOW() WHERE id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ledger repository: credit %w", err)
	}
	n, err := rowsAffected(res, "ledger repository: credit")
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrUserNotFound
	}
	return nil
}

// postCompleted пишет проведённую запись журнала и сразу применяет её к балансу.
func postCompleted(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, txType valueobject.TransactionType, amount decimal.Decimal, jobID uuid.UUID) (*models.Transaction, error) {
	if txType.IsCredit() {
		if err := creditBalance(ctx, tx, userID, amount); err != nil {
			return nil, err
		}
	} else {
		if err := debitBalance(ctx, tx, userID, amount); err != nil {
			return nil, err
		}
	}

	var transaction models.Transaction
	err := tx.GetContext(ctx, &transaction, `
		INSERT INTO transactions (user_id, type, amount, status, job_id, completed_at)
		VALUES ($1, $2, $3, 'completed', $4, NOW())
		RETURNING `+transactionColumns, userID, txType, amount, jobID)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: post %s %w", txType, err)
	}
	return &transaction, nil
}

// recordPayment - эскроу-списание бюджета заказа с клиента.
func recordPayment(ctx context.Context, tx *sqlx.Tx, clientID uuid.UUID, amount decimal.Decimal, jobID uuid.UUID) (*models.Transaction, error) {
	return postCompleted(ctx, tx, clientID, valueobject.TransactionTypePayment, amount, jobID)
}

// recordEarning - выплата исполнителю за завершённый заказ.
func recordEarning(ctx context.Context, tx *sqlx.Tx, freelancerID uuid.UUID, amount decimal.Decimal, jobID uuid.UUID) (*models.Transaction, error) {
	return postCompleted(ctx, tx, freelancerID, valueobject.TransactionTypeEarning, amount, jobID)
}

// recordRefund - возврат эскроу клиенту при отмене открытого заказа.
func recordRefund(ctx context.Context, tx *sqlx.Tx, clientID uuid.UUID, amount decimal.Decimal, jobID uuid.UUID) (*models.Transaction, error) {
	return postCompleted(ctx, tx, clientID, valueobject.TransactionTypeRefund, amount, jobID)
}
