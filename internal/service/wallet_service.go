package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/metrics"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

// LedgerRepository - хранилище балансов и журнала транзакций.
type LedgerRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	CreateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error)
	MarkDepositSent(ctx context.Context, txID, userID uuid.UUID, receiptPath *string) (*models.Transaction, error)
	ConfirmDeposit(ctx context.Context, txID uuid.UUID) (*models.Transaction, error)
	RejectDeposit(ctx context.Context, txID uuid.UUID) (*models.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, address string) (*models.Transaction, error)
	ConfirmWithdrawal(ctx context.Context, txID uuid.UUID) (*models.Transaction, error)
	RejectWithdrawal(ctx context.Context, txID uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, int, error)
	EarningsSummary(ctx context.Context, userID uuid.UUID) (*models.EarningsSummary, error)
	PlatformRevenueTotal(ctx context.Context) (decimal.Decimal, error)
}

// ReceiptStorage сохраняет файлы квитанций.
type ReceiptStorage interface {
	Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// ReceiptUpload - файл квитанции, уже проверенный на границе.
type ReceiptUpload struct {
	Filename string
	Body     io.Reader
}

// WalletService - движок кошелька: пополнения, выводы и их подтверждение оператором.
type WalletService struct {
	ledger        LedgerRepository
	users         UserGetter
	notifier      EventNotifier
	receipts      ReceiptStorage
	walletAddress string
}

func NewWalletService(ledger LedgerRepository, users UserGetter, notifier EventNotifier, receipts ReceiptStorage, walletAddress string) *WalletService {
	return &WalletService{
		ledger:        ledger,
		users:         users,
		notifier:      notifier,
		receipts:      receipts,
		walletAddress: walletAddress,
	}
}

// GetWallet возвращает баланс и страницу истории (новые операции сверху).
func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID, page int) (*models.Wallet, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	page, limit, offset := pageBounds(page, models.TransactionsPageSize)
	transactions, total, err := s.ledger.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return &models.Wallet{
		Balance:      balance,
		Transactions: transactions,
		Page:         page,
		TotalPages:   models.TotalPages(total, models.TransactionsPageSize),
	}, nil
}

// RequestDeposit создаёт ожидающий депозит. Баланс не меняется до подтверждения.
func (s *WalletService) RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.DepositRequest, error) {
	if _, err := actor(ctx, s.users, userID); err != nil {
		return nil, err
	}
	amount, err := valueobject.NewPositiveAmount(amount, "сумма")
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.CreateDeposit(ctx, userID, amount)
	metrics.LedgerOperation("request_deposit", err)
	if err != nil {
		return nil, translate(err)
	}

	s.notifier.NotifyAdmin(models.EventDepositRequested, tx)
	return &models.DepositRequest{Transaction: tx, WalletAddress: s.walletAddress}, nil
}

// MarkDepositSent - владелец сообщает, что перевёл средства, и может приложить квитанцию.
func (s *WalletService) MarkDepositSent(ctx context.Context, userID, txID uuid.UUID, receipt *ReceiptUpload) (*models.Transaction, error) {
	if _, err := actor(ctx, s.users, userID); err != nil {
		return nil, err
	}

	var receiptPath *string
	if receipt != nil {
		path, _, err := s.receipts.Save(ctx, userID, receipt.Filename, receipt.Body)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось сохранить квитанцию")
		}
		receiptPath = &path
	}

	tx, err := s.ledger.MarkDepositSent(ctx, txID, userID, receiptPath)
	if err != nil {
		if receiptPath != nil {
			if delErr := s.receipts.Delete(ctx, *receiptPath); delErr != nil {
				logger.Log.WithError(delErr).Warn("не удалось удалить квитанцию")
			}
		}
		return nil, translate(err)
	}

	s.notifier.NotifyAdmin(models.EventDepositSent, tx)
	return tx, nil
}

// ConfirmDeposit зачисляет депозит. Вызывается только оператором.
func (s *WalletService) ConfirmDeposit(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return s.settle(ctx, "confirm_deposit", models.EventDepositConfirmed, txID, s.ledger.ConfirmDeposit)
}

// RejectDeposit отклоняет депозит без изменения баланса.
func (s *WalletService) RejectDeposit(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return s.settle(ctx, "reject_deposit", models.EventDepositRejected, txID, s.ledger.RejectDeposit)
}

// ConfirmWithdrawal подтверждает вывод. Баланс уже списан при запросе.
func (s *WalletService) ConfirmWithdrawal(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return s.settle(ctx, "confirm_withdrawal", models.EventWithdrawalConfirmed, txID, s.ledger.ConfirmWithdrawal)
}

// RejectWithdrawal отклоняет вывод и возвращает сумму на баланс.
func (s *WalletService) RejectWithdrawal(ctx context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return s.settle(ctx, "reject_withdrawal", models.EventWithdrawalRejected, txID, s.ledger.RejectWithdrawal)
}

func (s *WalletService) settle(
	ctx context.Context,
	op, event string,
	txID uuid.UUID,
	apply func(context.Context, uuid.UUID) (*models.Transaction, error),
) (*models.Transaction, error) {
	tx, err := apply(ctx, txID)
	metrics.LedgerOperation(op, err)
	if err != nil {
		return nil, translate(err)
	}

	logger.Op(op).WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"user_id":        tx.UserID,
		"amount":         tx.Amount.StringFixed(2),
		"status":         tx.Status,
	}).Info("транзакция проведена оператором")

	s.notifier.Notify(tx.UserID, event, tx)
	return tx, nil
}

// RequestWithdrawal сразу списывает сумму и создаёт ожидающий вывод на указанный адрес.
func (s *WalletService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, address string) (*models.Transaction, error) {
	if _, err := actor(ctx, s.users, userID); err != nil {
		return nil, err
	}
	amount, err := valueobject.NewPositiveAmount(amount, "сумма")
	if err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if err := validation.ValidateWalletAddress(address); err != nil {
		return nil, invalid(err)
	}

	tx, err := s.ledger.RequestWithdrawal(ctx, userID, amount, address)
	metrics.LedgerOperation("request_withdrawal", err)
	if err != nil {
		return nil, translate(err)
	}

	s.notifier.NotifyAdmin(models.EventWithdrawalRequested, tx)
	return tx, nil
}

// GetTransaction возвращает транзакцию владельцу.
func (s *WalletService) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.ledger.GetTransaction(ctx, txID)
	if err != nil {
		return nil, translate(err)
	}
	if tx.UserID != userID {
		return nil, apperror.ErrTransactionNotFound
	}
	return tx, nil
}

// Earnings возвращает итог заработка исполнителя.
func (s *WalletService) Earnings(ctx context.Context, userID uuid.UUID) (*models.EarningsSummary, error) {
	summary, err := s.ledger.EarningsSummary(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return summary, nil
}

// PlatformRevenue возвращает сумму комиссий, удержанных с завершённых заказов.
func (s *WalletService) PlatformRevenue(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.ledger.PlatformRevenueTotal(ctx)
	if err != nil {
		return decimal.Zero, translate(err)
	}
	return total, nil
}
