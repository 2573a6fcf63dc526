package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidState - сущность не в том статусе, который требует операция.
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyApplied    = errors.New("already applied")
	ErrReviewExists      = errors.New("review already exists")
	ErrRoleAlreadySet    = errors.New("role already set")
	ErrNotOwner          = errors.New("not owner")
)

// InsufficientFundsError несёт баланс и требуемую сумму на момент проверки под блокировкой.
type InsufficientFundsError struct {
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, required %s", e.Balance.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// StateError описывает фактический статус, из-за которого операция отклонена.
type StateError struct {
	Entity string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state: %s is %s", e.Entity, e.Status)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalidState[S ~string](entity string, status S) error {
	return &StateError{Entity: entity, Status: string(status)}
}

// notFoundOr переводит sql.ErrNoRows в доменную ошибку, остальное оборачивает. nil остаётся nil.
func notFoundOr(err, notFound error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowsAffected возвращает число затронутых строк, не теряя ошибку драйвера.
func rowsAffected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected %w", op, err)
	}
	return n, nil
}
