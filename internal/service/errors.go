package service

import (
	"errors"
	"fmt"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
)

var (
	errReportNotFound       = apperror.New(apperror.ErrCodeNotFound, "жалоба не найдена")
	errNotificationNotFound = apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
)

// translate переводит ошибки хранилища в типизированные ошибки приложения.
// Неизвестные ошибки возвращаются как есть и маскируются на уровне HTTP.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var funds *repository.InsufficientFundsError
	if errors.As(err, &funds) {
		return apperror.NewInsufficientFunds(valueobject.Shortfall(funds.Balance, funds.Required))
	}
	var state *repository.StateError
	if errors.As(err, &state) {
		return apperror.Wrap(err, apperror.ErrCodeInvalidState,
			fmt.Sprintf("операция недоступна: %s в статусе %q", state.Entity, state.Status))
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.ErrUserNotFound
	case errors.Is(err, repository.ErrJobNotFound):
		return apperror.ErrJobNotFound
	case errors.Is(err, repository.ErrApplicationNotFound):
		return apperror.ErrApplicationNotFound
	case errors.Is(err, repository.ErrTransactionNotFound):
		return apperror.ErrTransactionNotFound
	case errors.Is(err, repository.ErrSkillNotFound):
		return apperror.ErrSkillNotFound
	case errors.Is(err, repository.ErrReportNotFound):
		return errReportNotFound
	case errors.Is(err, repository.ErrNotificationNotFound):
		return errNotificationNotFound
	case errors.Is(err, repository.ErrInsufficientFunds):
		return apperror.New(apperror.ErrCodeInsufficientFunds, "недостаточно средств")
	case errors.Is(err, repository.ErrInvalidState):
		return apperror.Wrap(err, apperror.ErrCodeInvalidState, "операция недоступна в текущем статусе")
	case errors.Is(err, repository.ErrAlreadyApplied):
		return apperror.ErrAlreadyApplied
	case errors.Is(err, repository.ErrReviewExists):
		return apperror.ErrReviewExists
	case errors.Is(err, repository.ErrRoleAlreadySet):
		return apperror.ErrRoleAlreadySet
	case errors.Is(err, repository.ErrNotOwner):
		return apperror.ErrForbidden
	}
	return err
}
