package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
)

// UserGetter - чтение пользователя для проверок доступа.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

var (
	errClientOnly     = apperror.New(apperror.ErrCodeForbidden, "действие доступно только заказчику")
	errFreelancerOnly = apperror.New(apperror.ErrCodeForbidden, "действие доступно только исполнителю")
	errRoleNotChosen  = apperror.New(apperror.ErrCodeForbidden, "сначала выберите роль")
)

// actor загружает инициатора операции. Заблокированный пользователь получает Forbidden,
// а если передана роль, она должна совпадать.
func actor(ctx context.Context, users UserGetter, userID uuid.UUID, role ...valueobject.Role) (*models.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	if user.IsBanned() {
		return nil, apperror.ErrUserBanned
	}
	if len(role) == 0 {
		return user, nil
	}
	if user.Role == valueobject.RoleUnset {
		return nil, errRoleNotChosen
	}
	if !user.HasRole(role[0]) {
		if role[0] == valueobject.RoleClient {
			return nil, errClientOnly
		}
		return nil, errFreelancerOnly
	}
	return user, nil
}

func invalid(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}

// pageBounds нормализует номер страницы и возвращает limit/offset.
func pageBounds(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	return page, size, (page - 1) * size
}

func newPage[T any](items []T, page, size, total int) *models.Page[T] {
	return &models.Page[T]{
		Items:      items,
		Page:       page,
		TotalPages: models.TotalPages(total, size),
		Total:      total,
	}
}
