package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

// UserRepository - профиль, роль и статус пользователя.
type UserRepository interface {
	UserGetter
	SetRole(ctx context.Context, userID uuid.UUID, role valueobject.Role) (*models.User, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status valueobject.UserStatus, note *string) (*models.User, error)
	UpdateBio(ctx context.Context, userID uuid.UUID, bio *string) error
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error)
}

// RatingReader - агрегаты отзывов.
type RatingReader interface {
	GetAverageRating(ctx context.Context, userID uuid.UUID) (float64, int, error)
}

// CompletedJobsCounter считает завершённые заказы исполнителя.
type CompletedJobsCounter interface {
	CountCompletedByFreelancer(ctx context.Context, freelancerID uuid.UUID) (int, error)
}

// UserService - роль, профиль и административные действия над пользователями.
type UserService struct {
	users    UserRepository
	ratings  RatingReader
	jobs     CompletedJobsCounter
	notifier EventNotifier
}

func NewUserService(users UserRepository, ratings RatingReader, jobs CompletedJobsCounter, notifier EventNotifier) *UserService {
	return &UserService{users: users, ratings: ratings, jobs: jobs, notifier: notifier}
}

// Me возвращает текущего пользователя с навыками.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// SelectRole задаёт роль один раз при первом взаимодействии.
func (s *UserService) SelectRole(ctx context.Context, userID uuid.UUID, role string) (*models.User, error) {
	if _, err := actor(ctx, s.users, userID); err != nil {
		return nil, err
	}
	r, err := valueobject.NewRole(role)
	if err != nil {
		return nil, err
	}
	user, err := s.users.SetRole(ctx, userID, r)
	if err != nil {
		return nil, translate(err)
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "role": r}).Info("роль выбрана")
	return user, nil
}

// UpdateBio обновляет описание профиля. Пустая строка очищает его.
func (s *UserService) UpdateBio(ctx context.Context, userID uuid.UUID, bio *string) (*models.User, error) {
	if _, err := actor(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if err := validation.ValidateBio(bio); err != nil {
		return nil, invalid(err)
	}
	if err := s.users.UpdateBio(ctx, userID, validation.Optional(bio)); err != nil {
		return nil, translate(err)
	}
	return s.Me(ctx, userID)
}

// Profile возвращает публичную статистику исполнителя.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	avg, count, err := s.ratings.GetAverageRating(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	completed, err := s.jobs.CountCompletedByFreelancer(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return &models.FreelancerProfile{
		User:          user,
		AverageRating: avg,
		ReviewCount:   count,
		CompletedJobs: completed,
	}, nil
}

// Ban блокирует пользователя и сохраняет причину в заметках администратора.
func (s *UserService) Ban(ctx context.Context, userID uuid.UUID, reason string) (*models.User, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, invalid(err)
	}
	note := strings.TrimSpace(reason)
	return s.setStatus(ctx, userID, valueobject.UserStatusBanned, &note, models.EventUserBanned)
}

// Unban снимает блокировку. Причина необязательна.
func (s *UserService) Unban(ctx context.Context, userID uuid.UUID, reason *string) (*models.User, error) {
	return s.setStatus(ctx, userID, valueobject.UserStatusActive, validation.Optional(reason), models.EventUserUnbanned)
}

func (s *UserService) setStatus(ctx context.Context, userID uuid.UUID, status valueobject.UserStatus, note *string, event string) (*models.User, error) {
	user, err := s.users.SetStatus(ctx, userID, status, note)
	if err != nil {
		return nil, translate(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
	}).Info("статус пользователя изменён")

	payload := map[string]any{"status": status}
	if note != nil {
		payload["reason"] = *note
	}
	s.notifier.Notify(userID, event, payload)
	return user, nil
}

// ListUsers - список пользователей для администратора.
func (s *UserService) ListUsers(ctx context.Context, page int) (*models.Page[models.User], error) {
	page, limit, offset := pageBounds(page, models.UsersPageSize)
	users, total, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return newPage(users, page, limit, total), nil
}
