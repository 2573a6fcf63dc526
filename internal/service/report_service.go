package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, limit, offset int) ([]models.Report, int, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
}

type ReportService struct {
	repo     ReportRepository
	users    UserGetter
	notifier EventNotifier
}

func NewReportService(repo ReportRepository, users UserGetter, notifier EventNotifier) *ReportService {
	return &ReportService{repo: repo, users: users, notifier: notifier}
}

// Submit сохраняет жалобу на пользователя и передаёт её администратору.
func (s *ReportService) Submit(ctx context.Context, reporterID, reportedID uuid.UUID, reason string) (*models.Report, error) {
	if _, err := actor(ctx, s.users, reporterID); err != nil {
		return nil, err
	}
	if reporterID == reportedID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя пожаловаться на себя")
	}
	if err := validation.ValidateReason(reason); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.users.GetByID(ctx, reportedID); err != nil {
		return nil, translate(err)
	}

	report := &models.Report{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     strings.TrimSpace(reason),
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, translate(err)
	}

	s.notifier.NotifyAdmin(models.EventUserReported, report)
	return report, nil
}

// List возвращает жалобы для администратора, необработанные первыми.
func (s *ReportService) List(ctx context.Context, page int) (*models.Page[models.Report], error) {
	page, limit, offset := pageBounds(page, models.ReportsPageSize)
	reports, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return newPage(reports, page, limit, total), nil
}

// MarkReviewed отмечает жалобу рассмотренной.
func (s *ReportService) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	return translate(s.repo.MarkReviewed(ctx, id))
}
