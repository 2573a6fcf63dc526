package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/goroutine"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Reject(ctx context.Context, id, clientID uuid.UUID) (*models.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]models.Application, int, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Application, int, error)
}

// ApplicationService - движок откликов исполнителей.
type ApplicationService struct {
	apps     ApplicationRepository
	jobs     JobReader
	users    UserGetter
	notifier EventNotifier
	spawn    goroutine.Spawner
}

func NewApplicationService(apps ApplicationRepository, jobs JobReader, users UserGetter, notifier EventNotifier, spawn goroutine.Spawner) *ApplicationService {
	if spawn == nil {
		spawn = goroutine.SafeGo
	}
	return &ApplicationService{apps: apps, jobs: jobs, users: users, notifier: notifier, spawn: spawn}
}

// Submit создаёт отклик на открытый заказ. Второй отклик той же пары даёт AlreadyApplied.
func (s *ApplicationService) Submit(ctx context.Context, freelancerID, jobID uuid.UUID, proposal string, bid decimal.Decimal) (*models.Application, error) {
	if _, err := actor(ctx, s.users, freelancerID, valueobject.RoleFreelancer); err != nil {
		return nil, err
	}
	if err := validation.ValidateProposal(proposal); err != nil {
		return nil, invalid(err)
	}
	bid, err := valueobject.NewPositiveAmount(bid, "ставка")
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, translate(err)
	}
	if job.IsClient(freelancerID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя откликнуться на свой заказ")
	}

	app := &models.Application{
		JobID:        jobID,
		FreelancerID: freelancerID,
		Proposal:     strings.TrimSpace(proposal),
		Bid:          bid,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, translate(err)
	}

	s.spawn(func() {
		s.notifier.Notify(job.ClientID, models.EventApplicationReceived, app)
	})
	return app, nil
}

// Reject - клиент отклоняет один отклик.
func (s *ApplicationService) Reject(ctx context.Context, clientID, applicationID uuid.UUID) (*models.Application, error) {
	if _, err := actor(ctx, s.users, clientID, valueobject.RoleClient); err != nil {
		return nil, err
	}

	app, err := s.apps.Reject(ctx, applicationID, clientID)
	if err != nil {
		return nil, translate(err)
	}

	s.spawn(func() {
		s.notifier.Notify(app.FreelancerID, models.EventApplicationRejected, app)
	})
	return app, nil
}

// ListForJob возвращает отклики на заказ его автору в порядке подачи.
func (s *ApplicationService) ListForJob(ctx context.Context, clientID, jobID uuid.UUID, page int) (*models.Page[models.Application], error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, translate(err)
	}
	if !job.IsClient(clientID) {
		return nil, apperror.ErrForbidden
	}

	page, limit, offset := pageBounds(page, models.ApplicationsPageSize)
	apps, total, err := s.apps.ListByJob(ctx, jobID, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return newPage(apps, page, limit, total), nil
}

// ListMine возвращает отклики исполнителя, новые сверху.
func (s *ApplicationService) ListMine(ctx context.Context, freelancerID uuid.UUID, page int) (*models.Page[models.Application], error) {
	page, limit, offset := pageBounds(page, models.ApplicationsPageSize)
	apps, total, err := s.apps.ListByFreelancer(ctx, freelancerID, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return newPage(apps, page, limit, total), nil
}

// GetApplication возвращает отклик автору отклика или автору заказа.
func (s *ApplicationService) GetApplication(ctx context.Context, userID, applicationID uuid.UUID) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, translate(err)
	}
	if app.FreelancerID == userID {
		return app, nil
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, translate(err)
	}
	if !job.IsClient(userID) {
		return nil, apperror.ErrForbidden
	}
	return app, nil
}
