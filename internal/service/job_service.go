package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/goroutine"
	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/metrics"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

// JobRepository - хранилище заказов. Денежные переходы выполняются атомарно внутри хранилища.
type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	CreateFunded(ctx context.Context, job *models.Job, skillIDs []uuid.UUID) (*models.Transaction, error)
	CreatePendingDeposit(ctx context.Context, job *models.Job, skillIDs []uuid.UUID) error
	Fund(ctx context.Context, jobID, clientID uuid.UUID) (*models.Job, *models.Transaction, error)
	Hire(ctx context.Context, applicationID, clientID uuid.UUID) (*models.HireResult, error)
	MarkWorkComplete(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Job, error)
	ConfirmCompletion(ctx context.Context, jobID, clientID uuid.UUID, commissionRate decimal.Decimal) (*models.CompletionResult, error)
	Cancel(ctx context.Context, jobID, clientID uuid.UUID) (*models.CancelResult, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Job, int, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Job, int, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Job, int, error)
}

// SkillLookup разрешает идентификаторы навыков.
type SkillLookup interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Skill, error)
}

// Dispatcher рассылает открытый заказ подходящим исполнителям.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *models.Job) int
}

// ReviewPrompter запрашивает оценку после завершения заказа.
type ReviewPrompter interface {
	PromptReview(job *models.Job, reviewerID, revieweeID uuid.UUID)
}

// CreateJobInput - команда публикации заказа.
type CreateJobInput struct {
	Title       string
	Description string
	Budget      decimal.Decimal
	SkillIDs    []uuid.UUID
}

// JobService - движок жизненного цикла заказа.
type JobService struct {
	jobs           JobRepository
	users          UserGetter
	skills         SkillLookup
	dispatcher     Dispatcher
	reviews        ReviewPrompter
	notifier       EventNotifier
	commissionRate decimal.Decimal
	spawn          goroutine.Spawner
}

func NewJobService(
	jobs JobRepository,
	users UserGetter,
	skills SkillLookup,
	dispatcher Dispatcher,
	reviews ReviewPrompter,
	notifier EventNotifier,
	commissionRate decimal.Decimal,
	spawn goroutine.Spawner,
) *JobService {
	if spawn == nil {
		spawn = goroutine.SafeGo
	}
	return &JobService{
		jobs:           jobs,
		users:          users,
		skills:         skills,
		dispatcher:     dispatcher,
		reviews:        reviews,
		notifier:       notifier,
		commissionRate: commissionRate,
		spawn:          spawn,
	}
}

// CreateJob публикует заказ с удержанием бюджета. При нехватке средств заказ не создаётся,
// а ошибка содержит недостающую сумму.
func (s *JobService) CreateJob(ctx context.Context, clientID uuid.UUID, input CreateJobInput) (*models.Job, *models.Transaction, error) {
	job, skillIDs, err := s.prepare(ctx, clientID, input)
	if err != nil {
		return nil, nil, err
	}

	payment, err := s.jobs.CreateFunded(ctx, job, skillIDs)
	metrics.LedgerOperation("escrow_payment", err)
	if err != nil {
		return nil, nil, translate(err)
	}

	s.opened(ctx, job)
	return job, payment, nil
}

// CreateDraft сохраняет заказ в статусе pending_deposit без списания.
func (s *JobService) CreateDraft(ctx context.Context, clientID uuid.UUID, input CreateJobInput) (*models.Job, error) {
	job, skillIDs, err := s.prepare(ctx, clientID, input)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.CreatePendingDeposit(ctx, job, skillIDs); err != nil {
		return nil, translate(err)
	}
	metrics.JobTransition(string(job.Status))
	return job, nil
}

// FundJob удерживает бюджет черновика и открывает его.
func (s *JobService) FundJob(ctx context.Context, clientID, jobID uuid.UUID) (*models.Job, *models.Transaction, error) {
	if _, err := actor(ctx, s.users, clientID, valueobject.RoleClient); err != nil {
		return nil, nil, err
	}

	job, payment, err := s.jobs.Fund(ctx, jobID, clientID)
	metrics.LedgerOperation("escrow_payment", err)
	if err != nil {
		return nil, nil, translate(err)
	}

	s.opened(ctx, job)
	return job, payment, nil
}

func (s *JobService) prepare(ctx context.Context, clientID uuid.UUID, input CreateJobInput) (*models.Job, []uuid.UUID, error) {
	if _, err := actor(ctx, s.users, clientID, valueobject.RoleClient); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateJobTitle(input.Title); err != nil {
		return nil, nil, invalid(err)
	}
	if err := validation.ValidateJobDescription(input.Description); err != nil {
		return nil, nil, invalid(err)
	}
	budget, err := valueobject.NewPositiveAmount(input.Budget, "бюджет")
	if err != nil {
		return nil, nil, err
	}

	skillIDs := uniqueIDs(input.SkillIDs)
	skills, err := s.skills.GetByIDs(ctx, skillIDs)
	if err != nil {
		return nil, nil, translate(err)
	}
	if len(skills) != len(skillIDs) {
		return nil, nil, apperror.ErrSkillNotFound
	}

	return &models.Job{
		ClientID:       clientID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Budget:         budget,
		RequiredSkills: skills,
	}, skillIDs, nil
}

// opened фиксирует открытие заказа и запускает рассылку после фиксации транзакции.
func (s *JobService) opened(ctx context.Context, job *models.Job) {
	metrics.JobTransition(string(valueobject.JobStatusOpen))
	logger.Op("job_opened").WithFields(logrus.Fields{
		"job_id":    job.ID,
		"client_id": job.ClientID,
		"budget":    job.Budget.StringFixed(2),
	}).Info("заказ опубликован")

	dispatchCtx := context.WithoutCancel(ctx)
	s.spawn(func() {
		s.dispatcher.Dispatch(dispatchCtx, job)
	})
}

// Hire принимает отклик. Из параллельных наймов на один заказ выигрывает один,
// остальные получают InvalidState.
func (s *JobService) Hire(ctx context.Context, clientID, applicationID uuid.UUID) (*models.HireResult, error) {
	if _, err := actor(ctx, s.users, clientID, valueobject.RoleClient); err != nil {
		return nil, err
	}

	result, err := s.jobs.Hire(ctx, applicationID, clientID)
	if err != nil {
		return nil, translate(err)
	}

	metrics.JobTransition(string(result.Job.Status))
	logger.Op("hire").WithFields(logrus.Fields{
		"job_id":        result.Job.ID,
		"freelancer_id": result.Accepted.FreelancerID,
		"rejected":      len(result.Rejected),
	}).Info("исполнитель нанят")

	s.spawn(func() {
		s.notifier.Notify(result.Accepted.FreelancerID, models.EventApplicationAccepted, result.Accepted)
		for i := range result.Rejected {
			s.notifier.Notify(result.Rejected[i].FreelancerID, models.EventApplicationRejected, result.Rejected[i])
		}
	})
	return result, nil
}

// MarkWorkComplete - нанятый исполнитель сдаёт работу.
func (s *JobService) MarkWorkComplete(ctx context.Context, freelancerID, jobID uuid.UUID) (*models.Job, error) {
	if _, err := actor(ctx, s.users, freelancerID, valueobject.RoleFreelancer); err != nil {
		return nil, err
	}

	job, err := s.jobs.MarkWorkComplete(ctx, jobID, freelancerID)
	if err != nil {
		return nil, translate(err)
	}

	metrics.JobTransition(string(job.Status))
	s.spawn(func() {
		s.notifier.Notify(job.ClientID, models.EventWorkSubmitted, job)
	})
	return job, nil
}

// ConfirmCompletion - клиент принимает работу. Исполнитель получает бюджет за вычетом
// комиссии, обе стороны получают запрос на отзыв.
func (s *JobService) ConfirmCompletion(ctx context.Context, clientID, jobID uuid.UUID) (*models.CompletionResult, error) {
	if _, err := actor(ctx, s.users, clientID, valueobject.RoleClient); err != nil {
		return nil, err
	}

	result, err := s.jobs.ConfirmCompletion(ctx, jobID, clientID, s.commissionRate)
	metrics.LedgerOperation("payout", err)
	if err != nil {
		return nil, translate(err)
	}

	job := result.Job
	freelancerID := *job.HiredFreelancerID
	metrics.JobTransition(string(job.Status))
	entry := logger.Op("confirm_completion").WithFields(logrus.Fields{
		"job_id":        job.ID,
		"freelancer_id": freelancerID,
		"commission":    result.Commission.StringFixed(2),
	})
	if result.Earning != nil {
		entry = entry.WithField("earning", result.Earning.Amount.StringFixed(2))
	}
	entry.Info("заказ завершён")

	s.spawn(func() {
		s.notifier.Notify(freelancerID, models.EventJobCompleted, result)
		s.reviews.PromptReview(job, job.ClientID, freelancerID)
		s.reviews.PromptReview(job, freelancerID, job.ClientID)
	})
	return result, nil
}

// CancelJob отменяет заказ до найма. Открытый заказ возвращает бюджет клиенту.
func (s *JobService) CancelJob(ctx context.Context, clientID, jobID uuid.UUID) (*models.CancelResult, error) {
	if _, err := actor(ctx, s.users, clientID, valueobject.RoleClient); err != nil {
		return nil, err
	}

	result, err := s.jobs.Cancel(ctx, jobID, clientID)
	if err != nil {
		return nil, translate(err)
	}
	if result.Refund != nil {
		metrics.LedgerOperation("refund", nil)
	}

	metrics.JobTransition(string(result.Job.Status))
	logger.Op("cancel_job").WithFields(logrus.Fields{
		"job_id":   result.Job.ID,
		"refunded": result.Refund != nil,
	}).Info("заказ отменён")

	s.spawn(func() {
		for i := range result.Rejected {
			s.notifier.Notify(result.Rejected[i].FreelancerID, models.EventJobCancelled, result.Rejected[i])
		}
	})
	return result, nil
}

// GetJob возвращает заказ с навыками.
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, translate(err)
	}
	return job, nil
}

// ListOpen - лента открытых заказов, новые сверху.
func (s *JobService) ListOpen(ctx context.Context, page int) (*models.Page[models.Job], error) {
	page, limit, offset := pageBounds(page, models.JobsPageSize)
	jobs, total, err := s.jobs.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return newPage(jobs, page, limit, total), nil
}

// ListMine возвращает заказы клиента или заказы, на которые нанят исполнитель.
func (s *JobService) ListMine(ctx context.Context, userID uuid.UUID, page int) (*models.Page[models.Job], error) {
	user, err := actor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	page, limit, offset := pageBounds(page, models.JobsPageSize)

	var (
		jobs  []models.Job
		total int
	)
	switch user.Role {
	case valueobject.RoleClient:
		jobs, total, err = s.jobs.ListByClient(ctx, userID, limit, offset)
	case valueobject.RoleFreelancer:
		jobs, total, err = s.jobs.ListByFreelancer(ctx, userID, limit, offset)
	default:
		return nil, errRoleNotChosen
	}
	if err != nil {
		return nil, translate(err)
	}
	return newPage(jobs, page, limit, total), nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
