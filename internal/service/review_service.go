package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

const (
	MinRating = 1
	MaxRating = 5

	reviewsPageSize = 20
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error)
	GetAverageRating(ctx context.Context, userID uuid.UUID) (float64, int, error)
}

// JobReader - чтение заказа для проверок участия.
type JobReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

var (
	errInvalidRating   = apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	errNotParticipants = apperror.New(apperror.ErrCodeForbidden, "отзыв могут оставить только заказчик и исполнитель заказа")
	errJobNotCompleted = apperror.New(apperror.ErrCodeInvalidState, "отзыв можно оставить только после завершения заказа")
)

// ReviewPrompt - запрос оценки, отправляемый участнику завершённого заказа.
type ReviewPrompt struct {
	JobID      uuid.UUID `json:"job_id"`
	JobTitle   string    `json:"job_title"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	MinRating  int       `json:"min_rating"`
	MaxRating  int       `json:"max_rating"`
}

// ReviewService - взаимные оценки после завершения заказа.
type ReviewService struct {
	repo     ReviewRepository
	jobs     JobReader
	users    UserGetter
	notifier EventNotifier
}

func NewReviewService(repo ReviewRepository, jobs JobReader, users UserGetter, notifier EventNotifier) *ReviewService {
	return &ReviewService{repo: repo, jobs: jobs, users: users, notifier: notifier}
}

// PromptReview просит reviewer оценить reviewee в рамках заказа.
func (s *ReviewService) PromptReview(job *models.Job, reviewerID, revieweeID uuid.UUID) {
	s.notifier.Notify(reviewerID, models.EventReviewRequested, ReviewPrompt{
		JobID:      job.ID,
		JobTitle:   job.Title,
		RevieweeID: revieweeID,
		MinRating:  MinRating,
		MaxRating:  MaxRating,
	})
}

// SubmitReview сохраняет оценку. Пара должна быть заказчиком и нанятым исполнителем
// завершённого заказа, повторная оценка в том же направлении отклоняется.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewerID, jobID, revieweeID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if _, err := actor(ctx, s.users, reviewerID); err != nil {
		return nil, err
	}
	if rating < MinRating || rating > MaxRating {
		return nil, errInvalidRating
	}
	if err := validation.ValidateComment(comment); err != nil {
		return nil, invalid(err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, translate(err)
	}
	if !isReviewPair(job, reviewerID, revieweeID) {
		return nil, errNotParticipants
	}
	if job.Status != valueobject.JobStatusCompleted {
		return nil, errJobNotCompleted
	}

	review := &models.Review{
		JobID:      jobID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		Comment:    validation.Optional(comment),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, translate(err)
	}
	return review, nil
}

func isReviewPair(job *models.Job, reviewerID, revieweeID uuid.UUID) bool {
	if job.HiredFreelancerID == nil {
		return false
	}
	freelancerID := *job.HiredFreelancerID
	return (reviewerID == job.ClientID && revieweeID == freelancerID) ||
		(reviewerID == freelancerID && revieweeID == job.ClientID)
}

// ListUserReviews возвращает отзывы о пользователе.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID uuid.UUID, page int) ([]models.Review, error) {
	_, limit, offset := pageBounds(page, reviewsPageSize)
	reviews, err := s.repo.ListByReviewee(ctx, userID, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}

// ListJobReviews возвращает отзывы по заказу.
func (s *ReviewService) ListJobReviews(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	reviews, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}
