package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, revieweeID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetAverageRating(ctx context.Context, userID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockJobReader struct {
	mock.Mock
}

func (m *mockJobReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

type mockUserGetter struct {
	mock.Mock
}

func (m *mockUserGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func activeUser(id uuid.UUID, role valueobject.Role) *models.User {
	return &models.User{ID: id, Role: role, Status: valueobject.UserStatusActive}
}

func completedJob(clientID, freelancerID uuid.UUID) *models.Job {
	return &models.Job{
		ID:                uuid.New(),
		ClientID:          clientID,
		Title:             "Лендинг",
		Status:            valueobject.JobStatusCompleted,
		HiredFreelancerID: &freelancerID,
	}
}

func newReviewFixture() (*ReviewService, *mockReviewRepo, *mockJobReader, *mockUserGetter, *recordingNotifier) {
	repo := new(mockReviewRepo)
	jobs := new(mockJobReader)
	users := new(mockUserGetter)
	notifier := newRecordingNotifier()
	return NewReviewService(repo, jobs, users, notifier), repo, jobs, users, notifier
}

func TestReviewService_SubmitReview_Success(t *testing.T) {
	svc, repo, jobs, users, _ := newReviewFixture()
	ctx := context.Background()

	clientID, freelancerID := uuid.New(), uuid.New()
	job := completedJob(clientID, freelancerID)

	users.On("GetByID", ctx, clientID).Return(activeUser(clientID, valueobject.RoleClient), nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	comment := "  Отличная работа!  "
	review, err := svc.SubmitReview(ctx, clientID, job.ID, freelancerID, 5, &comment)

	require.NoError(t, err)
	assert.Equal(t, freelancerID, review.RevieweeID)
	assert.Equal(t, 5, review.Rating)
	require.NotNil(t, review.Comment)
	assert.Equal(t, "Отличная работа!", *review.Comment)
	repo.AssertExpectations(t)
}

func TestReviewService_SubmitReview_InvalidRating(t *testing.T) {
	svc, repo, _, users, _ := newReviewFixture()
	ctx := context.Background()
	reviewerID := uuid.New()
	users.On("GetByID", ctx, reviewerID).Return(activeUser(reviewerID, valueobject.RoleClient), nil)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.SubmitReview(ctx, reviewerID, uuid.New(), uuid.New(), rating, nil)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "от 1 до 5")
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_NotParticipants(t *testing.T) {
	svc, repo, jobs, users, _ := newReviewFixture()
	ctx := context.Background()

	clientID, freelancerID, stranger := uuid.New(), uuid.New(), uuid.New()
	job := completedJob(clientID, freelancerID)

	users.On("GetByID", ctx, stranger).Return(activeUser(stranger, valueobject.RoleFreelancer), nil)
	users.On("GetByID", ctx, clientID).Return(activeUser(clientID, valueobject.RoleClient), nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.SubmitReview(ctx, stranger, job.ID, clientID, 4, nil)
	assert.True(t, apperror.IsForbidden(err))

	// клиент не может оценить сам себя
	_, err = svc.SubmitReview(ctx, clientID, job.ID, clientID, 4, nil)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_JobNotCompleted(t *testing.T) {
	svc, _, jobs, users, _ := newReviewFixture()
	ctx := context.Background()

	clientID, freelancerID := uuid.New(), uuid.New()
	job := completedJob(clientID, freelancerID)
	job.Status = valueobject.JobStatusPendingCompletion

	users.On("GetByID", ctx, freelancerID).Return(activeUser(freelancerID, valueobject.RoleFreelancer), nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.SubmitReview(ctx, freelancerID, job.ID, clientID, 5, nil)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReviewService_SubmitReview_Duplicate(t *testing.T) {
	svc, repo, jobs, users, _ := newReviewFixture()
	ctx := context.Background()

	clientID, freelancerID := uuid.New(), uuid.New()
	job := completedJob(clientID, freelancerID)

	users.On("GetByID", ctx, freelancerID).Return(activeUser(freelancerID, valueobject.RoleFreelancer), nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(repository.ErrReviewExists)

	_, err := svc.SubmitReview(ctx, freelancerID, job.ID, clientID, 5, nil)
	assert.ErrorIs(t, err, apperror.ErrReviewExists)
}

func TestReviewService_PromptReview(t *testing.T) {
	svc, _, _, _, notifier := newReviewFixture()
	clientID, freelancerID := uuid.New(), uuid.New()
	job := completedJob(clientID, freelancerID)

	svc.PromptReview(job, clientID, freelancerID)

	events := notifier.events(clientID)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventReviewRequested, events[0].event)
	prompt, ok := events[0].data.(ReviewPrompt)
	require.True(t, ok)
	assert.Equal(t, freelancerID, prompt.RevieweeID)
	assert.Equal(t, MinRating, prompt.MinRating)
	assert.Equal(t, MaxRating, prompt.MaxRating)
}

func TestReviewService_BothDirectionsAfterCompletion(t *testing.T) {
	ctx := context.Background()
	mp := newMarketplace()
	client := mp.store.addUser(valueobject.RoleClient, "100")
	freelancer := mp.store.addUser(valueobject.RoleFreelancer, "0")

	job, _, err := mp.jobs.CreateJob(ctx, client, landingJob("50"))
	require.NoError(t, err)
	app, err := mp.applications.Submit(ctx, freelancer, job.ID, proposalText, money("50"))
	require.NoError(t, err)
	_, err = mp.jobs.Hire(ctx, client, app.ID)
	require.NoError(t, err)
	_, err = mp.jobs.MarkWorkComplete(ctx, freelancer, job.ID)
	require.NoError(t, err)
	_, err = mp.jobs.ConfirmCompletion(ctx, client, job.ID)
	require.NoError(t, err)

	_, err = mp.reviews.SubmitReview(ctx, client, job.ID, freelancer, 5, nil)
	require.NoError(t, err)
	_, err = mp.reviews.SubmitReview(ctx, freelancer, job.ID, client, 4, nil)
	require.NoError(t, err)

	_, err = mp.reviews.SubmitReview(ctx, client, job.ID, freelancer, 3, nil)
	assert.ErrorIs(t, err, apperror.ErrReviewExists)

	reviews, err := mp.reviews.ListJobReviews(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
