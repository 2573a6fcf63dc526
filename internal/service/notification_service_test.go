package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		n.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	return args.Get(0).([]models.Notification), args.Int(1), args.Error(2)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestNotificationService_SavePayload(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Return(nil)

	n, err := svc.Save(ctx, userID, models.EventJobMatched, map[string]string{"title": "Лендинг"})
	require.NoError(t, err)
	assert.Equal(t, userID, n.UserID)
	assert.NotEqual(t, uuid.Nil, n.ID)

	var payload struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(n.Payload, &payload))
	assert.Equal(t, models.EventJobMatched, payload.Event)
	assert.Equal(t, "Лендинг", payload.Data["title"])
}

func TestNotificationService_PersistUnmarshalable(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)

	err := svc.Persist(context.Background(), uuid.New(), "broken", make(chan int))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_List(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()
	size := models.NotificationsPerPage

	repo.On("List", ctx, userID, true, size, size).
		Return([]models.Notification{{ID: uuid.New(), UserID: userID}}, size+1, nil)

	page, err := svc.List(ctx, userID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	repo.On("List", ctx, userID, false, size, 0).Return([]models.Notification{}, 0, nil)
	page, err = svc.List(ctx, userID, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID, known, foreign := uuid.New(), uuid.New(), uuid.New()

	repo.On("MarkAsRead", ctx, known, userID).Return(nil)
	repo.On("MarkAsRead", ctx, foreign, userID).Return(repository.ErrNotificationNotFound)

	assert.NoError(t, svc.MarkAsRead(ctx, known, userID))
	assert.True(t, apperror.IsNotFound(svc.MarkAsRead(ctx, foreign, userID)))
}

func TestNotificationService_Counters(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("MarkAllAsRead", ctx, userID).Return(int64(4), nil)
	repo.On("CountUnread", ctx, userID).Return(0, nil)

	marked, err := svc.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), marked)

	unread, err := svc.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
