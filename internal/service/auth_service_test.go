package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
)

// mockIdentityRepository реализует IdentityRepository для тестов.
type mockIdentityRepository struct {
	mu         sync.Mutex
	byExternal map[string]*models.User
	byID       map[uuid.UUID]*models.User
}

func newMockIdentityRepository() *mockIdentityRepository {
	return &mockIdentityRepository{
		byExternal: make(map[string]*models.User),
		byID:       make(map[uuid.UUID]*models.User),
	}
}

func (m *mockIdentityRepository) GetOrCreateByExternalID(_ context.Context, externalID string, username *string, displayName string) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byExternal[externalID]; ok {
		return user, false, nil
	}
	now := time.Now()
	user := &models.User{
		ID:          uuid.New(),
		ExternalID:  externalID,
		Username:    username,
		DisplayName: displayName,
		Status:      valueobject.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.byExternal[externalID] = user
	m.byID[user.ID] = user
	return user, true, nil
}

func (m *mockIdentityRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func newTestAuthService(t *testing.T) (*AuthService, *mockIdentityRepository) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newMockIdentityRepository()
	svc := NewAuthService(repo, newTestTokenManager(), AdminCredentials{Username: "operator", PasswordHash: string(hash)})
	return svc, repo
}

func TestAuthService_ResolveContact_CreatesOnce(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	username := "kofe_master"

	first, err := svc.ResolveContact(ctx, ContactInput{ExternalID: " 100500 ", Username: &username, DisplayName: "Анна"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "100500", first.User.ExternalID)
	assert.Equal(t, valueobject.RoleUnset, first.User.Role)
	assert.NotEmpty(t, first.TokenPair.AccessToken)

	second, err := svc.ResolveContact(ctx, ContactInput{ExternalID: "100500", DisplayName: "Анна"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestAuthService_ResolveContact_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.ResolveContact(context.Background(), ContactInput{ExternalID: "   "})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_ResolveContact_Banned(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.ResolveContact(ctx, ContactInput{ExternalID: "42"})
	require.NoError(t, err)
	repo.byID[res.User.ID].Status = valueobject.UserStatusBanned

	_, err = svc.ResolveContact(ctx, ContactInput{ExternalID: "42"})
	assert.ErrorIs(t, err, apperror.ErrUserBanned)

	_, err = svc.Refresh(ctx, res.TokenPair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUserBanned)
}

func TestAuthService_RefreshUsesCurrentRole(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.ResolveContact(ctx, ContactInput{ExternalID: "77"})
	require.NoError(t, err)
	repo.byID[res.User.ID].Role = valueobject.RoleFreelancer

	pair, err := svc.Refresh(ctx, res.TokenPair.RefreshToken)
	require.NoError(t, err)

	userID, role, err := newTestTokenManager().ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)
	assert.Equal(t, string(valueobject.RoleFreelancer), role)
}

func TestAuthService_RefreshRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestAuthService_AdminLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.AdminLogin("operator", "s3cret-pass")
	require.NoError(t, err)

	subject, role, err := newTestTokenManager().ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, AdminID("operator"), subject)
	assert.Equal(t, RoleAdmin, role)

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	_, role, err = newTestTokenManager().ParseAccess(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = svc.AdminLogin("operator", "wrong")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	_, err = svc.AdminLogin("someone", "s3cret-pass")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_AdminLoginDisabled(t *testing.T) {
	svc := NewAuthService(newMockIdentityRepository(), newTestTokenManager(), AdminCredentials{})

	_, err := svc.AdminLogin("", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	pair, err := newTestTokenManager().GeneratePair(uuid.New(), "client")
	require.NoError(t, err)

	other := NewTokenManager("other", "other", time.Minute, time.Minute)
	_, _, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
	_, err = other.ParseRefresh(pair.RefreshToken)
	assert.Error(t, err)

	// access токен не принимается как refresh
	_, err = newTestTokenManager().ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestHashAdminPassword(t *testing.T) {
	hash, err := HashAdminPassword("Operator2024pass")
	require.NoError(t, err)

	svc := NewAuthService(newMockIdentityRepository(), newTestTokenManager(), AdminCredentials{Username: "operator", PasswordHash: hash})
	_, err = svc.AdminLogin("operator", "Operator2024pass")
	assert.NoError(t, err)

	_, err = HashAdminPassword("short")
	assert.True(t, apperror.IsValidation(err))
}

func TestTokenManager_Expiry(t *testing.T) {
	tm := newTestTokenManager()
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }

	pair, err := tm.GeneratePair(uuid.New(), "client")
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(14 * time.Minute) }
	_, _, err = tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, _, err = tm.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	_, err = tm.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}
