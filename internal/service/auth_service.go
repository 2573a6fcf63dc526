package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

// IdentityRepository - привязка внешнего контакта к пользователю.
type IdentityRepository interface {
	UserGetter
	GetOrCreateByExternalID(ctx context.Context, externalID string, username *string, displayName string) (*models.User, bool, error)
}

// AdminCredentials - учётные данные консоли администратора.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// ContactInput - данные контакта от доверенного фронтенда.
type ContactInput struct {
	ExternalID  string
	Username    *string
	DisplayName string
}

// AuthResult возвращает итог привязки контакта.
type AuthResult struct {
	User      *models.User `json:"user"`
	Created   bool         `json:"created"`
	TokenPair *TokenPair   `json:"tokens"`
}

// AuthService выпускает токены пользователям фронтенда и администратору.
type AuthService struct {
	repo         IdentityRepository
	tokenManager *TokenManager
	admin        AdminCredentials
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo IdentityRepository, tokenManager *TokenManager, admin AdminCredentials) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
		admin:        admin,
	}
}

// ResolveContact находит пользователя по внешнему идентификатору или создаёт его
// при первом обращении. Роль при этом не назначается.
func (s *AuthService) ResolveContact(ctx context.Context, in ContactInput) (*AuthResult, error) {
	externalID := strings.TrimSpace(in.ExternalID)
	if err := validation.ValidateExternalID(externalID); err != nil {
		return nil, invalid(err)
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if err := validation.ValidateLength("имя", displayName, 0, validation.MaxDisplayNameLength); err != nil {
		return nil, invalid(err)
	}

	user, created, err := s.repo.GetOrCreateByExternalID(ctx, externalID, validation.Optional(in.Username), displayName)
	if err != nil {
		return nil, translate(err)
	}
	if user.IsBanned() {
		return nil, apperror.ErrUserBanned
	}
	if created {
		logger.Log.WithFields(logrus.Fields{
			"user_id":     user.ID,
			"external_id": externalID,
		}).Info("новый пользователь")
	}

	pair, err := s.tokenManager.GeneratePair(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Created: created, TokenPair: pair}, nil
}

// Refresh выпускает новую пару по refresh токену. Роль берётся из актуальной записи.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	subject, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	if s.admin.Username != "" && subject == AdminID(s.admin.Username) {
		return s.issue(subject, RoleAdmin)
	}

	user, err := s.repo.GetByID(ctx, subject)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if user.IsBanned() {
		return nil, apperror.ErrUserBanned
	}
	return s.issue(user.ID, string(user.Role))
}

// IssueFor выпускает пару для пользователя, например после выбора роли.
func (s *AuthService) IssueFor(user *models.User) (*TokenPair, error) {
	return s.issue(user.ID, string(user.Role))
}

// AdminLogin проверяет логин и bcrypt-хэш пароля консоли администратора.
func (s *AuthService) AdminLogin(username, password string) (*TokenPair, error) {
	if s.admin.Username == "" || s.admin.PasswordHash == "" {
		return nil, apperror.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) != 1 {
		return nil, apperror.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	logger.Log.WithField("admin", username).Info("вход администратора")
	return s.issue(AdminID(s.admin.Username), RoleAdmin)
}

func (s *AuthService) issue(subject uuid.UUID, role string) (*TokenPair, error) {
	pair, err := s.tokenManager.GeneratePair(subject, role)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return pair, nil
}

// HashAdminPassword проверяет пароль администратора и возвращает его bcrypt-хэш для ADMIN_PASSWORD_HASH.
func HashAdminPassword(password string) (string, error) {
	if err := validation.ValidateAdminPassword(password); err != nil {
		return "", invalid(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захэшировать пароль")
	}
	return string(hash), nil
}
