package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAdmin - роль в токене консоли администратора. Пользователям она не назначается.
const RoleAdmin = "admin"

const tokenIssuer = "freelance-escrow"

var errTokenSubject = errors.New("token: subject is not a uuid")

// TokenPair хранит пару access/refresh токенов.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

// accessClaims - содержимое access токена. В refresh токене роли нет,
// актуальная роль берётся из базы при обновлении.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет JWT (HS256). Access и refresh
// подписываются разными секретами.
type TokenManager struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AdminID - стабильный идентификатор администратора. Администратор не хранится в users,
// его идентификатор выводится из логина.
func AdminID(username string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("escrow-admin:"+username))
}

// GeneratePair выпускает новую пару токенов для субъекта с ролью.
func (m *TokenManager) GeneratePair(subject uuid.UUID, role string) (*TokenPair, error) {
	issued := m.now()

	access, err := m.sign(m.accessKey, accessClaims{
		Role:             role,
		RegisteredClaims: m.registered(subject, issued, m.accessTTL),
	})
	if err != nil {
		return nil, err
	}

	refreshClaims := m.registered(subject, issued, m.refreshTTL)
	refreshClaims.ID = uuid.NewString()
	refresh, err := m.sign(m.refreshKey, refreshClaims)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: m.accessTTL}, nil
}

// ParseAccess извлекает субъекта и роль из access токена.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, string, error) {
	var claims accessClaims
	if err := m.parse(token, m.accessKey, &claims); err != nil {
		return uuid.Nil, "", err
	}
	subject, err := subjectOf(&claims.RegisteredClaims)
	if err != nil {
		return uuid.Nil, "", err
	}
	return subject, claims.Role, nil
}

// ParseRefresh проверяет refresh токен и возвращает субъекта.
func (m *TokenManager) ParseRefresh(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	if err := m.parse(token, m.refreshKey, &claims); err != nil {
		return uuid.Nil, err
	}
	return subjectOf(&claims)
}

func (m *TokenManager) registered(subject uuid.UUID, issued time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
}

func (m *TokenManager) sign(key []byte, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func (m *TokenManager) parse(token string, key []byte, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	return err
}

func subjectOf(claims *jwt.RegisteredClaims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errTokenSubject
	}
	return id, nil
}
