package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/http/middleware"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser подменяет AuthMiddleware в тестах.
func asUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, id)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

// stubUsers отдаёт активных пользователей с заданными ролями.
type stubUsers map[uuid.UUID]valueobject.Role

func (s stubUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	role, ok := s[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &models.User{ID: id, Role: role, Status: valueobject.UserStatusActive, CreatedAt: time.Now()}, nil
}

// silentNotifier проглатывает все события.
type silentNotifier struct{}

func (silentNotifier) Deliver(uuid.UUID, string, any) error { return nil }
func (silentNotifier) Notify(uuid.UUID, string, any)        {}
func (silentNotifier) NotifyAdmin(string, any)              {}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
