package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-escrow/internal/logger"
)

const healthTimeout = 3 * time.Second

// DBPinger - то, что нужно health check от пула соединений (*sqlx.DB).
type DBPinger interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// OnlineCounter отдаёт число пользователей на вебсокетах.
type OnlineCounter interface {
	OnlineUsers() int
}

type HealthHandler struct {
	db     DBPinger
	online OnlineCounter
}

// NewHealthHandler создаёт обработчик. online может быть nil.
func NewHealthHandler(db DBPinger, online OnlineCounter) *HealthHandler {
	return &HealthHandler{db: db, online: online}
}

type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Checks      map[string]string `json:"checks"`
	OnlineUsers *int              `json:"online_users,omitempty"`
}

// Health обрабатывает GET /health. 503 только при недоступной базе,
// исчерпанный пул лишь помечается.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks: map[string]string{
			"database":        "healthy",
			"connection_pool": poolState(h.db.Stats()),
		},
	}

	code := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		logger.Log.WithError(err).Warn("health: база недоступна")
		resp.Status = "unhealthy"
		resp.Checks["database"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	if h.online != nil {
		n := h.online.OnlineUsers()
		resp.OnlineUsers = &n
	}

	c.JSON(code, resp)
}

func poolState(stats sql.DBStats) string {
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		return "warning: pool exhausted"
	}
	return "healthy"
}
