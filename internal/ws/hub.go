package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/goroutine"
	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/metrics"
)

// NotificationStore сохраняет событие в ленту пользователя.
type NotificationStore interface {
	Persist(ctx context.Context, userID uuid.UUID, event string, data any) error
}

// Envelope - формат сообщения, уходящего в сокет.
type Envelope struct {
	Type   string    `json:"type"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Hub держит открытые соединения по пользователям и раздаёт им события.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	store      NotificationStore
	ctx        context.Context
}

type outbound struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub создаёт хаб. store может быть nil, тогда события не сохраняются.
// Хаб останавливается вместе с ctx.
func NewHub(ctx context.Context, store NotificationStore) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		store:      store,
		ctx:        ctx,
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case out := <-h.broadcast:
			h.send(out.userID, out.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// BroadcastToUser сохраняет уведомление в ленту пользователя и отправляет его
// во все открытые соединения. Ошибка сохранения возвращается вызывающему.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	if h.store != nil {
		if err := h.store.Persist(h.ctx, userID, event, data); err != nil {
			return fmt.Errorf("ws: не удалось сохранить уведомление: %w", err)
		}
	}
	return h.Push(userID, event, data)
}

// Push отправляет событие в открытые соединения пользователя без сохранения.
// Если соединений нет, событие теряется.
func (h *Hub) Push(userID uuid.UUID, event string, data any) error {
	raw, err := json.Marshal(Envelope{Type: event, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- outbound{userID: userID, payload: raw}:
		return nil
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

// Online возвращает количество открытых соединений пользователя.
func (h *Hub) Online(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// OnlineUsers возвращает число пользователей хотя бы с одним соединением.
func (h *Hub) OnlineUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			logger.Log.WithFields(logrus.Fields{"user_id": userID}).Warn("ws: буфер клиента переполнен, соединение закрывается")
			metrics.WSSlowClient()
			goroutine.SafeGo(client.Close)
		}
	}
}
