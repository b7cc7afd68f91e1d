// Package realtime отдает практикующему обновления календаря через WebSocket.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	EventAppointments = "appointments.snapshot"
	EventError        = "appointments.error"
)

// Event сообщение клиенту. Data всегда содержит полный список встреч.
type Event struct {
	Type      string                          `json:"type"`
	Timestamp time.Time                       `json:"timestamp"`
	Data      *models.AppointmentListResponse `json:"data,omitempty"`
	Error     string                          `json:"error,omitempty"`
}

// Client одно WebSocket соединение
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// Hub реестр подключенных клиентов по практикующим
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // userID -> клиенты
	metrics Metrics
	logger  Logger
}

func NewHub(metrics Metrics, logger Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		metrics: metrics,
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	h.delta(1)
}

// Unregister удаляет клиента и закрывает его Send. Повторный вызов ничего не делает.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(client)
}

func (h *Hub) unregisterLocked(client *Client) {
	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}

	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
	h.delta(-1)
}

// Deliver кладет событие в буфер клиента, не блокируясь.
// Возвращает false, если клиент уже отключен или буфер переполнен.
func (h *Hub) Deliver(client *Client, event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("realtime: failed to marshal event for client=%s: %v", client.ID, err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client.UserID][client]; !ok {
		return false
	}

	select {
	case client.Send <- data:
		return true
	default:
		// медленный клиент, событие пропускаем: следующее все равно содержит полный список
		h.logger.Warn("realtime: send buffer full, dropping event for client=%s, user=%s", client.ID, client.UserID)
		return false
	}
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.clients {
		for client := range set {
			h.unregisterLocked(client)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) delta(d int) {
	if h.metrics != nil {
		h.metrics.RealtimeClientsDelta(d)
	}
}
