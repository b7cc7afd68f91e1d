package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

const (
	sendBuffer     = 16
	maxMessageSize = 512
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10

	msgMissingUserID = "отсутствует ID пользователя"
)

type Handler struct {
	hub      *Hub
	watcher  AppointmentWatcher
	upgrader websocket.Upgrader
	logger   Logger
}

func NewHandler(hub *Hub, watcher AppointmentWatcher, logger Logger) *Handler {
	return &Handler{
		hub:     hub,
		watcher: watcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// сервис стоит за шлюзом, Origin проверяется там
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle GET /api/v1/therapists/me/appointments/stream
// Первое сообщение содержит текущий список встреч, дальше приходит новый список после каждого изменения.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /therapists/me/appointments/stream - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту
		h.logger.Warn("GET /therapists/me/appointments/stream - Upgrade failed: user_id=%s, error=%v", userID, err)
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
	h.hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	unsubscribe, err := h.watcher.Watch(ctx, userID,
		func(list *models.AppointmentListResponse) {
			h.hub.Deliver(client, Event{Type: EventAppointments, Timestamp: time.Now().UTC(), Data: list})
		},
		func(err error) {
			h.hub.Deliver(client, Event{Type: EventError, Timestamp: time.Now().UTC(), Error: err.Error()})
		},
	)
	if err != nil {
		h.logger.Error("GET /therapists/me/appointments/stream - Failed to subscribe: user_id=%s, error=%v", userID, err)
		h.hub.Unregister(client)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	defer unsubscribe()

	h.logger.Info("GET /therapists/me/appointments/stream - Client connected: user_id=%s, client=%s", userID, client.ID)

	go h.writePump(conn, client)
	h.readPump(conn)

	h.hub.Unregister(client)
	h.logger.Info("GET /therapists/me/appointments/stream - Client disconnected: user_id=%s, client=%s", userID, client.ID)
}

// readPump читает до разрыва соединения, входящие сообщения игнорируются
func (h *Handler) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump единственный писатель в соединение
func (h *Handler) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрыл канал
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
