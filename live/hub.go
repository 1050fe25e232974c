// Package live рассылает административным панелям события о статусе
// уведомлений и результатах проверок расписания через WebSocket.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Типы событий, которые получают подписчики панели.
const (
	EventNotificationSent    = "NOTIFICATION_SENT"
	EventDocumentsGenerated  = "DOCUMENTS_GENERATED"
	EventValidationUpdated   = "VALIDATION_UPDATED"
	EventAssignmentConflicts = "ASSIGNMENT_CONFLICTS"
)

// Event — сообщение, рассылаемое в комнату (комната = турнир либо зона).
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()
			h.logger.Debug("live client registered", slog.String("room", client.Room))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom отправляет событие всем подписчикам комнаты. Медленные
// клиенты с переполненным буфером пропускают сообщение, не блокируя рассылку.
func (h *Hub) BroadcastToRoom(roomID string, event Event) {
	event.RoomID = roomID

	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal live event", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		client.mu.Lock()
		if !client.isClosed {
			select {
			case client.Send <- message:
			default:
			}
		}
		client.mu.Unlock()
	}
}
