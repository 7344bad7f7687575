package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"unipool/pkg/logger"
)

// Message is the envelope delivered to subscribers of a channel.
type Message struct {
	Channel   string          `json:"channel"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewMessage marshals data into a message for channel.
func NewMessage(channel, event string, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Channel:   channel,
		Event:     event,
		Data:      raw,
		Timestamp: getCurrentTimestamp(),
	}, nil
}

type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message),
		logger:     log,
	}
}

// Run owns client registration and fan-out until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.sendToRoom(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues message for delivery to the members of message.Channel.
func (h *Hub) Publish(ctx context.Context, message *Message) error {
	select {
	case h.broadcast <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true

	// Every user listens on their own driver and passenger rooms
	for _, room := range personalRooms(client.UserID) {
		h.joinRoom(client, room)
	}

	h.logger.WithUserID(client.UserID).Debug("Realtime client registered")

	welcome, _ := NewMessage("", "connected", map[string]interface{}{
		"userId": client.UserID,
		"rooms":  personalRooms(client.UserID),
	})
	h.sendToClient(client, welcome)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.removeClient(client)
}

// removeClient expects the write lock to be held.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	client.rooms = map[string]bool{}

	h.logger.WithUserID(client.UserID).Debug("Realtime client unregistered")
}

func (h *Hub) sendToRoom(message *Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[message.Channel]
	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode realtime message")
		return
	}

	for client := range room {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the connection rather than block the hub
			h.removeClient(client)
		}
	}
}

func (h *Hub) sendToClient(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.removeClient(client)
	}
}

// Join subscribes client to roomID.
func (h *Hub) Join(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	h.joinRoom(client, roomID)
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) Leave(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)

		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) RoomSize(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.rooms[roomID])
}

// personalRooms are the rooms a user joins on connect.
func personalRooms(userID string) []string {
	return []string{"driver:" + userID, "passenger:" + userID}
}

// CanSubscribe reports whether userID may join channel. Booking and ride
// rooms are open to any authenticated user, personal rooms only to their owner.
func CanSubscribe(userID, channel string) bool {
	kind, id, ok := strings.Cut(channel, ":")
	if !ok || id == "" {
		return false
	}

	switch kind {
	case "booking", "ride":
		return true
	case "driver", "passenger":
		return id == userID
	default:
		return false
	}
}

func getCurrentTimestamp() int64 {
	return time.Now().UnixMilli()
}
