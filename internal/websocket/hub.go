package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/smousavi/bazaarche-backend/pkg/logger"
)

// ClientMessage is what the browser sends over the socket. Only typing
// indicators come this way; real messages go through the REST endpoint
// so they are persisted first.
type ClientMessage struct {
	Type       string `json:"type"` // typing_start, typing_stop
	ChatRoomID uint   `json:"chat_room_id"`
}

// Client is one open socket of a user. A user with the site open in two
// tabs has two clients.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte

	// rooms this client has joined
	Rooms map[uint]bool
	mu    sync.RWMutex

	// sliding one-second message counter for rate limiting
	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

// Hub fans chat events out to connected clients. All state is owned by
// the Run goroutine plus the mutex for the read-side helpers.
type Hub struct {
	clients map[uint][]*Client     // UserID -> sessions
	rooms   map[uint]map[uint]bool // ChatRoomID -> set of UserIDs

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomMessage

	mu sync.RWMutex
}

type roomMessage struct {
	ChatRoomID uint
	Payload    []byte
	SenderID   uint // excluded from delivery
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		rooms:      make(map[uint]map[uint]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *roomMessage, 1024),
	}
}

// Run processes hub events. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	remaining := make([]*Client, 0, len(sessions))
	for _, c := range sessions {
		if c != client {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(h.clients, client.UserID)
		client.mu.RLock()
		for roomID := range client.Rooms {
			if users, ok := h.rooms[roomID]; ok {
				delete(users, client.UserID)
				if len(users) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}
		client.mu.RUnlock()
	} else {
		h.clients[client.UserID] = remaining
	}

	close(client.Send)
	logger.Debug("WebSocket client unregistered", map[string]interface{}{
		"user_id": client.UserID,
	})
}

func (h *Hub) deliver(message *roomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.rooms[message.ChatRoomID]
	if !ok {
		return
	}
	for userID := range users {
		if userID == message.SenderID {
			continue
		}
		for _, client := range h.clients[userID] {
			select {
			case client.Send <- message.Payload:
			default:
				// slow consumer, drop the session
				go h.Unregister(client)
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"user_id": userID,
				})
			}
		}
	}
}

// JoinRoom subscribes all of a user's sessions to a chat room
func (h *Hub) JoinRoom(userID, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.clients[userID]
	if !ok {
		return
	}
	for _, client := range sessions {
		client.mu.Lock()
		client.Rooms[roomID] = true
		client.mu.Unlock()
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uint]bool)
	}
	h.rooms[roomID][userID] = true
}

// LeaveRoom drops the subscription
func (h *Hub) LeaveRoom(userID, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients[userID] {
		client.mu.Lock()
		delete(client.Rooms, roomID)
		client.mu.Unlock()
	}
	if users, ok := h.rooms[roomID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToRoom pushes an event to everyone in the room except the sender.
// Delivery is best effort; a full broadcast queue drops the event rather
// than blocking the HTTP handler that triggered it.
func (h *Hub) SendToRoom(roomID uint, message interface{}, senderID uint) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal websocket payload", err)
		return err
	}

	select {
	case h.broadcast <- &roomMessage{ChatRoomID: roomID, Payload: data, SenderID: senderID}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"room_id": roomID,
		})
	}
	return nil
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether the user has at least one open socket
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// HandleClientMessage processes one inbound frame: rate limit, parse,
// and relay typing indicators to the rest of the room.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("WebSocket rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("Unparseable websocket frame", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type != "typing_start" && msg.Type != "typing_stop" {
		return
	}

	client.mu.RLock()
	_, inRoom := client.Rooms[msg.ChatRoomID]
	client.mu.RUnlock()
	if !inRoom {
		return
	}

	h.SendToRoom(msg.ChatRoomID, map[string]interface{}{
		"type":         msg.Type,
		"chat_room_id": msg.ChatRoomID,
		"user_id":      client.UserID,
	}, client.UserID)
}
