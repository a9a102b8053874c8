package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/service"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
	ws "github.com/smousavi/bazaarche-backend/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"https://bazaarche.ir":  true,
			"http://localhost:5173": true, // dev frontend
			"http://localhost:3000": true, // dev frontend
			"http://localhost:8080": true,
		}
		return allowedOrigins[origin]
	},
}

type ChatController struct {
	chatService service.ChatService
	hub         *ws.Hub
}

func NewChatController(chatService service.ChatService, hub *ws.Hub) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         hub,
	}
}

type OpenRoomRequest struct {
	AdID uint `json:"ad_id" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func roomJSON(room *model.ChatRoom, viewerID uint) gin.H {
	unread := room.BuyerUnreadCount
	if viewerID == room.SellerID {
		unread = room.SellerUnreadCount
	}
	return gin.H{
		"id":                   room.ID,
		"ad_id":                room.AdID,
		"seller_id":            room.SellerID,
		"buyer_id":             room.BuyerID,
		"last_message_content": room.LastMessageContent,
		"last_message_at":      room.LastMessageAt,
		"unread_count":         unread,
		"created_at":           room.CreatedAt,
	}
}

// OpenRoom finds or creates the conversation between the caller and the
// ad's owner
// POST /api/chat/rooms
func (ctrl *ChatController) OpenRoom(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req OpenRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "شناسه آگهی الزامی است")
		return
	}

	room, err := ctrl.chatService.OpenRoom(req.AdID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			apperrors.NotFound(c, apperrors.AdNotFound, "آگهی مورد نظر یافت نشد")
		case errors.Is(err, service.ErrChatWithSelf):
			apperrors.BadRequest(c, apperrors.ChatSelfRoomForbidden, "نمی‌توانید برای آگهی خودتان گفتگو شروع کنید")
		default:
			log.Error("Failed to open chat room", err, map[string]interface{}{
				"ad_id": req.AdID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "open chat room")
		}
		return
	}

	ctrl.hub.JoinRoom(room.SellerID, room.ID)
	ctrl.hub.JoinRoom(room.BuyerID, room.ID)

	c.JSON(http.StatusOK, gin.H{
		"room": roomJSON(room, userID),
	})
}

// ListRooms returns the caller's conversations, latest activity first
// GET /api/chat/rooms
func (ctrl *ChatController) ListRooms(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	rooms, err := ctrl.chatService.ListRooms(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list chat rooms")
		return
	}

	out := make([]gin.H, 0, len(rooms))
	for i := range rooms {
		out = append(out, roomJSON(&rooms[i], userID))
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms": out,
	})
}

// GetMessages returns a room's messages and marks them read for the
// caller
// GET /api/chat/rooms/:id/messages
func (ctrl *ChatController) GetMessages(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه گفتگو معتبر نیست")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, err := ctrl.chatService.GetMessages(uint(roomID), userID, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			apperrors.NotFound(c, apperrors.ChatRoomNotFound, "گفتگوی مورد نظر یافت نشد")
		case errors.Is(err, service.ErrNotParticipant):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthUnauthorized, "شما عضو این گفتگو نیستید")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get chat messages")
		}
		return
	}

	ctrl.hub.JoinRoom(userID, uint(roomID))

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

// SendMessage persists a message, then pushes it to the other side's
// open sockets
// POST /api/chat/rooms/:id/messages
func (ctrl *ChatController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه گفتگو معتبر نیست")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "متن پیام الزامی است")
		return
	}

	message, err := ctrl.chatService.SendMessage(uint(roomID), userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			apperrors.NotFound(c, apperrors.ChatRoomNotFound, "گفتگوی مورد نظر یافت نشد")
		case errors.Is(err, service.ErrNotParticipant):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthUnauthorized, "شما عضو این گفتگو نیستید")
		case errors.Is(err, service.ErrEmptyMessage):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "متن پیام الزامی است")
		default:
			log.Error("Failed to send message", err, map[string]interface{}{
				"room_id": roomID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "send message")
		}
		return
	}

	ctrl.hub.SendToRoom(uint(roomID), gin.H{
		"type":    "new_message",
		"message": message,
	}, userID)

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// WebSocketHandler upgrades the connection and starts the pumps. Auth
// runs in middleware; the token arrives as a query parameter for browser
// WebSocket clients and is never logged.
// GET /api/chat/ws
func (ctrl *ChatController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, conn, userID)
	ctrl.hub.Register(client)

	// resubscribe the socket to the user's existing conversations
	rooms, err := ctrl.chatService.ListRooms(userID)
	if err == nil {
		for i := range rooms {
			ctrl.hub.JoinRoom(userID, rooms[i].ID)
		}
	}

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
