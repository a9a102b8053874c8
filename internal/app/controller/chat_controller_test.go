package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/internal/app/service"
	"github.com/smousavi/bazaarche-backend/internal/db"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
	ws "github.com/smousavi/bazaarche-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type chatControllerFixture struct {
	router      *gin.Engine
	authService service.AuthService
	db          *gorm.DB
}

func setupChatControllerTest(t *testing.T) *chatControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	adRepo := repository.NewAdRepository(testDB)
	chatRepo := repository.NewChatRepository(testDB)

	authService := service.NewAuthService(userRepo, "test-secret", testTokenExpiry)
	chatService := service.NewChatService(chatRepo, adRepo)

	hub := ws.NewHub()
	go hub.Run()

	ctrl := NewChatController(chatService, hub)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	chat := router.Group("/chat", authMiddleware.Authenticate())
	{
		chat.POST("/rooms", ctrl.OpenRoom)
		chat.GET("/rooms", ctrl.ListRooms)
		chat.GET("/rooms/:id/messages", ctrl.GetMessages)
		chat.POST("/rooms/:id/messages", ctrl.SendMessage)
	}

	return &chatControllerFixture{router: router, authService: authService, db: testDB}
}

func (f *chatControllerFixture) register(t *testing.T, phone string) (*model.User, string) {
	user, token, err := f.authService.Register("کاربر آزمایشی", phone, "secret1")
	require.NoError(t, err)
	return user, token
}

func (f *chatControllerFixture) createAd(t *testing.T, ownerID uint) *model.Ad {
	ad := &model.Ad{
		UserID:    ownerID,
		Title:     "دوچرخه کوهستان",
		Latitude:  35.70,
		Longitude: 51.40,
		Status:    model.AdStatusActive,
	}
	require.NoError(t, f.db.Create(ad).Error)
	return ad
}

func TestChatController_OpenRoom(t *testing.T) {
	f := setupChatControllerTest(t)
	seller, sellerToken := f.register(t, "09121112233")
	buyer, buyerToken := f.register(t, "09124445566")
	ad := f.createAd(t, seller.ID)

	w := jsonRequest(f.router, "POST", "/chat/rooms", buyerToken, OpenRoomRequest{AdID: ad.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	room := response["room"].(map[string]interface{})
	assert.Equal(t, float64(seller.ID), room["seller_id"])
	assert.Equal(t, float64(buyer.ID), room["buyer_id"])
	roomID := room["id"]

	// opening again returns the same room
	w = jsonRequest(f.router, "POST", "/chat/rooms", buyerToken, OpenRoomRequest{AdID: ad.ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, roomID, response["room"].(map[string]interface{})["id"])

	// the seller cannot open a conversation with themselves
	w = jsonRequest(f.router, "POST", "/chat/rooms", sellerToken, OpenRoomRequest{AdID: ad.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "CHAT_SELF_ROOM_FORBIDDEN", response["error"])
}

func TestChatController_OpenRoom_UnknownAd(t *testing.T) {
	f := setupChatControllerTest(t)
	_, token := f.register(t, "09121112233")

	w := jsonRequest(f.router, "POST", "/chat/rooms", token, OpenRoomRequest{AdID: 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatController_MessageFlow(t *testing.T) {
	f := setupChatControllerTest(t)
	seller, sellerToken := f.register(t, "09121112233")
	_, buyerToken := f.register(t, "09124445566")
	_, strangerToken := f.register(t, "09127778899")
	ad := f.createAd(t, seller.ID)

	w := jsonRequest(f.router, "POST", "/chat/rooms", buyerToken, OpenRoomRequest{AdID: ad.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var opened map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	roomID := uint(opened["room"].(map[string]interface{})["id"].(float64))
	messagesPath := fmt.Sprintf("/chat/rooms/%d/messages", roomID)

	w = jsonRequest(f.router, "POST", messagesPath, buyerToken, SendMessageRequest{Content: "سلام، هنوز موجوده؟"})
	require.Equal(t, http.StatusCreated, w.Code)

	// whitespace-only content is rejected
	w = jsonRequest(f.router, "POST", messagesPath, buyerToken, SendMessageRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a third user is not a participant
	w = jsonRequest(f.router, "GET", messagesPath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the seller sees the message; reading marks it read
	w = jsonRequest(f.router, "GET", messagesPath, sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Messages, 1)
	assert.Equal(t, "سلام، هنوز موجوده؟", listed.Messages[0].Content)

	w = jsonRequest(f.router, "GET", "/chat/rooms", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rooms struct {
		Rooms []map[string]interface{} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, "سلام، هنوز موجوده؟", rooms.Rooms[0]["last_message_content"])
	assert.Equal(t, float64(0), rooms.Rooms[0]["unread_count"])
}
