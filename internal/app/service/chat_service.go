package service

import (
	"errors"
	"strings"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRoomNotFound   = errors.New("chat room not found")
	ErrNotParticipant = errors.New("user is not a participant of this room")
	ErrChatWithSelf   = errors.New("cannot open a chat about your own ad")
	ErrEmptyMessage   = errors.New("message content is empty")
)

type ChatService interface {
	OpenRoom(adID, buyerID uint) (*model.ChatRoom, error)
	ListRooms(userID uint) ([]model.ChatRoom, error)
	GetMessages(roomID, userID uint, limit int) ([]model.Message, error)
	SendMessage(roomID, senderID uint, content string) (*model.Message, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	adRepo   repository.AdRepository
}

func NewChatService(chatRepo repository.ChatRepository, adRepo repository.AdRepository) ChatService {
	return &chatService{chatRepo: chatRepo, adRepo: adRepo}
}

// OpenRoom finds or creates the single room for (ad, buyer). The seller
// is resolved from the ad, never taken from the client.
func (s *chatService) OpenRoom(adID, buyerID uint) (*model.ChatRoom, error) {
	ad, err := s.adRepo.FindByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	if ad.UserID == buyerID {
		return nil, ErrChatWithSelf
	}

	room, err := s.chatRepo.FindOrCreateRoom(adID, ad.UserID, buyerID)
	if err != nil {
		logger.Error("Failed to open chat room", err, map[string]interface{}{
			"ad_id":    adID,
			"buyer_id": buyerID,
		})
		return nil, err
	}
	return room, nil
}

func (s *chatService) ListRooms(userID uint) ([]model.ChatRoom, error) {
	return s.chatRepo.FindRoomsByUser(userID)
}

// GetMessages returns the latest messages of a room and marks the
// other side's messages read for the caller.
func (s *chatService) GetMessages(roomID, userID uint, limit int) ([]model.Message, error) {
	room, err := s.chatRepo.FindRoomByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	messages, err := s.chatRepo.FindMessages(roomID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.MarkRead(roomID, userID); err != nil {
		logger.Warn("Failed to mark messages read", map[string]interface{}{
			"room_id": roomID,
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	return messages, nil
}

func (s *chatService) SendMessage(roomID, senderID uint, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.chatRepo.FindRoomByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	message := &model.Message{
		ChatRoomID: roomID,
		SenderID:   senderID,
		Content:    content,
	}
	if err := s.chatRepo.CreateMessage(message); err != nil {
		logger.Error("Failed to send message", err, map[string]interface{}{
			"room_id":   roomID,
			"sender_id": senderID,
		})
		return nil, err
	}
	return message, nil
}
