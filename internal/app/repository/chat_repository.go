package repository

import (
	"errors"
	"time"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

type ChatRepository interface {
	FindOrCreateRoom(adID, sellerID, buyerID uint) (*model.ChatRoom, error)
	FindRoomByID(id uint) (*model.ChatRoom, error)
	FindRoomsByUser(userID uint) ([]model.ChatRoom, error)
	CreateMessage(message *model.Message) error
	FindMessages(roomID uint, limit int) ([]model.Message, error)
	MarkRead(roomID, readerID uint) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindOrCreateRoom(adID, sellerID, buyerID uint) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.Where("ad_id = ? AND buyer_id = ?", adID, buyerID).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room = model.ChatRoom{
		AdID:     adID,
		SellerID: sellerID,
		BuyerID:  buyerID,
	}
	if err := r.db.Create(&room).Error; err != nil {
		logger.Error("Failed to create chat room", err, map[string]interface{}{
			"ad_id":    adID,
			"buyer_id": buyerID,
		})
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) FindRoomByID(id uint) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) FindRoomsByUser(userID uint) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	err := r.db.
		Where("seller_id = ? OR buyer_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateMessage appends a message and updates the room's denormalized
// last-message fields and the recipient's unread counter in one
// transaction.
func (r *chatRepository) CreateMessage(message *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var room model.ChatRoom
		if err := tx.First(&room, message.ChatRoomID).Error; err != nil {
			return err
		}

		if err := tx.Create(message).Error; err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"last_message_content": message.Content,
			"last_message_at":      now,
		}
		if message.SenderID == room.SellerID {
			updates["buyer_unread_count"] = gorm.Expr("buyer_unread_count + 1")
		} else {
			updates["seller_unread_count"] = gorm.Expr("seller_unread_count + 1")
		}

		return tx.Model(&model.ChatRoom{}).
			Where("id = ?", room.ID).
			Updates(updates).Error
	})
}

func (r *chatRepository) FindMessages(roomID uint, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	messages := []model.Message{}
	err := r.db.
		Where("chat_room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead stamps unread messages from the other participant and resets
// the reader's unread counter
func (r *chatRepository) MarkRead(roomID, readerID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var room model.ChatRoom
		if err := tx.First(&room, roomID).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&model.Message{}).
			Where("chat_room_id = ? AND sender_id != ? AND read_at IS NULL", roomID, readerID).
			Update("read_at", now).Error; err != nil {
			return err
		}

		counter := "buyer_unread_count"
		if readerID == room.SellerID {
			counter = "seller_unread_count"
		}
		return tx.Model(&model.ChatRoom{}).
			Where("id = ?", roomID).
			UpdateColumn(counter, 0).Error
	})
}
