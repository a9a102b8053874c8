package model

import (
	"time"
)

// ChatRoom is a 1:1 conversation about an ad. SellerID is the ad owner,
// BuyerID the user who opened the conversation. One room per (ad, buyer).
type ChatRoom struct {
	ID       uint `gorm:"primarykey" json:"id"`
	AdID     uint `gorm:"not null;index:idx_ad_buyer_room,unique" json:"ad_id"`
	Ad       Ad   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SellerID uint `gorm:"not null;index" json:"seller_id"`
	BuyerID  uint `gorm:"not null;index:idx_ad_buyer_room,unique" json:"buyer_id"`
	Seller   User `gorm:"foreignKey:SellerID" json:"-"`
	Buyer    User `gorm:"foreignKey:BuyerID" json:"-"`

	// Denormalized for the room list, mirrors the latest message
	LastMessageContent string     `gorm:"type:text" json:"last_message_content,omitempty"`
	LastMessageAt      *time.Time `gorm:"index" json:"last_message_at,omitempty"`

	SellerUnreadCount int `gorm:"default:0" json:"seller_unread_count"`
	BuyerUnreadCount  int `gorm:"default:0" json:"buyer_unread_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// HasParticipant reports whether userID belongs to this room
func (r *ChatRoom) HasParticipant(userID uint) bool {
	return r.SellerID == userID || r.BuyerID == userID
}

// Message is a single chat message inside a room
type Message struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	ChatRoomID uint       `gorm:"not null;index" json:"chat_room_id"`
	SenderID   uint       `gorm:"not null;index" json:"sender_id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
