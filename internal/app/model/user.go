package model

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is an account holder. Phone and username are both globally unique;
// username defaults to the phone number at registration. Role is never
// client-settable — promoting an admin happens directly in the database.
// Deletes are hard deletes, there is no soft-delete column.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Phone        string    `gorm:"uniqueIndex;not null" json:"phone"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Ads   []Ad   `gorm:"foreignKey:UserID" json:"-"`
	Shops []Shop `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
