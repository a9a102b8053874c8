package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type ShopStatus string

const (
	ShopStatusActive   ShopStatus = "active"
	ShopStatusInactive ShopStatus = "inactive"
)

// WorkingHours is one entry of a shop's weekly schedule
type WorkingHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WorkingHoursList is stored as a JSON array in a text column
type WorkingHoursList []WorkingHours

func (w WorkingHoursList) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

func (w *WorkingHoursList) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("failed to scan WorkingHoursList")
		}
	}
	return json.Unmarshal(bytes, w)
}

// SocialLinks maps a platform name to a profile URL, stored as JSON
type SocialLinks map[string]string

func (s SocialLinks) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("failed to scan SocialLinks")
		}
	}
	return json.Unmarshal(bytes, s)
}

// Shop is a seller storefront owned by exactly one user. A user may own
// several shops, though the UI assumes a single active one.
type Shop struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	User         User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ShopName     string           `gorm:"not null" json:"shop_name"`
	Description  string           `gorm:"type:text" json:"description"`
	Category     string           `gorm:"index" json:"category"`
	Phone        string           `gorm:"type:varchar(30)" json:"phone"`
	Email        string           `json:"email"`
	Website      string           `json:"website"`
	Latitude     *float64         `json:"latitude"`
	Longitude    *float64         `json:"longitude"`
	Address      string           `gorm:"type:text" json:"address"`
	WorkingHours WorkingHoursList `gorm:"type:text" json:"working_hours"`
	SocialMedia  SocialLinks      `gorm:"type:text" json:"social_media"`
	Status       ShopStatus       `gorm:"type:varchar(20);default:'active'" json:"status"`
	IsVerified   bool             `gorm:"default:false" json:"is_verified"`
	Views        int              `gorm:"default:0" json:"views"`
	Rating       float64          `gorm:"default:0" json:"rating"`
	ReviewCount  int              `gorm:"default:0" json:"review_count"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Images    []ShopImage    `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"-"`
	Followers []ShopFollower `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"-"`
	Ads       []Ad           `gorm:"foreignKey:ShopID" json:"-"`
}

func (Shop) TableName() string {
	return "shops"
}

// ImageURLs flattens loaded image rows, primary (profile) first
func (s *Shop) ImageURLs() []string {
	urls := make([]string, 0, len(s.Images))
	for _, img := range s.Images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}

// ShopImage stores one picture of a shop: the primary row is the profile
// image, the rest form the gallery. Same is_primary convention as AdImage.
type ShopImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ShopID    uint      `gorm:"not null;index" json:"shop_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func (ShopImage) TableName() string {
	return "shop_images"
}

// ShopFollower is the follow edge from a user to a shop. Existence means
// "following"; there is no extra state. The composite unique index is what
// resolves concurrent duplicate follows.
type ShopFollower struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ShopID    uint      `gorm:"not null;index:idx_shop_user_follow,unique" json:"shop_id"`
	UserID    uint      `gorm:"not null;index:idx_shop_user_follow,unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Shop Shop `gorm:"foreignKey:ShopID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ShopFollower) TableName() string {
	return "shop_followers"
}
