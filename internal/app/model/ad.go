package model

import (
	"time"

	"gorm.io/gorm"
)

type AdCondition string

const (
	ConditionNew  AdCondition = "new"
	ConditionGood AdCondition = "good"
	ConditionFair AdCondition = "fair"
	ConditionPoor AdCondition = "poor"
)

type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusInactive AdStatus = "inactive"
	AdStatusSold     AdStatus = "sold"
	AdStatusExpired  AdStatus = "expired"
	AdStatusRejected AdStatus = "rejected"
)

// AdLifetime is the fixed validity window of a listing. It is stamped at
// creation and never renewed; the expiry scheduler flips overdue ads to
// expired.
const AdLifetime = 30 * 24 * time.Hour

// Ad is a geo-tagged classified listing. ShopID nil means a personal ad;
// non-nil ties the ad to a storefront, and then the shop's owner must be
// the posting user. A nil price reads as "negotiable" (توافقی).
type Ad struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ShopID      *uint       `gorm:"index" json:"shop_id,omitempty"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Price       *int64      `json:"price"`
	Condition   AdCondition `gorm:"type:varchar(10);default:'good'" json:"condition"`
	Latitude    float64     `gorm:"not null" json:"latitude"`
	Longitude   float64     `gorm:"not null" json:"longitude"`
	Address     string      `gorm:"type:text" json:"address"`
	Status      AdStatus    `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Views       int         `gorm:"default:0" json:"views"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	ExpiresAt   time.Time   `gorm:"index" json:"expires_at"`

	Images []AdImage `gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Ad) TableName() string {
	return "ads"
}

// BeforeCreate stamps defaults the handlers rely on
func (a *Ad) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = AdStatusActive
	}
	if a.Condition == "" {
		a.Condition = ConditionGood
	}
	if a.ExpiresAt.IsZero() {
		a.ExpiresAt = time.Now().Add(AdLifetime)
	}
	return nil
}

// ImageURLs flattens the loaded image rows into the wire shape.
// The rows arrive already ordered (primary first, then sort order).
func (a *Ad) ImageURLs() []string {
	urls := make([]string, 0, len(a.Images))
	for _, img := range a.Images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}

// AdImage stores one picture of an ad. ImageURL is text and usually holds
// a base64 data URL rather than a file path. At most one row per ad should
// carry IsPrimary, but that is an application convention, not a database
// constraint; readers order by is_primary first so the first match wins.
type AdImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AdID      uint      `gorm:"not null;index" json:"ad_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func (AdImage) TableName() string {
	return "ad_images"
}
