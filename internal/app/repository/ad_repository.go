package repository

import (
	"time"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

// DefaultAdLimit caps the general feed when the caller sends no limit
const DefaultAdLimit = 100

// Bounds is a rectangular lat/lng region (southwest and northeast corners)
type Bounds struct {
	SWLat float64
	SWLng float64
	NELat float64
	NELng float64
}

// AdFilter drives ad listing. The modes are mutually exclusive and
// evaluated in order: ShopID, then UserID, then Bounds, then the general
// feed. Status applies on top of the shop/user modes; the bounds and
// general modes are always active-only.
type AdFilter struct {
	ShopID *uint
	UserID *uint
	Bounds *Bounds
	Status model.AdStatus
	Limit  int
}

type AdRepository interface {
	Create(ad *model.Ad) error
	FindByID(id uint) (*model.Ad, error)
	FindAll(filter AdFilter) ([]model.Ad, error)
	Update(ad *model.Ad) error
	Delete(id uint) error
	IncrementViews(id uint) error
	ReplaceImages(adID uint, images []model.AdImage) error
	FindImages(adID uint) ([]model.AdImage, error)
	ExpireOverdue(now time.Time) (int64, error)
	Count() (int64, error)
	CountByStatus(status model.AdStatus) (int64, error)
}

type adRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ad *model.Ad) error {
	if err := r.db.Create(ad).Error; err != nil {
		logger.Error("Failed to create ad in database", err, map[string]interface{}{
			"user_id": ad.UserID,
			"title":   ad.Title,
		})
		return err
	}

	logger.Debug("Ad created in database", map[string]interface{}{
		"ad_id":   ad.ID,
		"user_id": ad.UserID,
	})
	return nil
}

// FindByID loads the ad row, then its images in a second query.
// No join-based eager loading; images always come from a second query.
func (r *adRepository) FindByID(id uint) (*model.Ad, error) {
	var ad model.Ad
	if err := r.db.First(&ad, id).Error; err != nil {
		return nil, err
	}

	images, err := r.FindImages(ad.ID)
	if err != nil {
		return nil, err
	}
	ad.Images = images

	return &ad, nil
}

func (r *adRepository) FindAll(filter AdFilter) ([]model.Ad, error) {
	query := r.db.Model(&model.Ad{})

	switch {
	case filter.ShopID != nil:
		// a shop's own page shows its full inventory
		query = query.Where("shop_id = ?", *filter.ShopID)
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}

	case filter.UserID != nil:
		// a user's personal ads only; storefront ads are reached
		// through the shop page, never through the user filter
		query = query.Where("user_id = ? AND shop_id IS NULL", *filter.UserID)
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}

	case filter.Bounds != nil:
		b := filter.Bounds
		query = query.
			Where("status = ?", model.AdStatusActive).
			Where("shop_id IS NULL").
			Where("latitude >= ? AND latitude <= ?", b.SWLat, b.NELat).
			Where("longitude >= ? AND longitude <= ?", b.SWLng, b.NELng)

	default:
		query = query.Where("status = ?", model.AdStatusActive).Where("shop_id IS NULL")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultAdLimit
	}

	var ads []model.Ad
	if err := query.Order("created_at DESC").Limit(limit).Find(&ads).Error; err != nil {
		logger.Error("Failed to list ads", err)
		return nil, err
	}

	if err := r.populateImages(ads); err != nil {
		logger.Error("Failed to load ad images", err)
		return nil, err
	}

	logger.Debug("Ads listed", map[string]interface{}{
		"count": len(ads),
	})
	return ads, nil
}

// populateImages attaches image rows to a page of ads with one query
func (r *adRepository) populateImages(ads []model.Ad) error {
	if len(ads) == 0 {
		return nil
	}

	adIDs := make([]uint, len(ads))
	adIndex := make(map[uint]*model.Ad, len(ads))
	for i := range ads {
		adIDs[i] = ads[i].ID
		ads[i].Images = []model.AdImage{}
		adIndex[ads[i].ID] = &ads[i]
	}

	var images []model.AdImage
	if err := r.db.
		Where("ad_id IN ?", adIDs).
		Order("is_primary DESC, sort_order ASC, id ASC").
		Find(&images).Error; err != nil {
		return err
	}

	for _, img := range images {
		if ad, ok := adIndex[img.AdID]; ok {
			ad.Images = append(ad.Images, img)
		}
	}
	return nil
}

func (r *adRepository) Update(ad *model.Ad) error {
	if err := r.db.Save(ad).Error; err != nil {
		logger.Error("Failed to update ad in database", err, map[string]interface{}{
			"ad_id": ad.ID,
		})
		return err
	}
	return nil
}

func (r *adRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Ad{}, id).Error; err != nil {
		logger.Error("Failed to delete ad from database", err, map[string]interface{}{
			"ad_id": id,
		})
		return err
	}
	// image rows cascade via the foreign key; sqlite needs the explicit
	// cleanup when foreign_keys is off
	return r.db.Where("ad_id = ?", id).Delete(&model.AdImage{}).Error
}

func (r *adRepository) IncrementViews(id uint) error {
	return r.db.Model(&model.Ad{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// ReplaceImages swaps the full image set in one transaction
func (r *adRepository) ReplaceImages(adID uint, images []model.AdImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ad_id = ?", adID).Delete(&model.AdImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].AdID = adID
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
}

// FindImages returns an ad's images, primary first, then sort order.
// When several rows claim is_primary the first in this ordering wins.
func (r *adRepository) FindImages(adID uint) ([]model.AdImage, error) {
	images := []model.AdImage{}
	if err := r.db.
		Where("ad_id = ?", adID).
		Order("is_primary DESC, sort_order ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// ExpireOverdue flips active ads past their expiry to expired
func (r *adRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&model.Ad{}).
		Where("status = ? AND expires_at <= ?", model.AdStatusActive, now).
		UpdateColumn("status", model.AdStatusExpired)
	if result.Error != nil {
		logger.Error("Failed to expire overdue ads", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *adRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Ad{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *adRepository) CountByStatus(status model.AdStatus) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Ad{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
