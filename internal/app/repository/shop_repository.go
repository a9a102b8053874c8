package repository

import (
	"errors"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrNotFollowing is returned by Unfollow when no follow row matched.
// Callers treat it as a user-facing condition, not a server error.
var ErrNotFollowing = errors.New("not following")

type ShopFilter struct {
	Category string
	Search   string
	Status   model.ShopStatus
	Limit    int
}

type ShopRepository interface {
	Create(shop *model.Shop) error
	FindByID(id uint) (*model.Shop, error)
	FindByUserID(userID uint) ([]model.Shop, error)
	FindAll(filter ShopFilter) ([]model.Shop, error)
	Update(shop *model.Shop) error
	Delete(id uint) error
	IncrementViews(id uint) error
	ReplaceImages(shopID uint, images []model.ShopImage) error
	FindImages(shopID uint) ([]model.ShopImage, error)
	Follow(shopID, userID uint) error
	Unfollow(shopID, userID uint) error
	IsFollowing(shopID, userID uint) (bool, error)
	CountFollowers(shopID uint) (int64, error)
	Count() (int64, error)
	CountFollows() (int64, error)
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(shop *model.Shop) error {
	if err := r.db.Create(shop).Error; err != nil {
		logger.Error("Failed to create shop in database", err, map[string]interface{}{
			"shop_name": shop.ShopName,
			"user_id":   shop.UserID,
		})
		return err
	}

	logger.Debug("Shop created in database", map[string]interface{}{
		"shop_id": shop.ID,
		"user_id": shop.UserID,
	})
	return nil
}

// FindByID loads the shop row, then its images in a second query
func (r *shopRepository) FindByID(id uint) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.First(&shop, id).Error; err != nil {
		return nil, err
	}

	images, err := r.FindImages(shop.ID)
	if err != nil {
		return nil, err
	}
	shop.Images = images

	return &shop, nil
}

func (r *shopRepository) FindByUserID(userID uint) ([]model.Shop, error) {
	var shops []model.Shop
	if err := r.db.Where("user_id = ?", userID).Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *shopRepository) FindAll(filter ShopFilter) ([]model.Shop, error) {
	query := r.db.Model(&model.Shop{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("shop_name LIKE ?", like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var shops []model.Shop
	if err := query.Order("created_at DESC").Find(&shops).Error; err != nil {
		logger.Error("Failed to list shops", err)
		return nil, err
	}
	return shops, nil
}

func (r *shopRepository) Update(shop *model.Shop) error {
	if err := r.db.Save(shop).Error; err != nil {
		logger.Error("Failed to update shop in database", err, map[string]interface{}{
			"shop_id": shop.ID,
		})
		return err
	}
	return nil
}

func (r *shopRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Shop{}, id).Error; err != nil {
		logger.Error("Failed to delete shop from database", err, map[string]interface{}{
			"shop_id": id,
		})
		return err
	}
	if err := r.db.Where("shop_id = ?", id).Delete(&model.ShopImage{}).Error; err != nil {
		return err
	}
	return r.db.Where("shop_id = ?", id).Delete(&model.ShopFollower{}).Error
}

// IncrementViews bumps the view counter; called on every detail fetch,
// there is no deduplication window
func (r *shopRepository) IncrementViews(id uint) error {
	return r.db.Model(&model.Shop{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *shopRepository) ReplaceImages(shopID uint, images []model.ShopImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shopID).Delete(&model.ShopImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ShopID = shopID
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
}

func (r *shopRepository) FindImages(shopID uint) ([]model.ShopImage, error) {
	images := []model.ShopImage{}
	if err := r.db.
		Where("shop_id = ?", shopID).
		Order("is_primary DESC, sort_order ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Follow inserts the follow edge. A duplicate insert fails on the unique
// index and the constraint error propagates for the service to classify.
func (r *shopRepository) Follow(shopID, userID uint) error {
	follow := model.ShopFollower{ShopID: shopID, UserID: userID}
	return r.db.Create(&follow).Error
}

// Unfollow removes the follow edge; zero matched rows means the caller
// was never following and maps to ErrNotFollowing.
func (r *shopRepository) Unfollow(shopID, userID uint) error {
	result := r.db.
		Where("shop_id = ? AND user_id = ?", shopID, userID).
		Delete(&model.ShopFollower{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

func (r *shopRepository) IsFollowing(shopID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ShopFollower{}).
		Where("shop_id = ? AND user_id = ?", shopID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shopRepository) CountFollowers(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ShopFollower{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}

func (r *shopRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Shop{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *shopRepository) CountFollows() (int64, error) {
	var count int64
	if err := r.db.Model(&model.ShopFollower{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
