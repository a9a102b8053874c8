package service

import (
	"errors"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrShopNotFound     = errors.New("shop not found")
	ErrShopNotOwned     = errors.New("shop does not belong to user")
	ErrAlreadyFollowing = errors.New("already following shop")
	ErrNotFollowing     = errors.New("not following shop")
)

// ShopInput carries the writable fields of a storefront.
type ShopInput struct {
	ShopName     string
	Description  string
	Category     string
	Phone        string
	Email        string
	Website      string
	Latitude     *float64
	Longitude    *float64
	Address      string
	WorkingHours model.WorkingHoursList
	SocialMedia  model.SocialLinks
	Images       []string
}

type ShopService interface {
	CreateShop(userID uint, input ShopInput) (*model.Shop, error)
	GetShop(id uint, countView bool) (*model.Shop, error)
	ListShops(filter repository.ShopFilter) ([]model.Shop, error)
	ListShopsByUser(userID uint) ([]model.Shop, error)
	UpdateShop(id, userID uint, input ShopInput) (*model.Shop, error)
	DeleteShop(id, userID uint) error
	Follow(shopID, userID uint) error
	Unfollow(shopID, userID uint) error
	FollowStatus(shopID, userID uint) (bool, int64, error)
}

type shopService struct {
	shopRepo repository.ShopRepository
}

func NewShopService(shopRepo repository.ShopRepository) ShopService {
	return &shopService{shopRepo: shopRepo}
}

func (s *shopService) CreateShop(userID uint, input ShopInput) (*model.Shop, error) {
	shop := &model.Shop{
		UserID:       userID,
		ShopName:     input.ShopName,
		Description:  input.Description,
		Category:     input.Category,
		Phone:        input.Phone,
		Email:        input.Email,
		Website:      input.Website,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Address:      input.Address,
		WorkingHours: input.WorkingHours,
		SocialMedia:  input.SocialMedia,
		Status:       model.ShopStatusActive,
	}

	if err := s.shopRepo.Create(shop); err != nil {
		logger.Error("Failed to create shop", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(input.Images) > 0 {
		if err := s.shopRepo.ReplaceImages(shop.ID, buildShopImages(shop.ID, input.Images)); err != nil {
			logger.Error("Failed to save shop images", err, map[string]interface{}{
				"shop_id": shop.ID,
			})
			return nil, err
		}
		images, err := s.shopRepo.FindImages(shop.ID)
		if err != nil {
			return nil, err
		}
		shop.Images = images
	}

	logger.Info("Shop created", map[string]interface{}{
		"shop_id": shop.ID,
		"user_id": userID,
	})
	return shop, nil
}

// GetShop returns shop details. Every detail read counts as a view; there
// is no dedup by viewer or session.
func (s *shopService) GetShop(id uint, countView bool) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	if countView {
		if err := s.shopRepo.IncrementViews(id); err != nil {
			logger.Warn("Failed to increment shop views", map[string]interface{}{
				"shop_id": id,
				"error":   err.Error(),
			})
		} else {
			shop.Views++
		}
	}
	return shop, nil
}

func (s *shopService) ListShops(filter repository.ShopFilter) ([]model.Shop, error) {
	return s.shopRepo.FindAll(filter)
}

func (s *shopService) ListShopsByUser(userID uint) ([]model.Shop, error) {
	return s.shopRepo.FindByUserID(userID)
}

func (s *shopService) UpdateShop(id, userID uint, input ShopInput) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	if shop.UserID != userID {
		return nil, ErrShopNotOwned
	}

	if input.ShopName != "" {
		shop.ShopName = input.ShopName
	}
	if input.Description != "" {
		shop.Description = input.Description
	}
	if input.Category != "" {
		shop.Category = input.Category
	}
	if input.Phone != "" {
		shop.Phone = input.Phone
	}
	if input.Email != "" {
		shop.Email = input.Email
	}
	if input.Website != "" {
		shop.Website = input.Website
	}
	if input.Latitude != nil {
		shop.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		shop.Longitude = input.Longitude
	}
	if input.Address != "" {
		shop.Address = input.Address
	}
	if input.WorkingHours != nil {
		shop.WorkingHours = input.WorkingHours
	}
	if input.SocialMedia != nil {
		shop.SocialMedia = input.SocialMedia
	}

	if err := s.shopRepo.Update(shop); err != nil {
		return nil, err
	}

	if input.Images != nil {
		if err := s.shopRepo.ReplaceImages(shop.ID, buildShopImages(shop.ID, input.Images)); err != nil {
			return nil, err
		}
	}
	images, err := s.shopRepo.FindImages(shop.ID)
	if err != nil {
		return nil, err
	}
	shop.Images = images

	logger.Info("Shop updated", map[string]interface{}{
		"shop_id": shop.ID,
	})
	return shop, nil
}

func (s *shopService) DeleteShop(id, userID uint) error {
	shop, err := s.shopRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShopNotFound
		}
		return err
	}
	if shop.UserID != userID {
		return ErrShopNotOwned
	}
	if err := s.shopRepo.Delete(id); err != nil {
		return err
	}
	logger.Info("Shop deleted", map[string]interface{}{
		"shop_id": id,
	})
	return nil
}

// Follow creates the follow edge. Duplicate follows surface as a unique
// constraint violation from the composite index, classified here rather
// than pre-checked, so concurrent follows stay correct.
func (s *shopService) Follow(shopID, userID uint) error {
	if _, err := s.shopRepo.FindByID(shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShopNotFound
		}
		return err
	}
	if err := s.shopRepo.Follow(shopID, userID); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		return err
	}
	logger.Info("Shop followed", map[string]interface{}{
		"shop_id": shopID,
		"user_id": userID,
	})
	return nil
}

func (s *shopService) Unfollow(shopID, userID uint) error {
	if err := s.shopRepo.Unfollow(shopID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFollowing) {
			return ErrNotFollowing
		}
		return err
	}
	logger.Info("Shop unfollowed", map[string]interface{}{
		"shop_id": shopID,
		"user_id": userID,
	})
	return nil
}

func (s *shopService) FollowStatus(shopID, userID uint) (bool, int64, error) {
	following, err := s.shopRepo.IsFollowing(shopID, userID)
	if err != nil {
		return false, 0, err
	}
	count, err := s.shopRepo.CountFollowers(shopID)
	if err != nil {
		return false, 0, err
	}
	return following, count, nil
}

func buildShopImages(shopID uint, urls []string) []model.ShopImage {
	images := make([]model.ShopImage, 0, len(urls))
	for i, url := range urls {
		images = append(images, model.ShopImage{
			ShopID:    shopID,
			ImageURL:  url,
			SortOrder: i,
			IsPrimary: i == 0,
		})
	}
	return images
}
