package service

import (
	"errors"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAdNotFound      = errors.New("ad not found")
	ErrAdNotOwned      = errors.New("ad does not belong to user")
	ErrMissingLocation = errors.New("ad requires latitude and longitude")
)

// AdInput carries the writable fields of a listing. Pointer fields on
// update mean "leave unchanged" when nil.
type AdInput struct {
	Title       string
	Description string
	Price       *int64
	Condition   model.AdCondition
	Latitude    *float64
	Longitude   *float64
	Address     string
	ShopID      *uint
	Status      model.AdStatus
	Images      []string
}

type AdService interface {
	CreateAd(userID uint, input AdInput) (*model.Ad, error)
	GetAd(id uint, countView bool) (*model.Ad, error)
	ListAds(filter repository.AdFilter) ([]model.Ad, error)
	UpdateAd(id, userID uint, input AdInput) (*model.Ad, error)
	DeleteAd(id, userID uint) error
}

type adService struct {
	adRepo   repository.AdRepository
	shopRepo repository.ShopRepository
}

func NewAdService(adRepo repository.AdRepository, shopRepo repository.ShopRepository) AdService {
	return &adService{adRepo: adRepo, shopRepo: shopRepo}
}

// resolveShopID keeps shop attribution honest: a shop_id pointing at a
// shop the poster does not own is silently dropped and the ad goes out
// as a personal listing. The client is not told.
func (s *adService) resolveShopID(userID uint, shopID *uint) *uint {
	if shopID == nil {
		return nil
	}
	shop, err := s.shopRepo.FindByID(*shopID)
	if err != nil {
		logger.Warn("Ad references unknown shop, posting as personal ad", map[string]interface{}{
			"shop_id": *shopID,
			"user_id": userID,
		})
		return nil
	}
	if shop.UserID != userID {
		logger.Warn("Ad references shop owned by another user, posting as personal ad", map[string]interface{}{
			"shop_id":  *shopID,
			"user_id":  userID,
			"owner_id": shop.UserID,
		})
		return nil
	}
	return shopID
}

func (s *adService) CreateAd(userID uint, input AdInput) (*model.Ad, error) {
	if input.Latitude == nil || input.Longitude == nil {
		return nil, ErrMissingLocation
	}

	ad := &model.Ad{
		UserID:      userID,
		ShopID:      s.resolveShopID(userID, input.ShopID),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Condition:   input.Condition,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		Address:     input.Address,
	}

	if err := s.adRepo.Create(ad); err != nil {
		logger.Error("Failed to create ad", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(input.Images) > 0 {
		if err := s.adRepo.ReplaceImages(ad.ID, buildAdImages(ad.ID, input.Images)); err != nil {
			logger.Error("Failed to save ad images", err, map[string]interface{}{
				"ad_id": ad.ID,
			})
			return nil, err
		}
		images, err := s.adRepo.FindImages(ad.ID)
		if err != nil {
			return nil, err
		}
		ad.Images = images
	}

	logger.Info("Ad created", map[string]interface{}{
		"ad_id":   ad.ID,
		"user_id": userID,
	})
	return ad, nil
}

func (s *adService) GetAd(id uint, countView bool) (*model.Ad, error) {
	ad, err := s.adRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	if countView {
		if err := s.adRepo.IncrementViews(id); err != nil {
			logger.Warn("Failed to increment ad views", map[string]interface{}{
				"ad_id": id,
				"error": err.Error(),
			})
		} else {
			ad.Views++
		}
	}
	return ad, nil
}

func (s *adService) ListAds(filter repository.AdFilter) ([]model.Ad, error) {
	return s.adRepo.FindAll(filter)
}

func (s *adService) UpdateAd(id, userID uint, input AdInput) (*model.Ad, error) {
	ad, err := s.adRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	if ad.UserID != userID {
		return nil, ErrAdNotOwned
	}

	if input.Title != "" {
		ad.Title = input.Title
	}
	if input.Description != "" {
		ad.Description = input.Description
	}
	if input.Price != nil {
		ad.Price = input.Price
	}
	if input.Condition != "" {
		ad.Condition = input.Condition
	}
	if input.Latitude != nil {
		ad.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		ad.Longitude = *input.Longitude
	}
	if input.Address != "" {
		ad.Address = input.Address
	}
	if input.Status != "" {
		ad.Status = input.Status
	}
	if input.ShopID != nil {
		ad.ShopID = s.resolveShopID(userID, input.ShopID)
	}

	if err := s.adRepo.Update(ad); err != nil {
		return nil, err
	}

	if input.Images != nil {
		if err := s.adRepo.ReplaceImages(ad.ID, buildAdImages(ad.ID, input.Images)); err != nil {
			return nil, err
		}
	}
	images, err := s.adRepo.FindImages(ad.ID)
	if err != nil {
		return nil, err
	}
	ad.Images = images

	logger.Info("Ad updated", map[string]interface{}{
		"ad_id": ad.ID,
	})
	return ad, nil
}

func (s *adService) DeleteAd(id, userID uint) error {
	ad, err := s.adRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdNotFound
		}
		return err
	}
	if ad.UserID != userID {
		return ErrAdNotOwned
	}
	if err := s.adRepo.Delete(id); err != nil {
		return err
	}
	logger.Info("Ad deleted", map[string]interface{}{
		"ad_id": id,
	})
	return nil
}

// buildAdImages marks the first image primary, matching how the map UI
// picks a thumbnail.
func buildAdImages(adID uint, urls []string) []model.AdImage {
	images := make([]model.AdImage, 0, len(urls))
	for i, url := range urls {
		images = append(images, model.AdImage{
			AdID:      adID,
			ImageURL:  url,
			SortOrder: i,
			IsPrimary: i == 0,
		})
	}
	return images
}
