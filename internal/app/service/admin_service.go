package service

import (
	"errors"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"github.com/smousavi/bazaarche-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

const minPasswordLength = 6

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalAds     int64 `json:"total_ads"`
	ActiveAds    int64 `json:"active_ads"`
	TotalShops   int64 `json:"total_shops"`
	TotalFollows int64 `json:"total_follows"`
}

type AdminService interface {
	GetStats() (*Stats, error)
	ListUsers() ([]model.User, error)
	DeleteUser(id uint) error
	UpdateProfile(userID uint, name, username, phone string) (*model.User, error)
	ChangePassword(userID uint, newPassword string) error
}

type adminService struct {
	userRepo repository.UserRepository
	adRepo   repository.AdRepository
	shopRepo repository.ShopRepository
}

func NewAdminService(userRepo repository.UserRepository, adRepo repository.AdRepository, shopRepo repository.ShopRepository) AdminService {
	return &adminService{
		userRepo: userRepo,
		adRepo:   adRepo,
		shopRepo: shopRepo,
	}
}

func (s *adminService) GetStats() (*Stats, error) {
	stats := &Stats{}

	var err error
	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalAds, err = s.adRepo.Count(); err != nil {
		return nil, err
	}
	if stats.ActiveAds, err = s.adRepo.CountByStatus(model.AdStatusActive); err != nil {
		return nil, err
	}
	if stats.TotalShops, err = s.shopRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalFollows, err = s.shopRepo.CountFollows(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *adminService) ListUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}

func (s *adminService) DeleteUser(id uint) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	logger.Info("User deleted by admin", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// UpdateProfile changes name, username and phone. Username and phone
// uniqueness is pre-checked against other accounts before the write, same
// as registration.
func (s *adminService) UpdateProfile(userID uint, name, username, phone string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if username != "" && username != user.Username {
		if other, err := s.userRepo.FindByUsername(username); err == nil && other.ID != userID {
			return nil, ErrUsernameAlreadyExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = username
	}
	if phone != "" && phone != user.Phone {
		if other, err := s.userRepo.FindByPhone(phone); err == nil && other.ID != userID {
			return nil, ErrPhoneAlreadyExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Phone = phone
	}
	if name != "" {
		user.Name = name
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return user, nil
}

// ChangePassword validates length before touching the database at all.
func (s *adminService) ChangePassword(userID uint, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return err
	}
	user.PasswordHash = hashed

	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
