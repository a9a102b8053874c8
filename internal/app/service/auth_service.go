package service

import (
	"errors"
	"time"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
	"github.com/smousavi/bazaarche-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrPhoneAlreadyExists    = errors.New("phone already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserNotFound          = errors.New("user not found")
)

type AuthService interface {
	Register(name, phone, password string) (*model.User, string, error)
	Login(username, password string) (*model.User, string, error)
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenExpiry time.Duration) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
	}
}

// Register creates an account. The username defaults to the phone number.
// Uniqueness of both phone and username is pre-checked here so clients get
// a friendly conflict message; the unique indexes remain the backstop for
// concurrent registrations.
func (s *authService) Register(name, phone, password string) (*model.User, string, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"phone": phone,
	})

	if _, err := s.userRepo.FindByPhone(phone); err == nil {
		logger.Warn("Registration failed: phone already exists", map[string]interface{}{
			"phone": phone,
		})
		return nil, "", ErrPhoneAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	username := phone
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, "", ErrUsernameAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Phone:        phone,
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"phone":   phone,
	})
	return user, token, nil
}

func (s *authService) Login(username, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"username": username,
			})
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
