package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/service"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
	"github.com/smousavi/bazaarche-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
	tokenExpiry time.Duration
}

func NewAuthController(authService service.AuthService, tokenExpiry time.Duration) *AuthController {
	return &AuthController{
		authService: authService,
		tokenExpiry: tokenExpiry,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// setTokenCookie mirrors the token into an httpOnly cookie so browser
// clients stay logged in without storing the JWT themselves
func (ctrl *AuthController) setTokenCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.TokenCookieName, token, int(ctrl.tokenExpiry.Seconds()), "/", "", false, true)
}

func userJSON(user *model.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"phone":      user.Phone,
		"username":   user.Username,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}

// Register handles user registration
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست. رمز عبور باید حداقل ۶ کاراکتر باشد")
		return
	}

	if !util.IsValidMobile(req.Phone) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidPhone, "شماره موبایل معتبر نیست. شماره باید با ۰۹ شروع شود و ۱۱ رقم باشد")
		return
	}

	user, token, err := ctrl.authService.Register(req.Name, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneAlreadyExists):
			log.Warn("Registration failed: phone already exists", map[string]interface{}{
				"phone": req.Phone,
			})
			apperrors.Conflict(c, apperrors.AuthPhoneExists, "این شماره موبایل قبلاً ثبت شده است")
		case errors.Is(err, service.ErrUsernameAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "این نام کاربری قبلاً استفاده شده است")
		default:
			log.Error("Registration failed", err, map[string]interface{}{
				"phone": req.Phone,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		}
		return
	}

	ctrl.setTokenCookie(c, token)

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userJSON(user),
	})
}

// Login handles username/password login. The username is normally the
// phone number unless the user changed it on the profile page.
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "نام کاربری و رمز عبور الزامی است")
		return
	}

	user, token, err := ctrl.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed", map[string]interface{}{
				"username": req.Username,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "نام کاربری یا رمز عبور اشتباه است")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"username": req.Username,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login user")
		return
	}

	ctrl.setTokenCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userJSON(user),
	})
}

// Logout clears the auth cookie. The JWT itself stays valid until it
// expires; there is no server-side revocation list.
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "با موفقیت خارج شدید",
	})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "کاربر مورد نظر یافت نشد")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userJSON(user),
	})
}
