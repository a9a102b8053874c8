package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/internal/app/service"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
)

type AdController struct {
	adService service.AdService
}

func NewAdController(adService service.AdService) *AdController {
	return &AdController{adService: adService}
}

type CreateAdRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       *int64   `json:"price"`
	Condition   string   `json:"condition"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address"`
	ShopID      *uint    `json:"shop_id"`
	Images      []string `json:"images"`

	// UserID is honored only for unauthenticated requests. Kept for the
	// legacy mobile client that posts without a token.
	UserID *uint `json:"userId"`
}

type UpdateAdRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *int64   `json:"price"`
	Condition   string   `json:"condition"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address"`
	ShopID      *uint    `json:"shop_id"`
	Status      string   `json:"status"`
	Images      []string `json:"images"`
}

// adJSON is the wire shape of a listing. images is always an array,
// never null; the map client iterates it without a nil check.
func adJSON(ad *model.Ad) gin.H {
	return gin.H{
		"id":          ad.ID,
		"user_id":     ad.UserID,
		"shop_id":     ad.ShopID,
		"title":       ad.Title,
		"description": ad.Description,
		"price":       ad.Price,
		"condition":   ad.Condition,
		"latitude":    ad.Latitude,
		"longitude":   ad.Longitude,
		"address":     ad.Address,
		"status":      ad.Status,
		"views":       ad.Views,
		"images":      ad.ImageURLs(),
		"created_at":  ad.CreatedAt,
		"expires_at":  ad.ExpiresAt,
	}
}

func adListJSON(ads []model.Ad) []gin.H {
	out := make([]gin.H, 0, len(ads))
	for i := range ads {
		out = append(out, adJSON(&ads[i]))
	}
	return out
}

// parseBounds parses the "swLat,swLng,neLat,neLng" query format the map
// client sends
func parseBounds(raw string) (*repository.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, errors.New("bounds must have four comma-separated values")
	}
	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &repository.Bounds{
		SWLat: values[0],
		SWLng: values[1],
		NELat: values[2],
		NELng: values[3],
	}, nil
}

// List returns ads for the map and the profile pages. The filters are
// mutually exclusive by precedence: shop_id wins, then user_id, then
// bounds, then the general feed.
// GET /api/ads
func (ctrl *AdController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.AdFilter{
		Status: model.AdStatus(c.Query("status")),
	}

	if raw := c.Query("shop_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
			return
		}
		shopID := uint(id)
		filter.ShopID = &shopID
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه کاربر معتبر نیست")
			return
		}
		userID := uint(id)
		filter.UserID = &userID
	}
	if raw := c.Query("bounds"); raw != "" {
		bounds, err := parseBounds(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "محدوده نقشه معتبر نیست")
			return
		}
		filter.Bounds = bounds
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	ads, err := ctrl.adService.ListAds(filter)
	if err != nil {
		log.Error("Failed to list ads", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list ads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ads": adListJSON(ads),
	})
}

// Get returns one ad and counts the view
// GET /api/ads/:id
func (ctrl *AdController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه آگهی معتبر نیست")
		return
	}

	ad, err := ctrl.adService.GetAd(uint(id), true)
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) {
			apperrors.NotFound(c, apperrors.AdNotFound, "آگهی مورد نظر یافت نشد")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get ad")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ad": adJSON(ad),
	})
}

// Create posts a new ad. Auth is optional: with a valid token the poster
// is the token's user, otherwise the client-supplied userId is trusted
// as-is. TODO: drop the userId fallback once the legacy client is
// retired.
// POST /api/ads
func (ctrl *AdController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "عنوان آگهی الزامی است")
		return
	}

	userID, authenticated := middleware.GetUserID(c)
	if !authenticated {
		if req.UserID == nil {
			apperrors.Unauthorized(c, "")
			return
		}
		userID = *req.UserID
	}

	ad, err := ctrl.adService.CreateAd(userID, service.AdInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Condition:   model.AdCondition(req.Condition),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		ShopID:      req.ShopID,
		Images:      req.Images,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingLocation) {
			apperrors.BadRequest(c, apperrors.AdMissingLocation, "موقعیت آگهی روی نقشه الزامی است")
			return
		}
		log.Error("Failed to create ad", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create ad")
		return
	}

	log.Info("Ad created", map[string]interface{}{
		"ad_id":   ad.ID,
		"user_id": userID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"ad": adJSON(ad),
	})
}

// Update overwrites the provided fields of an owned ad
// PUT /api/ads/:id
func (ctrl *AdController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه آگهی معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات واردشده معتبر نیست")
		return
	}

	ad, err := ctrl.adService.UpdateAd(uint(id), userID, service.AdInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Condition:   model.AdCondition(req.Condition),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		ShopID:      req.ShopID,
		Status:      model.AdStatus(req.Status),
		Images:      req.Images,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			apperrors.NotFound(c, apperrors.AdNotFound, "آگهی مورد نظر یافت نشد")
		case errors.Is(err, service.ErrAdNotOwned):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthUnauthorized, "شما اجازه ویرایش این آگهی را ندارید")
		default:
			log.Error("Failed to update ad", err, map[string]interface{}{
				"ad_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update ad")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ad": adJSON(ad),
	})
}

// Delete removes an owned ad and its images
// DELETE /api/ads/:id
func (ctrl *AdController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه آگهی معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.adService.DeleteAd(uint(id), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			apperrors.NotFound(c, apperrors.AdNotFound, "آگهی مورد نظر یافت نشد")
		case errors.Is(err, service.ErrAdNotOwned):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthUnauthorized, "شما اجازه حذف این آگهی را ندارید")
		default:
			log.Error("Failed to delete ad", err, map[string]interface{}{
				"ad_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete ad")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "آگهی با موفقیت حذف شد",
	})
}
