package controller

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
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

type ShopController struct {
	shopService service.ShopService
}

func NewShopController(shopService service.ShopService) *ShopController {
	return &ShopController{shopService: shopService}
}

type ShopRequest struct {
	ShopName     string                 `json:"shop_name" form:"shop_name"`
	Description  string                 `json:"description" form:"description"`
	Category     string                 `json:"category" form:"category"`
	Phone        string                 `json:"phone" form:"phone"`
	Email        string                 `json:"email" form:"email"`
	Website      string                 `json:"website" form:"website"`
	Latitude     *float64               `json:"latitude" form:"latitude"`
	Longitude    *float64               `json:"longitude" form:"longitude"`
	Address      string                 `json:"address" form:"address"`
	WorkingHours model.WorkingHoursList `json:"working_hours" form:"-"`
	SocialMedia  model.SocialLinks      `json:"social_media" form:"-"`
	Images       []string               `json:"images" form:"-"`
}

func shopJSON(shop *model.Shop) gin.H {
	return gin.H{
		"id":            shop.ID,
		"user_id":       shop.UserID,
		"shop_name":     shop.ShopName,
		"description":   shop.Description,
		"category":      shop.Category,
		"phone":         shop.Phone,
		"email":         shop.Email,
		"website":       shop.Website,
		"latitude":      shop.Latitude,
		"longitude":     shop.Longitude,
		"address":       shop.Address,
		"working_hours": shop.WorkingHours,
		"social_media":  shop.SocialMedia,
		"status":        shop.Status,
		"is_verified":   shop.IsVerified,
		"views":         shop.Views,
		"rating":        shop.Rating,
		"review_count":  shop.ReviewCount,
		"images":        shop.ImageURLs(),
		"created_at":    shop.CreatedAt,
	}
}

func shopListJSON(shops []model.Shop) []gin.H {
	out := make([]gin.H, 0, len(shops))
	for i := range shops {
		out = append(out, shopJSON(&shops[i]))
	}
	return out
}

// fileToDataURL reads an uploaded image fully into memory and encodes it
// as a base64 data URL. Images are stored inline in the database, not on
// disk or object storage.
func fileToDataURL(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// bindShopRequest accepts both the web client's multipart form (files
// plus JSON-encoded working_hours/social_media fields) and plain JSON
// with pre-encoded data URLs.
func bindShopRequest(c *gin.Context) (*ShopRequest, error) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req ShopRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	var req ShopRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, err
	}

	if raw := c.PostForm("working_hours"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.WorkingHours); err != nil {
			return nil, fmt.Errorf("invalid working_hours: %w", err)
		}
	}
	if raw := c.PostForm("social_media"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.SocialMedia); err != nil {
			return nil, fmt.Errorf("invalid social_media: %w", err)
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	for _, header := range form.File["images"] {
		dataURL, err := fileToDataURL(header)
		if err != nil {
			return nil, err
		}
		req.Images = append(req.Images, dataURL)
	}

	return &req, nil
}

// List returns shops for the directory page
// GET /api/shops
func (ctrl *ShopController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ShopFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Status:   model.ShopStatus(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	shops, err := ctrl.shopService.ListShops(filter)
	if err != nil {
		log.Error("Failed to list shops", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list shops")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops": shopListJSON(shops),
	})
}

// Get returns one shop and counts the view. Repeat visits count again;
// the number is a popularity signal, not unique reach.
// GET /api/shops/:id
func (ctrl *ShopController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	shop, err := ctrl.shopService.GetShop(uint(id), true)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			apperrors.NotFound(c, apperrors.ShopNotFound, "فروشگاه مورد نظر یافت نشد")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get shop")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop": shopJSON(shop),
	})
}

// Images returns just the shop's image data URLs, without counting a view
// GET /api/shops/:id/images
func (ctrl *ShopController) Images(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	shop, err := ctrl.shopService.GetShop(uint(id), false)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			apperrors.NotFound(c, apperrors.ShopNotFound, "فروشگاه مورد نظر یافت نشد")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get shop images")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": shop.ImageURLs(),
	})
}

// MyShops returns the authenticated user's shops
// GET /api/my-shops
func (ctrl *ShopController) MyShops(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	shops, err := ctrl.shopService.ListShopsByUser(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list shops")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops": shopListJSON(shops),
	})
}

// Create opens a storefront for the authenticated user
// POST /api/shops
func (ctrl *ShopController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	req, err := bindShopRequest(c)
	if err != nil {
		log.Warn("Invalid shop request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات فروشگاه معتبر نیست")
		return
	}
	if req.ShopName == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "نام فروشگاه الزامی است")
		return
	}

	shop, err := ctrl.shopService.CreateShop(userID, service.ShopInput{
		ShopName:     req.ShopName,
		Description:  req.Description,
		Category:     req.Category,
		Phone:        req.Phone,
		Email:        req.Email,
		Website:      req.Website,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		WorkingHours: req.WorkingHours,
		SocialMedia:  req.SocialMedia,
		Images:       req.Images,
	})
	if err != nil {
		log.Error("Failed to create shop", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create shop")
		return
	}

	log.Info("Shop created", map[string]interface{}{
		"shop_id": shop.ID,
		"user_id": userID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"shop": shopJSON(shop),
	})
}

// Update edits an owned shop
// PUT /api/shops/:id
func (ctrl *ShopController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	req, err := bindShopRequest(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "اطلاعات فروشگاه معتبر نیست")
		return
	}

	shop, err := ctrl.shopService.UpdateShop(uint(id), userID, service.ShopInput{
		ShopName:     req.ShopName,
		Description:  req.Description,
		Category:     req.Category,
		Phone:        req.Phone,
		Email:        req.Email,
		Website:      req.Website,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		WorkingHours: req.WorkingHours,
		SocialMedia:  req.SocialMedia,
		Images:       req.Images,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShopNotFound):
			apperrors.NotFound(c, apperrors.ShopNotFound, "فروشگاه مورد نظر یافت نشد")
		case errors.Is(err, service.ErrShopNotOwned):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthUnauthorized, "شما اجازه ویرایش این فروشگاه را ندارید")
		default:
			log.Error("Failed to update shop", err, map[string]interface{}{
				"shop_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update shop")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop": shopJSON(shop),
	})
}

// Delete removes an owned shop with its images and follow edges
// DELETE /api/shops/:id
func (ctrl *ShopController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.shopService.DeleteShop(uint(id), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrShopNotFound):
			apperrors.NotFound(c, apperrors.ShopNotFound, "فروشگاه مورد نظر یافت نشد")
		case errors.Is(err, service.ErrShopNotOwned):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthUnauthorized, "شما اجازه حذف این فروشگاه را ندارید")
		default:
			log.Error("Failed to delete shop", err, map[string]interface{}{
				"shop_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete shop")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "فروشگاه با موفقیت حذف شد",
	})
}

// Follow subscribes the authenticated user to a shop. Following twice
// is an error.
// POST /api/shops/:id/follow
func (ctrl *ShopController) Follow(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.shopService.Follow(uint(id), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrShopNotFound):
			apperrors.NotFound(c, apperrors.ShopNotFound, "فروشگاه مورد نظر یافت نشد")
		case errors.Is(err, service.ErrAlreadyFollowing):
			apperrors.Conflict(c, apperrors.ShopAlreadyFollowing, "شما قبلاً این فروشگاه را دنبال کرده‌اید")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "follow shop")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "فروشگاه دنبال شد",
	})
}

// Unfollow removes the follow edge
// DELETE /api/shops/:id/follow
func (ctrl *ShopController) Unfollow(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.shopService.Unfollow(uint(id), userID); err != nil {
		if errors.Is(err, service.ErrNotFollowing) {
			apperrors.BadRequest(c, apperrors.ShopNotFollowing, "شما این فروشگاه را دنبال نکرده‌اید")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "unfollow shop")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "دنبال کردن فروشگاه لغو شد",
	})
}

// FollowStatus reports whether the caller follows the shop plus the
// total follower count
// GET /api/shops/:id/follow-status
func (ctrl *ShopController) FollowStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "شناسه فروشگاه معتبر نیست")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	following, count, err := ctrl.shopService.FollowStatus(uint(id), userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "follow status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following":      following,
		"follower_count": count,
	})
}
