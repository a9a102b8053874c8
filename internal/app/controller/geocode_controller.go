package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
	"github.com/smousavi/bazaarche-backend/pkg/geocode"
)

type GeocodeController struct {
	client *geocode.Client
}

func NewGeocodeController(client *geocode.Client) *GeocodeController {
	return &GeocodeController{client: client}
}

type ForwardGeocodeRequest struct {
	Query string `json:"query" binding:"required"`
}

// Reverse resolves coordinates to a short Persian address. Upstream
// failures degrade to a coordinate placeholder instead of an error, so
// ad posting never blocks on Nominatim.
// GET /api/geocode?lat=&lng=
func (ctrl *GeocodeController) Reverse(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "مختصات معتبر نیست")
		return
	}

	result, err := ctrl.client.Reverse(lat, lng)
	if err != nil {
		log.Warn("Reverse geocode failed, using fallback", map[string]interface{}{
			"lat":   lat,
			"lng":   lng,
			"error": err.Error(),
		})
		c.JSON(http.StatusOK, gin.H{
			"address": geocode.FallbackAddress(lat, lng),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": geocode.FormatAddress(result),
	})
}

// Forward resolves a free-text query to coordinate candidates
// GET /api/forward-geocode?q=  |  POST /api/forward-geocode {query}
func (ctrl *GeocodeController) Forward(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")
	if query == "" && c.Request.Method == http.MethodPost {
		var req ForwardGeocodeRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			query = req.Query
		}
	}
	if query == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "عبارت جستجو الزامی است")
		return
	}

	results, err := ctrl.client.Search(query)
	if err != nil {
		log.Warn("Forward geocode failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		c.JSON(http.StatusOK, gin.H{
			"results": []gin.H{},
		})
		return
	}

	out := make([]gin.H, 0, len(results))
	for i := range results {
		lat, lng, err := results[i].Coordinates()
		if err != nil {
			continue
		}
		out = append(out, gin.H{
			"display_name": results[i].DisplayName,
			"address":      geocode.FormatAddress(&results[i]),
			"latitude":     lat,
			"longitude":    lng,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"results": out,
	})
}
