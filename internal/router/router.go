package router

import (
	"github.com/gin-gonic/gin"
	"github.com/smousavi/bazaarche-backend/config"
	"github.com/smousavi/bazaarche-backend/internal/app/controller"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	adController      *controller.AdController
	shopController    *controller.ShopController
	adminController   *controller.AdminController
	chatController    *controller.ChatController
	geocodeController *controller.GeocodeController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	adController *controller.AdController,
	shopController *controller.ShopController,
	adminController *controller.AdminController,
	chatController *controller.ChatController,
	geocodeController *controller.GeocodeController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		adController:      adController,
		shopController:    shopController,
		adminController:   adminController,
		chatController:    chatController,
		geocodeController: geocodeController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Bazaarche API is running",
		})
	})

	// Legacy on-disk shop images; new uploads are stored inline
	router.GET("/uploads/shops/*filepath", r.uploadController.ServeShopFile)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		ads := api.Group("/ads")
		{
			ads.GET("", r.adController.List)
			ads.GET("/:id", r.adController.Get)
			// optional auth: an unauthenticated post falls back to the
			// client-supplied userId
			ads.POST("", r.authMiddleware.OptionalAuthenticate(), r.adController.Create)
			ads.PUT("/:id", r.authMiddleware.Authenticate(), r.adController.Update)
			ads.DELETE("/:id", r.authMiddleware.Authenticate(), r.adController.Delete)
		}

		shops := api.Group("/shops")
		{
			shops.GET("", r.shopController.List)
			shops.GET("/:id", r.shopController.Get)
			shops.GET("/:id/images", r.shopController.Images)
			shops.POST("", r.authMiddleware.Authenticate(), r.shopController.Create)
			shops.PUT("/:id", r.authMiddleware.Authenticate(), r.shopController.Update)
			shops.DELETE("/:id", r.authMiddleware.Authenticate(), r.shopController.Delete)

			shops.POST("/:id/follow", r.authMiddleware.Authenticate(), r.shopController.Follow)
			shops.DELETE("/:id/follow", r.authMiddleware.Authenticate(), r.shopController.Unfollow)
			shops.GET("/:id/follow-status", r.authMiddleware.Authenticate(), r.shopController.FollowStatus)
		}

		api.GET("/my-shops", r.authMiddleware.Authenticate(), r.shopController.MyShops)

		chat := api.Group("/chat", r.authMiddleware.Authenticate())
		{
			chat.POST("/rooms", r.chatController.OpenRoom)
			chat.GET("/rooms", r.chatController.ListRooms)
			chat.GET("/rooms/:id/messages", r.chatController.GetMessages)
			chat.POST("/rooms/:id/messages", r.chatController.SendMessage)
			chat.GET("/ws", r.chatController.WebSocketHandler)
		}

		api.GET("/geocode", r.geocodeController.Reverse)
		api.GET("/forward-geocode", r.geocodeController.Forward)
		api.POST("/forward-geocode", r.geocodeController.Forward)

		// TODO: add a RequireRole("admin") middleware here; the admin
		// panel currently relies on the frontend hiding these routes
		admin := api.Group("/admin", r.authMiddleware.Authenticate())
		{
			admin.GET("/stats", r.adminController.Stats)
			admin.GET("/users", r.adminController.ListUsers)
			admin.GET("/users/export", r.adminController.ExportUsers)
			admin.DELETE("/users/:id", r.adminController.DeleteUser)
			admin.PUT("/update-profile", r.adminController.UpdateProfile)
			admin.PUT("/change-password", r.adminController.ChangePassword)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
