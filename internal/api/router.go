package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fares12358/erb-system-backend/internal/api/handlers"
	"github.com/fares12358/erb-system-backend/internal/api/middleware"
	"github.com/fares12358/erb-system-backend/internal/cache"
	"github.com/fares12358/erb-system-backend/internal/config"
	"github.com/fares12358/erb-system-backend/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers
	otpStore := cache.NewOTPStore(rdb, cfg.OtpTTL)
	userService := services.NewUserService(db, cfg, otpStore)
	invoiceService := services.NewInvoiceService(db, cfg)
	dashboardService := services.NewDashboardService(db)

	r := gin.Default()

	// Global middleware first (order matters)
	r.Use(middleware.CORSMiddleware(cfg.ClientURL))

	// The gate checks the subject still exists, so revoked accounts are
	// locked out even while their tokens are unexpired.
	authGate := middleware.AuthMiddleware(cfg.JwtSecret, userService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, taskClient, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	api := r.Group("/api")
	{
		// Auth routes are rate limited; everything else is gated by JWT
		// instead, so brute force pressure lands here.
		rateLimiter := middleware.NewRateLimiterMiddleware(cfg.RateLimitRefillRate, cfg.RateLimitBucketSize)
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit())
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/verify-otp", authHandler.VerifyOTP)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/forget-password", authHandler.ForgetPassword)
			authGroup.POST("/reset-password/:token", authHandler.ResetPassword)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", authGate, authHandler.Me)
		}

		invoiceGroup := api.Group("/invoices")
		invoiceGroup.Use(authGate)
		{
			invoiceGroup.POST("", invoiceHandler.Create)
			invoiceGroup.GET("", invoiceHandler.List)
			invoiceGroup.PUT("/:id", invoiceHandler.Update)
			invoiceGroup.DELETE("/:id", invoiceHandler.Delete)
		}

		dashboardGroup := api.Group("/dashboard")
		dashboardGroup.Use(authGate)
		{
			dashboardGroup.GET("", dashboardHandler.Overview)
			dashboardGroup.GET("/stats", dashboardHandler.Stats)
			dashboardGroup.GET("/charts", dashboardHandler.Charts)
			dashboardGroup.GET("/products", dashboardHandler.Products)
		}
	}

	return r
}
