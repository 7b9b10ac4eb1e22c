package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cookingHandler "eat-backend/internal/api/handlers/cooking"
	"eat-backend/internal/api/handlers/health"
	inventoryHandler "eat-backend/internal/api/handlers/inventory"
	"eat-backend/internal/api/middleware"
	"eat-backend/internal/core/ai"
	"eat-backend/internal/core/ai/cache"
	"eat-backend/internal/core/cooking"
	"eat-backend/internal/infrastructure/config"
	"eat-backend/internal/pkg/common"
	"eat-backend/internal/storage"
)

// request body cap (1MB): all payloads are small JSON
const maxBodySize = 1 << 20

// SetupRouter wires middleware, services and routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, cacheSvc *cache.Service) *gin.Engine {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	inventoryRepo := storage.NewInventoryRepository(db)
	historyRepo := storage.NewHistoryRepository(db)

	aiSvc := ai.NewService(cfg, cacheSvc)
	matcher := cooking.NewMatcher(aiSvc)
	cookingSvc := cooking.NewService(inventoryRepo, historyRepo, cfg.Cooking.UndoWindow)
	invHandler := inventoryHandler.NewHandler(inventoryRepo)

	router.GET("/health", health.HealthCheck(cfg.App.Version))
	router.GET("/health/ready", health.ReadinessCheck(db))
	router.GET("/health/live", health.LivenessCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(cfg.Auth.JWTSecret))
	{
		cookingGroup := v1.Group("/cooking")
		{
			cookingGroup.POST("/prepare", cookingHandler.HandlePrepare(matcher))
			cookingGroup.POST("/log", cookingHandler.HandleLog(cookingSvc))
			cookingGroup.POST("/undo", cookingHandler.HandleUndo(cookingSvc))
			cookingGroup.GET("/history", cookingHandler.HandleHistory(cookingSvc))
		}

		inventoryGroup := v1.Group("/inventory")
		{
			inventoryGroup.GET("", invHandler.List)
			inventoryGroup.POST("", invHandler.Create)
			inventoryGroup.PATCH("/:id/quantity", invHandler.AdjustQuantity)
			inventoryGroup.DELETE("/:id", invHandler.Delete)
		}
	}

	common.LogInfo("router setup completed")

	return router
}
