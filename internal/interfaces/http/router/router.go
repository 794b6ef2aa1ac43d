package router

import (
	"github.com/b2bportal/backend/internal/infrastructure/config"
	"github.com/b2bportal/backend/internal/infrastructure/logger"
	"github.com/b2bportal/backend/internal/interfaces/http/handler"
	"github.com/b2bportal/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Pricing *handler.PricingHandler
	Orders  *handler.OrderHandler
	System  *handler.SystemHandler
}

// New builds the gin engine with all middleware and routes registered.
func New(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", h.System.Health)

	api := engine.Group("/api/v1")
	{
		api.POST("/suppliers/:supplier/feed", h.Catalog.UploadFeed)
		api.POST("/pricing/resolve", h.Pricing.ResolvePrice)
		api.POST("/orders", h.Orders.PlaceOrder)
		api.GET("/orders/:id", h.Orders.GetOrder)

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(cfg.JWT), middleware.RequireAdmin())
		{
			admin.DELETE("/cache/master-data", h.System.InvalidateMasterDataCache)
		}
	}

	return engine
}
