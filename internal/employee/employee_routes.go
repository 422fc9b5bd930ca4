package employee

import (
	"employee-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

type RouteConfig struct {
	ReadRPS   rate.Limit
	ReadBurst int
	// nil disables the idempotency guard on create
	Redis  *redis.Client
	Logger *zap.Logger
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, cfg RouteConfig) {
	employees := r.Group("/employees")
	employees.Use(middleware.ContextLogger(cfg.Logger))
	{
		employees.GET("",
			middleware.RateLimitByIP(cfg.ReadRPS, cfg.ReadBurst),
			handler.GetAll,
		)

		employees.GET("/pagination",
			middleware.RateLimitByIP(cfg.ReadRPS, cfg.ReadBurst),
			handler.GetPage,
		)

		employees.GET("/:id",
			middleware.RateLimitByIP(cfg.ReadRPS, cfg.ReadBurst),
			handler.GetByID,
		)

		create := []gin.HandlerFunc{middleware.RateLimitByIP(1, 5)}
		if cfg.Redis != nil {
			create = append(create, middleware.Idempotency(cfg.Redis, cfg.Logger))
		}
		employees.POST("", append(create, handler.Create)...)

		employees.PUT("/:id",
			middleware.RateLimitByIP(2, 5),
			handler.Update,
		)
	}
}
