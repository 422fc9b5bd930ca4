package app

import (
	"net/http"

	"employee-service/internal/config"
	"employee-service/internal/employee"
	"employee-service/internal/messaging/kafka/producer"
	"employee-service/internal/notification"
	"employee-service/internal/shared/apperror"
	"employee-service/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	infra infrastructure,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(infra.gormDB)

	// --- Notification ---
	renderer, err := notification.NewHTMLRenderer()
	if err != nil {
		return err
	}
	publisher := producer.NewPublisher(infra.kafkaWriter, logger)
	notifier := employee.NewNotifier(renderer, publisher, employee.NotifierConfig{
		Topic:         cfg.Notification.Topic,
		Recipient:     cfg.Notification.Recipient,
		Subject:       cfg.Notification.Subject,
		SourceService: cfg.Notification.SourceService,
	}, logger)

	// --- Services ---
	employeeCache := employee.NewCache(
		employee.WithTTL(cfg.Cache.TTL),
		employee.WithCacheLogger(logger),
	)
	employeeService := employee.NewService(infra.sqlDB, employeeRepo, employeeCache, notifier, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, employee.RouteConfig{
			ReadRPS:   rate.Limit(cfg.RateLimit.RPS),
			ReadBurst: cfg.RateLimit.Burst,
			Redis:     infra.redis,
			Logger:    logger,
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := infra.sqlDB.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	return nil
}
