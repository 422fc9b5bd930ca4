package app

import (
	"database/sql"
	"fmt"

	"employee-service/internal/config"
	"employee-service/internal/employee"
	"employee-service/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type infrastructure struct {
	gormDB      *gorm.DB
	sqlDB       *sql.DB
	redis       *redis.Client
	kafkaWriter *kafkago.Writer
}

// BuildApp connects the backing services, registers every route on router
// and returns a cleanup func closing the connections in reverse order.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	log := logger.Named("app")
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	closers = append(closers, func() { _ = sqlDB.Close() })

	if cfg.DB.AutoMigrate {
		if err := gormDB.AutoMigrate(&employee.Employee{}); err != nil {
			cleanup()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("employees schema migrated")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis, logger)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
	} else {
		log.Warn("REDIS_ADDR not set, idempotency guard disabled")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka, logger)
	if err != nil {
		cleanup()
		return nil, err
	}
	closers = append(closers, func() {
		if err := kafkaWriter.Close(); err != nil {
			log.Warn("close kafka writer failed", zap.Error(err))
		}
	})

	// 2. Register Modules & Routes
	if err := registerModules(router, cfg, infrastructure{
		gormDB:      gormDB,
		sqlDB:       sqlDB,
		redis:       rdb,
		kafkaWriter: kafkaWriter,
	}, logger); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
