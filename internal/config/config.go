package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		App          App
		HTTP         HTTP
		DB           DB
		Redis        Redis
		Kafka        Kafka
		Notification Notification
		Cache        Cache
		RateLimit    RateLimit
	}

	App struct {
		Name string `env:"APP_NAME" envDefault:"employee-service"`
		Env  string `env:"APP_ENV" envDefault:"development"`
	}

	HTTP struct {
		Port            string        `env:"PORT" envDefault:"3000"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}

	DB struct {
		Host        string `env:"DB_HOST,required,notEmpty"`
		User        string `env:"DB_USER,required,notEmpty"`
		Password    string `env:"DB_PASSWORD"`
		Name        string `env:"DB_NAME,required,notEmpty"`
		Port        string `env:"DB_PORT" envDefault:"5432"`
		SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
		MaxRetries  int    `env:"DB_MAX_RETRIES" envDefault:"5"`
		AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	}

	// Redis backs the idempotency guard only; empty Addr disables it.
	Redis struct {
		Addr       string `env:"REDIS_ADDR"`
		MaxRetries int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	}

	Kafka struct {
		Brokers    []string `env:"KAFKA_BROKERS,required,notEmpty" envSeparator:","`
		MaxRetries int      `env:"KAFKA_MAX_RETRIES" envDefault:"5"`
	}

	Notification struct {
		Topic         string `env:"NOTIFICATION_TOPIC" envDefault:"notifications.email"`
		Recipient     string `env:"NOTIFICATION_RECIPIENT,required,notEmpty"`
		Subject       string `env:"NOTIFICATION_SUBJECT" envDefault:"Employee Created Successfully"`
		SourceService string `env:"NOTIFICATION_SOURCE_SERVICE" envDefault:"employee-service"`
	}

	// TTL 0 keeps entries until the next write.
	Cache struct {
		TTL time.Duration `env:"CACHE_TTL" envDefault:"0s"`
	}

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
		Burst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
