package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/anoncasino/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"15s"`
	AppName         string        `env:"APP_NAME" default:"Anon Casino"`
	AppEnv          string        `env:"APP_ENV" default:"production"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" default:""`

	Postgres  config.PostgresConfig
	Redis     config.RedisConfig
	Retention config.RetentionConfig
	Gateway   config.GatewayConfig
}

func (c *apiConfig) development() bool {
	return c.AppEnv == "development" || c.AppEnv == "DEV"
}
