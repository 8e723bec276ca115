// Package config holds the environment-backed configuration blocks shared
// by the binaries.
package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

// RedisConfig enables the shared rate limiter when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" default:""`
	Password string `env:"REDIS_PASSWORD" default:""`
	DB       int    `env:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// RetentionConfig drives the inactive-session sweeper.
type RetentionConfig struct {
	SessionMaxIdle time.Duration `env:"SESSION_MAX_IDLE" default:"720h"`
	GameMaxIdle    time.Duration `env:"GAME_SESSION_MAX_IDLE" default:"2h"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" default:"1h"`
	AdminKey       string        `env:"ADMIN_KEY" default:""`
}

// GatewayConfig selects the payment provider. An empty BaseURL uses the
// in-process sandbox.
type GatewayConfig struct {
	BaseURL string        `env:"GATEWAY_BASE_URL" default:""`
	APIKey  string        `env:"GATEWAY_API_KEY" default:""`
	Timeout time.Duration `env:"GATEWAY_TIMEOUT" default:"10s"`
}
