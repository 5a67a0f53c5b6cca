// Package config loads wimitasks settings from defaults, an optional config
// file and WIMI_-prefixed environment variables.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api" validate:"required"`
	Session SessionConfig `mapstructure:"session" validate:"required"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	UI      UIConfig      `mapstructure:"ui"`
}

// APIConfig points the client at the REST API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// SessionConfig selects where the logged-in identity is persisted.
type SessionConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=file redis memory"`
	Path    string `mapstructure:"path" validate:"required_if=Backend file"`
	Key     string `mapstructure:"key" validate:"required"`
}

// RedisConfig is used when the session backend is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// ServerConfig configures the mock API server.
type ServerConfig struct {
	Addr   string `mapstructure:"addr" validate:"required"`
	DBPath string `mapstructure:"db_path" validate:"required"`
	Seed   bool   `mapstructure:"seed"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// UIConfig holds front-end timings.
type UIConfig struct {
	NoticeTTL time.Duration `mapstructure:"notice_ttl" validate:"gte=0"`
	ListLimit int           `mapstructure:"list_limit" validate:"gte=0"`
}
