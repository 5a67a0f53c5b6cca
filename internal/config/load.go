package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. WIMI_API_BASE_URL.
const EnvPrefix = "WIMI"

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wimitasks")
	}
	return ".wimitasks"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3001")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("session.backend", "file")
	v.SetDefault("session.path", filepath.Join(DefaultDir(), "session.json"))
	v.SetDefault("session.key", "user")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.db_path", "data/wimitasks.db")
	v.SetDefault("server.seed", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("ui.notice_ttl", "3s")
	v.SetDefault("ui.list_limit", 5)
}

// Load reads configuration. An explicit file path must exist; otherwise
// wimitasks.yaml is looked up in the default directory and may be absent.
// Environment variables take precedence over file values.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("wimitasks")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
