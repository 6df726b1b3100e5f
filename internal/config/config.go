package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type CommonConfig struct {
	LogLevel string `env:"COMMON_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"./data/pizzaflow.db"`
}

type CatalogConfig struct {
	StoresPath string `env:"CATALOG_STORES_PATH" envDefault:"./data/stores.json"`
	MenuPath   string `env:"CATALOG_MENU_PATH" envDefault:"./data/menu.json"`
}

// RedisConfig is optional: an empty Addr disables the catalog cache entirely.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	CacheTTL int    `env:"REDIS_CACHE_TTL_SECONDS" envDefault:"300"`
}

type Config struct {
	Common  CommonConfig
	HTTP    HTTPConfig
	SQLite  SQLiteConfig
	Catalog CatalogConfig
	Redis   RedisConfig
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.Catalog.StoresPath == "" || cfg.Catalog.MenuPath == "" {
		return Config{}, fmt.Errorf("config: catalog paths must not be empty")
	}
	return cfg, nil
}
