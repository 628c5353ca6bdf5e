package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultBcryptCost    = 10
	defaultMoodleTimeout = 10
)

type Config struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	Auth struct {
		JWTSecret string `toml:"jwt_secret"`
		// RedisURL enables the logout revocation list when set
		RedisURL   string `toml:"redis_url"`
		BcryptCost int    `toml:"bcrypt_cost"`
	} `toml:"auth"`

	Moodle struct {
		BaseURL        string `toml:"base_url"`
		Token          string `toml:"token"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"moodle"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("server port is not specified in config, use a value like :8080")
	}
	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt_secret is not specified in config")
	}
	if config.Moodle.BaseURL == "" {
		return nil, fmt.Errorf("moodle base_url is not specified in config")
	}

	if config.Auth.BcryptCost == 0 {
		config.Auth.BcryptCost = defaultBcryptCost
	}
	if config.Moodle.TimeoutSeconds == 0 {
		config.Moodle.TimeoutSeconds = defaultMoodleTimeout
	}

	return &config, nil
}
