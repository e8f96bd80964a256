package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrNotionKeyMissing = errors.New("notion API key is not configured")
	ErrPasswordMissing  = errors.New("login password is not configured")
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Notion  NotionConfig  `mapstructure:"notion"`
	IMDB    IMDBConfig    `mapstructure:"imdb"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Password      string `mapstructure:"password"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	SessionMaxAge int    `mapstructure:"session_max_age"` // seconds
}

// NotionConfig holds Notion API configuration.
type NotionConfig struct {
	APIKey      string   `mapstructure:"api_key"`
	BaseURL     string   `mapstructure:"base_url"`
	Version     string   `mapstructure:"version"`
	Timeout     int      `mapstructure:"timeout"` // seconds
	DatabaseIDs []string `mapstructure:"database_ids"`
}

// IMDBConfig holds IMDb search API configuration.
type IMDBConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Timeout     int    `mapstructure:"timeout"` // seconds
	SearchLimit int    `mapstructure:"search_limit"`
}

// CacheConfig holds existing-pages cache configuration.
type CacheConfig struct {
	StaleMinutes   int `mapstructure:"stale_minutes"`
	RefreshMinutes int `mapstructure:"refresh_minutes"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.watchdeck")
	}

	v.SetEnvPrefix("WATCHDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")

	v.SetDefault("auth.password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_max_age", 7*24*60*60)

	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.base_url", "https://api.notion.com/v1")
	v.SetDefault("notion.version", "2022-06-28")
	v.SetDefault("notion.timeout", 30)
	v.SetDefault("notion.database_ids", []string{})

	v.SetDefault("imdb.base_url", "https://api.imdbapi.dev")
	v.SetDefault("imdb.timeout", 10)
	v.SetDefault("imdb.search_limit", 10)

	v.SetDefault("cache.stale_minutes", 5)
	v.SetDefault("cache.refresh_minutes", 5)
}

// Validate checks that the required secrets are present. Missing values are a
// configuration error, never a silent default.
func (c *Config) Validate() error {
	if c.Notion.APIKey == "" {
		return ErrNotionKeyMissing
	}
	if c.Auth.Password == "" {
		return ErrPasswordMissing
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
