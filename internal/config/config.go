// Package config provides configuration management for the devcenter backend.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (DEVCENTER_* with underscores for nesting)
// 3. Default values
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig   `mapstructure:"server"`
	Backends    BackendsConfig `mapstructure:"backends"`
	OAuth       OAuthConfig    `mapstructure:"oauth"`
	Payment     PaymentConfig  `mapstructure:"payment"`
	Canvas      CanvasConfig   `mapstructure:"canvas"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Log         LogConfig      `mapstructure:"log"`
	Worker      WorkerConfig   `mapstructure:"worker"`
	Environment string         `mapstructure:"environment"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BackendsConfig contains the base URLs of the external collaborators and the
// shared per-request timeout applied to every outbound call.
type BackendsConfig struct {
	DatastoreURL   string        `mapstructure:"datastore_url"`
	GraphURL       string        `mapstructure:"graph_url"`
	AuthURL        string        `mapstructure:"auth_url"`
	TrackingURL    string        `mapstructure:"tracking_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// OAuthConfig contains the credentials the service uses to obtain its own
// application-level token from the auth backend.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// PaymentConfig contains payment-gateway settings.
type PaymentConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	SecretKey  string `mapstructure:"secret_key"`
	Plan       string `mapstructure:"plan"`
}

// CanvasConfig points at the canvas application that serves embedded games.
type CanvasConfig struct {
	AppURL string `mapstructure:"app_url"`
}

// CacheConfig contains cache-store settings for the public listing memo.
type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	ListingTTL    time.Duration `mapstructure:"listing_ttl"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// WorkerConfig contains worker pool sizing.
type WorkerConfig struct {
	GraphPoolSize int `mapstructure:"graph_pool_size"`
}

// IsProduction reports whether the service runs in production. Test-mode
// subscriptions are never honored there.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from file, environment and defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/devcenter")

	v.SetEnvPrefix("DEVCENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Backends
	v.SetDefault("backends.datastore_url", "http://datastore-backend.dev")
	v.SetDefault("backends.graph_url", "http://graph-backend.dev")
	v.SetDefault("backends.auth_url", "http://auth-backend.dev")
	v.SetDefault("backends.tracking_url", "http://tracking-backend.dev")
	v.SetDefault("backends.request_timeout", "10s")

	// Payment
	v.SetDefault("payment.gateway_url", "https://api.stripe.com")
	v.SetDefault("payment.plan", "friendbarus-default")

	// Canvas
	v.SetDefault("canvas.app_url", "http://canvas-app.dev")

	// Cache (in-process fallback unless a redis address is configured)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.listing_ttl", "5m")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Worker
	v.SetDefault("worker.graph_pool_size", 20)

	v.SetDefault("environment", "development")
}
