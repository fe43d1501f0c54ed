package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	JWTRefreshSecret string
	DefaultDuePeriod time.Duration
	EventClaimTTL    time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LINGUA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Lingua API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("fanout.default_due_period", "168h")
	v.SetDefault("fanout.event_claim_ttl", "24h")

	duePeriod, err := time.ParseDuration(v.GetString("fanout.default_due_period"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid default due period: %w", err)
	}

	claimTTL, err := time.ParseDuration(v.GetString("fanout.event_claim_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid event claim ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),
		DefaultDuePeriod: duePeriod,
		EventClaimTTL:    claimTTL,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.DefaultDuePeriod <= 0 {
		cfg.DefaultDuePeriod = 7 * 24 * time.Hour
	}

	if cfg.EventClaimTTL <= 0 {
		cfg.EventClaimTTL = 24 * time.Hour
	}

	return cfg, nil
}
