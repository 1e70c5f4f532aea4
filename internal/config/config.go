package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargeflow/libs/config"
)

// HTTPConfig holds the listen settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"CHARGEFLOW_HTTP_PORT"`
}

// BackendConfig points at the core REST API.
type BackendConfig struct {
	BaseURL string        `yaml:"baseUrl" env:"CHARGEFLOW_BACKEND_URL"`
	Timeout time.Duration `yaml:"timeout" env:"CHARGEFLOW_BACKEND_TIMEOUT"`
}

// AuthConfig holds the JWT guard settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret" env:"CHARGEFLOW_JWT_SECRET"`
}

// RedisConfig holds the session and handoff store settings.
type RedisConfig struct {
	Addr       string `yaml:"addr" env:"CHARGEFLOW_REDIS_ADDR"`
	Password   string `yaml:"password" env:"CHARGEFLOW_REDIS_PASSWORD"`
	DB         int    `yaml:"db" env:"CHARGEFLOW_REDIS_DB"`
	TTLSeconds int    `yaml:"ttlSeconds" env:"CHARGEFLOW_REDIS_TTL"`
}

// DatabaseConfig holds the local audit database settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"CHARGEFLOW_POSTGRES_DSN"`
}

// ChargingConfig holds the monitor parameters.
type ChargingConfig struct {
	PenaltyPerMin   float64       `yaml:"penaltyPerMin" env:"CHARGEFLOW_PENALTY_PER_MIN"`
	GraceSeconds    int           `yaml:"graceSeconds" env:"CHARGEFLOW_GRACE_SECONDS"`
	SpeedMultiplier float64       `yaml:"speedMultiplier" env:"CHARGEFLOW_SPEED_MULTIPLIER"`
	PollInterval    time.Duration `yaml:"pollInterval" env:"CHARGEFLOW_POLL_INTERVAL"`
	StreamInterval  time.Duration `yaml:"streamInterval" env:"CHARGEFLOW_STREAM_INTERVAL"`
}

// Config defines the gateway configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Charging ChargingConfig `yaml:"charging"`
}

// Load reads configuration via the shared helper and validates the pieces
// without safe defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:    HTTPConfig{Port: "8090"},
		Backend: BackendConfig{Timeout: 15 * time.Second},
		Redis:   RedisConfig{Addr: "localhost:6379", TTLSeconds: 7200},
		Charging: ChargingConfig{
			PenaltyPerMin:   1000,
			GraceSeconds:    300,
			SpeedMultiplier: 1,
			PollInterval:    5 * time.Second,
			StreamInterval:  time.Second,
		},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return nil, errors.New("config: backend base url required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if cfg.Charging.SpeedMultiplier <= 0 {
		return nil, errors.New("config: speed multiplier must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// HandoffTTL returns the redis entry lifetime as a duration.
func (c *Config) HandoffTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
