// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// MongoURI is the MongoDB connection string.
	MongoURI string `mapstructure:"MONGO_URI"`
	// MongoDatabase is the database holding back-office collections.
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim; required.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim; required.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// AccessTokenTTL is the access token lifetime (e.g. "15m").
	AccessTokenTTL string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token lifetime (e.g. "168h").
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// RevocationSweepInterval is how often expired revocation entries are swept.
	RevocationSweepInterval string `mapstructure:"REVOCATION_SWEEP_INTERVAL"`
	// SuspiciousWindow is the trailing window for denial-rate anomaly detection.
	SuspiciousWindow string `mapstructure:"SUSPICIOUS_WINDOW"`
	// SuspiciousThreshold is the denial count at which activity is flagged.
	SuspiciousThreshold int `mapstructure:"SUSPICIOUS_THRESHOLD"`
	// AuditRetention is how long audit entries are kept (e.g. "2160h" = 90d).
	AuditRetention string `mapstructure:"AUDIT_RETENTION"`
	// AuditSweepInterval is how often the retention sweep runs.
	AuditSweepInterval string `mapstructure:"AUDIT_SWEEP_INTERVAL"`
	// LogLevel is the zerolog level (e.g. "info", "debug").
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "backoffice")
	v.SetDefault("JWT_ISSUER", "accesscore")
	v.SetDefault("JWT_AUDIENCE", "backoffice-api")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7d
	v.SetDefault("REVOCATION_SWEEP_INTERVAL", "30m")
	v.SetDefault("SUSPICIOUS_WINDOW", "10m")
	v.SetDefault("SUSPICIOUS_THRESHOLD", 5)
	v.SetDefault("AUDIT_RETENTION", "2160h") // 90d
	v.SetDefault("AUDIT_SWEEP_INTERVAL", "1h")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.MongoURI == "" {
		return nil, errors.New("config: MONGO_URI must be set")
	}
	if cfg.SuspiciousThreshold <= 0 {
		cfg.SuspiciousThreshold = 5
	}

	return &cfg, nil
}

// AccessTTL parses AccessTokenTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return c.duration(c.AccessTokenTTL, 15*time.Minute)
}

// RefreshTTL parses RefreshTokenTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return c.duration(c.RefreshTokenTTL, 168*time.Hour)
}

// SweepInterval parses RevocationSweepInterval. Returns 30m if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	return c.duration(c.RevocationSweepInterval, 30*time.Minute)
}

// SuspiciousActivityWindow parses SuspiciousWindow. Returns 10m if unset or invalid.
func (c *Config) SuspiciousActivityWindow() time.Duration {
	return c.duration(c.SuspiciousWindow, 10*time.Minute)
}

// AuditRetentionWindow parses AuditRetention. Returns 2160h if unset or invalid.
func (c *Config) AuditRetentionWindow() time.Duration {
	return c.duration(c.AuditRetention, 2160*time.Hour)
}

// AuditRetentionSweepInterval parses AuditSweepInterval. Returns 1h if unset or invalid.
func (c *Config) AuditRetentionSweepInterval() time.Duration {
	return c.duration(c.AuditSweepInterval, time.Hour)
}

func (c *Config) duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
