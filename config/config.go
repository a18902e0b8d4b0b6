// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string   `env:"DATABASE_URL,required,notEmpty"`
	ListenAddr    string   `env:"LISTEN_ADDR" envDefault:":5200"`
	ServiceToken  string   `env:"TRACKER_SERVICE_TOKEN"`
	AllowedOrigin []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	BodyLimit     int      `env:"BODY_LIMIT_BYTES" envDefault:"4194304"`

	Snapshot Snapshot `envPrefix:"SNAPSHOT_"`
}

// Snapshot configures the periodic campaign archive. A zero Interval turns
// it off; an empty R2 bucket falls back to LocalDir.
type Snapshot struct {
	Interval    time.Duration `env:"INTERVAL" envDefault:"0s"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"4"`
	LocalDir    string        `env:"LOCAL_DIR" envDefault:"./snapshots"`

	R2 R2 `envPrefix:"R2_"`
}

type R2 struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	BucketName      string `env:"BUCKET_NAME"`
	Prefix          string `env:"PREFIX" envDefault:"campaigns/"`
}

func (r R2) Enabled() bool { return r.BucketName != "" }

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for i, o := range c.AllowedOrigin {
		c.AllowedOrigin[i] = strings.TrimSpace(o)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("BODY_LIMIT_BYTES must be positive")
	}
	if c.Snapshot.Interval < 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must not be negative")
	}
	if c.Snapshot.Concurrency < 1 {
		return fmt.Errorf("SNAPSHOT_CONCURRENCY must be at least 1")
	}
	if r := c.Snapshot.R2; r.Enabled() && (r.AccountID == "" || r.AccessKeyID == "" || r.AccessKeySecret == "") {
		return fmt.Errorf("SNAPSHOT_R2_BUCKET_NAME requires account id and access keys")
	}
	return nil
}

// Origins is the CORS allow list in fiber's comma form.
func (c *Config) Origins() string {
	return strings.Join(c.AllowedOrigin, ",")
}
