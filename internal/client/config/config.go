package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the portal client.
//
// StorageSecret, when set, seals the persisted session at rest. TicketSecret
// signs verification tickets; when empty a random per-device secret is used.
type Config struct {
	DatabaseDSN   string        `env:"PORTAL_DATABASE_DSN" validate:"required"`
	StorageSecret string        `env:"PORTAL_STORAGE_SECRET"`
	TicketSecret  string        `env:"PORTAL_TICKET_SECRET"`
	TicketTTL     time.Duration `env:"PORTAL_TICKET_TTL" validate:"gt=0"`
	OTPTTL        time.Duration `env:"PORTAL_OTP_TTL" validate:"gt=0"`
	OTPDelay      time.Duration `env:"PORTAL_OTP_DELAY" validate:"gte=0"`
	FeatureDelay  time.Duration `env:"PORTAL_FEATURE_DELAY" validate:"gte=0"`
	DemoOTP       bool          `env:"PORTAL_DEMO_OTP"`
	DownloadDir   string        `env:"PORTAL_DOWNLOAD_DIR" validate:"required"`
	LogLevel      string        `env:"PORTAL_LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat     string        `env:"PORTAL_LOG_FORMAT" validate:"oneof=text json"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "citizenportal.db"
	c.TicketTTL = 10 * time.Minute
	c.OTPTTL = 5 * time.Minute
	c.OTPDelay = time.Second
	c.FeatureDelay = 2 * time.Second
	c.DemoOTP = true
	c.DownloadDir = "downloads"
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the JSON file named in args, the
// environment and args, in that order, and validates the result. args are
// the command-line arguments without the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
