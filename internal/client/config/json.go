package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/citizenportal/internal/flagx"
	"github.com/dmitrijs2005/citizenportal/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from the zero value so a file only overrides what it names.
type JsonConfig struct {
	DatabaseDSN   *string         `json:"database_dsn"`
	StorageSecret *string         `json:"storage_secret"`
	TicketSecret  *string         `json:"ticket_secret"`
	TicketTTL     *timex.Duration `json:"ticket_ttl"`
	OTPTTL        *timex.Duration `json:"otp_ttl"`
	OTPDelay      *timex.Duration `json:"otp_delay"`
	FeatureDelay  *timex.Duration `json:"feature_delay"`
	DemoOTP       *bool           `json:"demo_otp"`
	DownloadDir   *string         `json:"download_dir"`
	LogLevel      *string         `json:"log_level"`
	LogFormat     *string         `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c/-config. Without either
// flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.StorageSecret, jc.StorageSecret)
	setString(&cfg.TicketSecret, jc.TicketSecret)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	if jc.TicketTTL != nil {
		cfg.TicketTTL = jc.TicketTTL.Duration
	}
	if jc.OTPTTL != nil {
		cfg.OTPTTL = jc.OTPTTL.Duration
	}
	if jc.OTPDelay != nil {
		cfg.OTPDelay = jc.OTPDelay.Duration
	}
	if jc.FeatureDelay != nil {
		cfg.FeatureDelay = jc.FeatureDelay.Duration
	}
	if jc.DemoOTP != nil {
		cfg.DemoOTP = *jc.DemoOTP
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
