package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Reader modes understood by Settings.Reader besides a device path.
const (
	ReaderNone  = "none"
	ReaderStdin = "stdin"
)

// Settings holds the process-level kiosk configuration read from the environment.
// The persisted base address and token live in the config file managed by
// svc/configstore; APIBaseURL here is only the default used when that file
// does not set one.
type Settings struct {
	Env         string        `env:"KIOSK_ENV" envDefault:"development"`
	LogLevel    string        `env:"KIOSK_LOG_LEVEL" envDefault:"info"`
	ConfigPath  string        `env:"KIOSK_CONFIG_PATH" envDefault:"nfc_config.json"`
	APIBaseURL  string        `env:"KIOSK_API_BASE_URL" envDefault:"http://localhost:8080"`
	HTTPTimeout time.Duration `env:"KIOSK_HTTP_TIMEOUT" envDefault:"10s"`
	Reader      string        `env:"KIOSK_READER" envDefault:"none"`
	DeviceID    string        `env:"KIOSK_DEVICE_ID" envDefault:"nfc-desk"`

	// ConfigKey is an optional base64-encoded 32-byte key sealing the stored token.
	ConfigKey string `env:"KIOSK_CONFIG_KEY"`
}

// LoadSettings loads ./.env when present and parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := LoadEnv(); err != nil {
		return s, err
	}
	if err := Load(&s); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks values env tags cannot express.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ConfigPath) == "" {
		errs = append(errs, errors.New("KIOSK_CONFIG_PATH must not be empty"))
	}
	if s.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("KIOSK_HTTP_TIMEOUT must be positive"))
	}
	if s.ConfigKey != "" {
		if _, err := s.SealingKey(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidSettings}, errs...)...)
	}
	return nil
}

// SealingKey decodes ConfigKey. A nil key with nil error means sealing is disabled.
func (s Settings) SealingKey() ([]byte, error) {
	if s.ConfigKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.ConfigKey)
	if err != nil {
		return nil, fmt.Errorf("KIOSK_CONFIG_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("KIOSK_CONFIG_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
