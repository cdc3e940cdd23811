// Package config loads the kiosk's process configuration from environment
// variables, optionally seeded from .env files.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// LoadEnv populates the environment from files, Load parses it into any struct
// with `env` tags, and Settings describes the variables the kiosk understands:
//
//	KIOSK_ENV           development | production (log format and level defaults)
//	KIOSK_LOG_LEVEL     debug | info | warn | error
//	KIOSK_CONFIG_PATH   persisted config file (.json, .yaml or .yml)
//	KIOSK_API_BASE_URL  default service base address
//	KIOSK_HTTP_TIMEOUT  transport timeout for every request, e.g. 10s
//	KIOSK_READER        none | stdin | path of a keyboard-wedge device
//	KIOSK_DEVICE_ID     device identifier, also the token sealing salt
//	KIOSK_CONFIG_KEY    optional base64 32-byte key sealing the stored token
//
// # Usage
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    log.Fatalf("loading settings: %v", err)
//	}
//
// # Error Handling
//
// Sentinel errors can be compared with errors.Is:
//
//   - ErrParsingConfig   – env vars could not be parsed into the struct.
//   - ErrLoadingEnvFile  – an explicitly requested .env file failed to load.
//   - ErrInvalidSettings – Settings failed validation.
package config
