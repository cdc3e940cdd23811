// Command fakeapi runs an in-memory attendance service for kiosk development.
//
// Users and cards are seeded from the environment:
//
//	FAKEAPI_USERS=admin:admin,desk:secret
//	FAKEAPI_CARDS=04A1B2C3:alice,DEADBEEF:bob:inactive
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrymomot/nfckiosk/pkg/config"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/requestid"
	"github.com/dmitrymomot/nfckiosk/svc/fakeapi"
)

type settings struct {
	Env        string        `env:"FAKEAPI_ENV" envDefault:"development"`
	Users      []string      `env:"FAKEAPI_USERS" envDefault:"admin:admin" envSeparator:","`
	Cards      []string      `env:"FAKEAPI_CARDS" envDefault:"04A1B2C3:alice" envSeparator:","`
	SigningKey string        `env:"FAKEAPI_SIGNING_KEY"`
	TokenTTL   time.Duration `env:"FAKEAPI_TOKEN_TTL" envDefault:"8h"`

	Serve fakeapi.ServeConfig
}

func main() {
	config.MustLoadEnv()

	var cfg settings
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "fakeapi"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	opts, err := seedOptions(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts = append(opts,
		fakeapi.WithTokenTTL(cfg.TokenTTL),
		fakeapi.WithLogger(log),
	)
	if cfg.SigningKey != "" {
		opts = append(opts, fakeapi.WithSigningKey([]byte(cfg.SigningKey)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fakeapi.New(opts...).ListenAndServe(ctx, cfg.Serve); err != nil {
		log.Error("fake api failed", logger.Error(err))
		os.Exit(1)
	}
}

// seedOptions parses "user:password" and "uid:subscriber[:inactive]" entries.
func seedOptions(cfg settings) ([]fakeapi.Option, error) {
	var opts []fakeapi.Option
	for _, entry := range cfg.Users {
		user, password, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || user == "" {
			return nil, fmt.Errorf("invalid FAKEAPI_USERS entry %q, want user:password", entry)
		}
		opts = append(opts, fakeapi.WithUser(user, password))
	}
	for _, entry := range cfg.Cards {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid FAKEAPI_CARDS entry %q, want uid:subscriber[:inactive]", entry)
		}
		active := len(parts) == 2 || parts[2] != "inactive"
		opts = append(opts, fakeapi.WithCard(parts[0], parts[1], active))
	}
	return opts, nil
}
