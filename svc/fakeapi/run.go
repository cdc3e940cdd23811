package fakeapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/nfckiosk/pkg/logger"
)

var (
	// ErrStart indicates that the listener failed to start.
	ErrStart = errors.New("failed to start fake api")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown fake api gracefully")
)

// ServeConfig holds listener settings for ListenAndServe.
type ServeConfig struct {
	Addr            string        `env:"FAKEAPI_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"FAKEAPI_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"FAKEAPI_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"FAKEAPI_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ListenAndServe serves the router until ctx is canceled, then shuts the
// listener down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg ServeConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.InfoContext(ctx, "fake api listening", slog.String("addr", cfg.Addr))

	var runErr error
	select {
	case <-ctx.Done():
		shutdownTimeout := cfg.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown failed", logger.Error(err))
			return errors.Join(ErrShutdown, err)
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	s.logger.Info("fake api stopped")
	return nil
}
