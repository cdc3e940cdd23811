package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/nfckiosk"
	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/validator"
	"github.com/dmitrymomot/nfckiosk/svc/configstore"
)

// AuthenticatePath is the login exchange endpoint.
const AuthenticatePath = "/admin/authenticate"

// Store persists the configuration record after a credential change.
type Store interface {
	Save(ctx context.Context, rec configstore.Record) error
}

// Manager obtains and holds the bearer credential.
type Manager struct {
	state  *nfckiosk.State
	client *apiclient.Client
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager writing the credential into state.
// store may be nil, in which case changes are kept in memory only.
func NewManager(state *nfckiosk.State, client *apiclient.Client, store Store, opts ...Option) *Manager {
	m := &Manager{
		state:  state,
		client: client,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("auth"))
	return m
}

// SetToken accepts a manually entered token.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if err := validator.Apply(
		validator.Required("token", token),
		validator.NoControlChars("token", token),
	); err != nil {
		return fmt.Errorf("%w: %w", nfckiosk.ErrValidation, err)
	}

	m.apply(ctx, token, "manual")
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	JWT string `json:"jwt"`
}

// Login exchanges username and password for a token.
// Local validation failures and rejected credentials both wrap nfckiosk.ErrAuth.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := validator.Apply(
		validator.Required("username", username),
		validator.Required("password", password),
	); err != nil {
		return fmt.Errorf("%w: %w", nfckiosk.ErrAuth, err)
	}

	log := m.logger.With(logger.Operation("login"))

	resp, err := m.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   AuthenticatePath,
		Body:   loginRequest{Username: username, Password: password},
	})
	if err != nil {
		log.WarnContext(ctx, "login request failed", logger.Error(err))
		if apiclient.IsTransport(err) {
			return fmt.Errorf("%w: %w", nfckiosk.ErrNetwork, err)
		}
		return fmt.Errorf("%w: %w", nfckiosk.ErrAuth, err)
	}

	if !resp.Success() {
		log.WarnContext(ctx, "login rejected", logger.StatusCode(resp.StatusCode))
		return fmt.Errorf("%w: %w", nfckiosk.ErrAuth,
			nfckiosk.NewAPIError(resp.StatusCode, apiclient.ParseMessage(resp.Body).Text()))
	}

	var out loginResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return fmt.Errorf("%w: %w", nfckiosk.ErrMissingToken, err)
	}
	token := strings.TrimSpace(out.JWT)
	if token == "" {
		return nfckiosk.ErrMissingToken
	}

	m.apply(ctx, token, "login")
	return nil
}

// apply stores the credential and persists it. A persistence failure is
// logged and the in-memory credential is kept.
func (m *Manager) apply(ctx context.Context, token, source string) {
	m.state.SetCredential(nfckiosk.Credential(token))
	m.logger.InfoContext(ctx, "credential updated", slog.String("source", source))

	if claims, err := m.Claims(); err == nil && claims.Expired(m.now()) {
		m.logger.WarnContext(ctx, "credential is expired, the service will reject it",
			slog.Time("expires_at", claims.ExpiresAt))
	}

	if m.store == nil {
		return
	}
	rec := configstore.Record{Token: token}
	if m.client != nil {
		rec.BaseURL = m.client.BaseURL()
	}
	if err := m.store.Save(ctx, rec); err != nil {
		m.logger.WarnContext(ctx, "failed to persist credential", logger.Error(err))
	}
}

// Claims describes a JWT credential. Fields are zero when absent from the token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the current credential without verifying its signature.
// The service remains the authority; this is for display only.
// Returns ErrOpaqueToken when the credential is not a JWT.
func (m *Manager) Claims() (Claims, error) {
	token := m.state.Credential()
	if !token.IsSet() {
		return Claims{}, nfckiosk.ErrNoCredential
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(string(token), &rc); err != nil {
		return Claims{}, errors.Join(ErrOpaqueToken, err)
	}

	var c Claims
	c.Subject = rc.Subject
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
