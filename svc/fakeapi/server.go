package fakeapi

import (
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultTokenTTL = 8 * time.Hour
	tokenIssuer     = "nfckiosk-fakeapi"
)

// Server is an in-memory stand-in for the attendance service.
type Server struct {
	store      *store
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithUser registers login credentials.
func WithUser(username, password string) Option {
	return func(s *Server) {
		s.store.users[username] = password
	}
}

// WithCard registers a card. UIDs are matched case-insensitively.
func WithCard(uid, subscriber string, active bool) Option {
	return func(s *Server) {
		uid = strings.ToUpper(strings.TrimSpace(uid))
		s.store.cards[uid] = Card{UID: uid, Subscriber: subscriber, Active: active}
	}
}

// WithSigningKey sets the HS256 key for issued tokens.
func WithSigningKey(key []byte) Option {
	return func(s *Server) {
		if len(key) > 0 {
			s.signingKey = key
		}
	}
}

func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.tokenTTL = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server. Without WithSigningKey a fixed development key is used.
func New(opts ...Option) *Server {
	s := &Server{
		store:      newStore(),
		signingKey: []byte("nfckiosk-development-signing-key"),
		tokenTTL:   DefaultTokenTTL,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns all sessions ordered by id.
func (s *Server) Sessions() []Session {
	return s.store.listSessions()
}
