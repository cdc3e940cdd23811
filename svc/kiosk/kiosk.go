package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/nfckiosk"
	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/requestid"
	"github.com/dmitrymomot/nfckiosk/svc/auth"
	"github.com/dmitrymomot/nfckiosk/svc/configstore"
	"github.com/dmitrymomot/nfckiosk/svc/scan"
	"github.com/dmitrymomot/nfckiosk/svc/session"
)

// Kiosk wires the components around one application context and turns every
// operator intent into a Status.
type Kiosk struct {
	state    *nfckiosk.State
	client   *apiclient.Client
	store    *configstore.Store
	auth     *auth.Manager
	sessions *session.Controller
	scans    *scan.Processor
	logger   *slog.Logger
	last     Status
}

type options struct {
	reader        scan.UIDReader
	logger        *slog.Logger
	clientOptions []apiclient.Option
}

// Option configures a Kiosk.
type Option func(*options)

// WithReader sets the NFC hardware used by scans without an explicit UID.
func WithReader(r scan.UIDReader) Option {
	return func(o *options) { o.reader = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClientOptions passes options to the service client.
func WithClientOptions(opts ...apiclient.Option) Option {
	return func(o *options) { o.clientOptions = append(o.clientOptions, opts...) }
}

// Open loads the persisted configuration from store and builds the kiosk.
// An unreadable or corrupt file and an unusable stored base address fall back
// to the store defaults. A sealed token that cannot be opened is fatal, and the
// file is left as it is.
func Open(ctx context.Context, store *configstore.Store, opts ...Option) (*Kiosk, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	rec, err := store.Load(ctx)
	switch {
	case errors.Is(err, configstore.ErrReadConfig), errors.Is(err, configstore.ErrDecodeConfig):
		o.logger.WarnContext(ctx, "config file unusable, using defaults",
			slog.String("path", store.Path()),
			logger.Error(err),
		)
		rec = store.Defaults()
	case err != nil:
		return nil, err
	}

	clientOpts := append([]apiclient.Option{apiclient.WithLogger(o.logger)}, o.clientOptions...)
	client, err := apiclient.New(rec.BaseURL, clientOpts...)
	if err != nil {
		o.logger.WarnContext(ctx, "stored base url unusable, using default",
			slog.String("base_url", rec.BaseURL),
			logger.Error(err),
		)
		client, err = apiclient.New(store.Defaults().BaseURL, clientOpts...)
		if err != nil {
			return nil, err
		}
	}

	state := nfckiosk.NewState()
	if rec.Token != "" {
		state.SetCredential(nfckiosk.Credential(rec.Token))
	}

	k := &Kiosk{
		state:    state,
		client:   client,
		store:    store,
		auth:     auth.NewManager(state, client, store, auth.WithLogger(o.logger)),
		sessions: session.NewController(state, client, session.WithLogger(o.logger)),
		scans:    scan.NewProcessor(state, client, scan.WithReader(o.reader), scan.WithLogger(o.logger)),
		logger:   o.logger.With(logger.Component("kiosk")),
		last:     info("Idle"),
	}

	k.logger.InfoContext(ctx, "kiosk ready",
		slog.String("base_url", client.BaseURL()),
		slog.Bool("has_token", state.Credential().IsSet()),
	)
	return k, nil
}

// LastStatus returns the status produced by the most recent operation.
func (k *Kiosk) LastStatus() Status {
	return k.last
}

// Session returns the held session, or nil when idle.
func (k *Kiosk) Session() *nfckiosk.Session {
	return k.sessions.Current()
}

// BaseURL returns the service address in use.
func (k *Kiosk) BaseURL() string {
	return k.client.BaseURL()
}

// SetToken stores a manually entered token.
func (k *Kiosk) SetToken(ctx context.Context, token string) Status {
	ctx = k.begin(ctx, "set_token")
	if err := k.auth.SetToken(ctx, token); err != nil {
		return k.finish(ctx, failure("", err))
	}
	return k.finish(ctx, info("JWT Token set successfully."))
}

// Login exchanges credentials for a token.
func (k *Kiosk) Login(ctx context.Context, username, password string) Status {
	ctx = k.begin(ctx, "login")
	if err := k.auth.Login(ctx, username, password); err != nil {
		return k.finish(ctx, failure("Login failed", err))
	}
	return k.finish(ctx, info("Device authenticated"))
}

// StartSession opens a session named purpose.
func (k *Kiosk) StartSession(ctx context.Context, purpose string) Status {
	ctx = k.begin(ctx, "start")
	sess, err := k.sessions.Start(ctx, purpose)
	if err != nil {
		return k.finish(ctx, failure("Error starting session", err))
	}
	return k.finish(ctx, info("Session '%s' started.", sess.Purpose))
}

// EndSession closes the held session.
func (k *Kiosk) EndSession(ctx context.Context) Status {
	ctx = k.begin(ctx, "end")
	ended, err := k.sessions.End(ctx)
	switch {
	case err != nil:
		return k.finish(ctx, failure("Error ending session", err))
	case ended == nil:
		return k.finish(ctx, info("No active session to end."))
	default:
		return k.finish(ctx, info("Session '%s' ended.", ended.Purpose))
	}
}

// Scan submits uid, or reads one from the reader when uid is empty.
func (k *Kiosk) Scan(ctx context.Context, uid string) Status {
	ctx = k.begin(ctx, "scan")
	out, err := k.scans.Submit(ctx, uid)
	if err != nil {
		return k.finish(ctx, failure("Scan failed", err))
	}
	return k.finish(ctx, info("Scan success: %s", out.Message))
}

// SetBaseURL switches the service address and persists it.
func (k *Kiosk) SetBaseURL(ctx context.Context, raw string) Status {
	ctx = k.begin(ctx, "set_base_url")
	raw = strings.TrimSpace(raw)
	if err := k.client.SetBaseURL(raw); err != nil {
		return k.finish(ctx, failure("", fmt.Errorf("%w: %w", nfckiosk.ErrValidation, err)))
	}

	rec := configstore.Record{BaseURL: k.client.BaseURL(), Token: string(k.state.Credential())}
	if err := k.store.Save(ctx, rec); err != nil {
		k.logger.WarnContext(ctx, "failed to persist base url", logger.Error(err))
	}
	return k.finish(ctx, info("API base URL set to %s", k.client.BaseURL()))
}

// Describe summarizes the kiosk state without contacting the service.
func (k *Kiosk) Describe() Status {
	var parts []string

	if sess := k.sessions.Current(); sess != nil {
		parts = append(parts, "Active session: "+sess.String())
	} else {
		parts = append(parts, "No active session")
	}

	switch claims, err := k.auth.Claims(); {
	case errors.Is(err, nfckiosk.ErrNoCredential):
		parts = append(parts, "token not set")
	case err != nil:
		parts = append(parts, "token set")
	default:
		parts = append(parts, describeClaims(claims))
	}

	parts = append(parts, "API "+k.client.BaseURL())
	return info("%s", strings.Join(parts, " | "))
}

func describeClaims(c auth.Claims) string {
	s := "token set"
	if c.Subject != "" {
		s += " for " + c.Subject
	}
	if !c.ExpiresAt.IsZero() {
		if c.Expired(time.Now()) {
			s += ", expired " + c.ExpiresAt.Format(time.RFC3339)
		} else {
			s += ", expires " + c.ExpiresAt.Format(time.RFC3339)
		}
	}
	return s
}

// begin tags ctx with a fresh request id so every log line of one operation
// can be correlated with the service's.
func (k *Kiosk) begin(ctx context.Context, op string) context.Context {
	ctx = requestid.WithContext(ctx, requestid.New())
	k.logger.DebugContext(ctx, "operation started", logger.Operation(op))
	return ctx
}

func (k *Kiosk) finish(ctx context.Context, st Status) Status {
	k.last = st
	if st.IsError() {
		k.logger.InfoContext(ctx, "operation failed",
			slog.String("status", st.Message),
			slog.String("kind", string(nfckiosk.Kind(st.Err))),
		)
	}
	return st
}
