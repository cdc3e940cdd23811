package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/nfckiosk"
	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/validator"
)

const (
	// SessionsPath is the collection endpoint for attendance sessions.
	SessionsPath = "/entity/sessions"

	// MaxPurposeLength bounds the session name sent to the service.
	MaxPurposeLength = 255
)

// Controller owns the current session and its start and end transitions.
type Controller struct {
	state  *nfckiosk.State
	client *apiclient.Client
	fsm    *machine
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

type startData struct {
	purpose string
	created *nfckiosk.Session
}

type endData struct {
	session nfckiosk.Session
}

// NewController creates a Controller over state. A session already held in
// state puts the controller in StateActive.
func NewController(state *nfckiosk.State, client *apiclient.Client, opts ...Option) *Controller {
	c := &Controller{
		state:  state,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("session"))

	initial := StateIdle
	if state.HasSession() {
		initial = StateActive
	}
	c.fsm = newMachine(initial)
	c.fsm.add(StateIdle, StateActive, EventStart,
		[]guard{c.requireCredential, validPurpose},
		[]action{c.createRemote, c.commitStart},
	)
	c.fsm.add(StateActive, StateIdle, EventEnd,
		[]guard{c.requireCredential},
		[]action{c.endRemote, c.commitEnd},
	)
	return c
}

// State returns the controller state.
func (c *Controller) State() State {
	return c.fsm.state()
}

// Current returns a copy of the held session, or nil when idle.
func (c *Controller) Current() *nfckiosk.Session {
	return c.state.Session()
}

// Start opens a session named purpose at the service and holds it.
// On any failure the controller stays idle and nothing is stored.
func (c *Controller) Start(ctx context.Context, purpose string) (nfckiosk.Session, error) {
	data := &startData{purpose: NormalizePurpose(purpose)}

	if err := c.fsm.fire(ctx, EventStart, data); err != nil {
		if errors.Is(err, errNoTransition) {
			return nfckiosk.Session{}, nfckiosk.ErrSessionActive
		}
		return nfckiosk.Session{}, err
	}
	return *data.created, nil
}

// End closes the held session at the service. When no session is held it
// sends nothing and returns nil, nil. On failure the session stays held.
func (c *Controller) End(ctx context.Context) (*nfckiosk.Session, error) {
	current := c.state.Session()
	if current == nil || c.fsm.state() != StateActive {
		c.logger.InfoContext(ctx, "no active session to end")
		return nil, nil
	}

	if err := c.fsm.fire(ctx, EventEnd, &endData{session: *current}); err != nil {
		return nil, err
	}
	return current, nil
}

// NormalizePurpose trims the purpose and converts it to Unicode NFC.
func NormalizePurpose(p string) string {
	return norm.NFC.String(strings.TrimSpace(p))
}

func (c *Controller) requireCredential(_ context.Context, _ any) error {
	if !c.state.Credential().IsSet() {
		return nfckiosk.ErrNoCredential
	}
	return nil
}

func validPurpose(_ context.Context, data any) error {
	d := data.(*startData)
	if err := validator.Apply(
		validator.Required("purpose", d.purpose),
		validator.MaxLen("purpose", d.purpose, MaxPurposeLength),
		validator.NoControlChars("purpose", d.purpose),
	); err != nil {
		return fmt.Errorf("%w: %w", nfckiosk.ErrValidation, err)
	}
	return nil
}

type createRequest struct {
	Name string `json:"name"`
}

type createResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Controller) createRemote(ctx context.Context, data any) error {
	d := data.(*startData)
	log := c.logger.With(logger.Operation("start"), logger.Purpose(d.purpose))

	resp, err := c.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   SessionsPath,
		Body:   createRequest{Name: d.purpose},
		Token:  string(c.state.Credential()),
	})
	if err != nil {
		log.WarnContext(ctx, "start session request failed", logger.Error(err))
		return requestError(err)
	}
	if !resp.Success() {
		log.WarnContext(ctx, "start session rejected", logger.StatusCode(resp.StatusCode))
		return nfckiosk.NewAPIError(resp.StatusCode, apiclient.ParseMessage(resp.Body).Text())
	}

	var out createResponse
	if err := resp.DecodeJSON(&out); err != nil {
		log.WarnContext(ctx, "start session response unreadable", logger.Error(err))
		return fmt.Errorf("%w: %w", nfckiosk.ErrInvalidResponse, err)
	}
	if out.ID <= 0 {
		log.WarnContext(ctx, "start session response has no id", logger.StatusCode(resp.StatusCode))
		return fmt.Errorf("%w: missing session id", nfckiosk.ErrInvalidResponse)
	}

	name := strings.TrimSpace(out.Name)
	if name == "" {
		name = d.purpose
	}
	d.created = &nfckiosk.Session{ID: out.ID, Purpose: name}
	return nil
}

func (c *Controller) commitStart(ctx context.Context, data any) error {
	d := data.(*startData)
	c.state.SetSession(*d.created)
	c.logger.InfoContext(ctx, "session started",
		logger.SessionID(d.created.ID),
		logger.Purpose(d.created.Purpose),
	)
	return nil
}

func (c *Controller) endRemote(ctx context.Context, data any) error {
	d := data.(*endData)
	log := c.logger.With(logger.Operation("end"), logger.SessionID(d.session.ID))

	resp, err := c.client.Do(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   SessionsPath + "/" + strconv.FormatInt(d.session.ID, 10) + "/end",
		Token:  string(c.state.Credential()),
	})
	if err != nil {
		log.WarnContext(ctx, "end session request failed", logger.Error(err))
		return requestError(err)
	}
	if !resp.Success() {
		log.WarnContext(ctx, "end session rejected", logger.StatusCode(resp.StatusCode))
		return nfckiosk.NewAPIError(resp.StatusCode, apiclient.ParseMessage(resp.Body).Text())
	}
	return nil
}

func (c *Controller) commitEnd(ctx context.Context, data any) error {
	d := data.(*endData)
	c.state.ClearSession()
	c.logger.InfoContext(ctx, "session ended",
		logger.SessionID(d.session.ID),
		logger.Purpose(d.session.Purpose),
	)
	return nil
}

func requestError(err error) error {
	if apiclient.IsTransport(err) {
		return fmt.Errorf("%w: %w", nfckiosk.ErrNetwork, err)
	}
	return fmt.Errorf("%w: %w", nfckiosk.ErrAPI, err)
}
