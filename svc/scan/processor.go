package scan

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/nfckiosk"
	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/validator"
)

const (
	// ScanPath is the attendance scan endpoint.
	ScanPath = "/nfc/scan"

	// ISO 14443 identifiers are 4, 7 or 10 bytes long.
	MinUIDBytes = 4
	MaxUIDBytes = 10
)

// Kind classifies a successful scan.
type Kind string

const (
	KindCheckIn  Kind = "check_in"
	KindCheckOut Kind = "check_out"
)

// Outcome is the service's answer to an accepted scan.
type Outcome struct {
	Kind       Kind
	Message    string
	StatusCode int
}

// UIDReader reads one card identifier from the NFC hardware.
type UIDReader interface {
	ReadUID(ctx context.Context) (string, error)
}

// Processor submits card identifiers while a session is held.
type Processor struct {
	state  *nfckiosk.State
	client *apiclient.Client
	reader UIDReader
	logger *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithReader sets the hardware used when Submit is called without a UID.
func WithReader(r UIDReader) Option {
	return func(p *Processor) { p.reader = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewProcessor(state *nfckiosk.State, client *apiclient.Client, opts ...Option) *Processor {
	p := &Processor{
		state:  state,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("scan"))
	return p
}

type scanRequest struct {
	CardUID string `json:"cardUid"`
}

// Submit records attendance for uid in the session the service considers
// current. An empty uid is read from the hardware. Nothing is read or sent
// unless a session is held. The session id is not part of the request.
func (p *Processor) Submit(ctx context.Context, uid string) (Outcome, error) {
	if !p.state.HasSession() {
		return Outcome{}, nfckiosk.ErrNoActiveSession
	}

	uid = strings.TrimSpace(uid)
	if uid == "" {
		read, err := p.readUID(ctx)
		if err != nil {
			return Outcome{}, err
		}
		uid = read
	}

	uid = NormalizeUID(uid)
	if err := validator.Apply(
		validator.HexBytes("card_uid", uid, MinUIDBytes, MaxUIDBytes),
	); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", nfckiosk.ErrValidation, err)
	}

	log := p.logger.With(logger.CardUID(uid))

	resp, err := p.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   ScanPath,
		Body:   scanRequest{CardUID: uid},
		Token:  string(p.state.Credential()),
	})
	if err != nil {
		log.WarnContext(ctx, "scan request failed", logger.Error(err))
		if apiclient.IsTransport(err) {
			return Outcome{}, fmt.Errorf("%w: %w", nfckiosk.ErrNetwork, err)
		}
		return Outcome{}, fmt.Errorf("%w: %w", nfckiosk.ErrAPI, err)
	}

	var kind Kind
	switch resp.StatusCode {
	case http.StatusCreated:
		kind = KindCheckIn
	case http.StatusOK:
		kind = KindCheckOut
	default:
		msg := apiclient.ParseMessage(resp.Body).Text()
		log.WarnContext(ctx, "scan rejected", logger.StatusCode(resp.StatusCode))
		return Outcome{}, nfckiosk.NewAPIError(resp.StatusCode, msg)
	}

	out := Outcome{
		Kind:       kind,
		Message:    apiclient.BodyText(resp.Body),
		StatusCode: resp.StatusCode,
	}
	log.InfoContext(ctx, "scan accepted",
		slog.String("kind", string(kind)),
		logger.StatusCode(resp.StatusCode),
	)
	return out, nil
}

func (p *Processor) readUID(ctx context.Context) (string, error) {
	if p.reader == nil {
		return "", fmt.Errorf("%w: no reader configured", nfckiosk.ErrHardware)
	}
	uid, err := p.reader.ReadUID(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "nfc read failed", logger.Error(err))
		return "", fmt.Errorf("%w: %w", nfckiosk.ErrHardware, err)
	}
	if strings.TrimSpace(uid) == "" {
		return "", fmt.Errorf("%w: empty tag identifier", nfckiosk.ErrHardware)
	}
	return uid, nil
}

// NormalizeUID removes separators and upper-cases a hex identifier,
// so "04:a1:b2:c3" becomes "04A1B2C3".
func NormalizeUID(uid string) string {
	uid = strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(uid))
	return strings.ToUpper(uid)
}
