package nfc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/nfckiosk/pkg/logger"
)

// Device is an acquired reader handle able to read one tag.
type Device interface {
	// ReadTag blocks until a tag is presented and returns its raw identifier.
	// An empty identifier means no tag was read.
	ReadTag(ctx context.Context) ([]byte, error)
	Close() error
}

// Opener acquires exclusive access to a reader device.
type Opener func() (Device, error)

// Reader reads tag identifiers, acquiring the device for exactly one read.
type Reader struct {
	open   Opener
	logger *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

func WithLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a Reader using open to acquire the device. A nil open
// yields a reader that always fails with ErrNoReader.
func NewReader(open Opener, opts ...ReaderOption) *Reader {
	r := &Reader{open: open, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadUID reads one tag and returns its identifier as upper-case hex.
// The device is released before ReadUID returns, whatever the outcome.
func (r *Reader) ReadUID(ctx context.Context) (string, error) {
	if r == nil || r.open == nil {
		return "", ErrNoReader
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	dev, err := r.open()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoReader, err)
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			r.logger.WarnContext(ctx, "failed to release nfc reader", logger.Error(cerr))
		}
	}()

	raw, err := dev.ReadTag(ctx)
	if err != nil {
		if errors.Is(err, ErrNoTag) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if len(raw) == 0 {
		return "", ErrNoTag
	}

	return strings.ToUpper(hex.EncodeToString(raw)), nil
}
