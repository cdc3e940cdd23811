package nfc

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LineDevice reads tag identifiers typed as text lines, the way keyboard-wedge
// and serial NFC readers deliver them. Each line is a hex UID; ':', '-' and
// spaces between bytes are ignored. An empty line means no tag.
type LineDevice struct {
	r      *bufio.Reader
	prompt io.Writer
	closer io.Closer
}

// ReadTag reads one line. ctx is checked before reading; the read itself blocks.
func (d *LineDevice) ReadTag(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.prompt != nil {
		_, _ = fmt.Fprint(d.prompt, "Present card: ")
	}

	line, err := d.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoTag
		}
		return nil, err
	}

	return DecodeUID(line)
}

func (d *LineDevice) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// DecodeUID parses a textual hex UID, ignoring separators.
// Blank input yields ErrNoTag.
func DecodeUID(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil, ErrNoTag
	}
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a hex identifier", ErrInvalidUID, strings.TrimSpace(s))
	}
	return raw, nil
}

// SharedLines returns an Opener reading from an already open line source such
// as the operator console. Closing the device leaves the source open.
// prompt may be nil.
func SharedLines(r *bufio.Reader, prompt io.Writer) Opener {
	return func() (Device, error) {
		if r == nil {
			return nil, ErrNoReader
		}
		return &LineDevice{r: r, prompt: prompt}, nil
	}
}

// DeviceFile returns an Opener that opens path for each read, e.g. a serial
// reader at /dev/ttyUSB0, and closes it afterwards.
func DeviceFile(path string) Opener {
	return func() (Device, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &LineDevice{r: bufio.NewReader(f), closer: f}, nil
	}
}
