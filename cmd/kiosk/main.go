// Command kiosk is the terminal front end of the NFC attendance desk.
//
// It reads one command per line from stdin and prints one status line per
// command. Configuration comes from KIOSK_* environment variables (see
// pkg/config) and an optional .env file.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
	"github.com/dmitrymomot/nfckiosk/pkg/config"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/nfc"
	"github.com/dmitrymomot/nfckiosk/pkg/requestid"
	"github.com/dmitrymomot/nfckiosk/svc/configstore"
	"github.com/dmitrymomot/nfckiosk/svc/kiosk"
	"github.com/dmitrymomot/nfckiosk/svc/scan"
)

const helpText = `Commands:
  token <jwt>        set the device token
  login <username>   authenticate; the password is read from the next line
  start <purpose>    start an attendance session
  end                end the current session
  scan [uid]         submit a card; without a uid the card is read from the reader
  url <address>      change the service base address
  status             show session, token and service address
  help               show this help
  quit               exit`

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), settings, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, settings config.Settings, in io.Reader, out, logOut io.Writer) error {
	log := logger.New(
		logger.WithEnvironment(settings.Env, "nfckiosk"),
		logger.WithLevel(logger.ParseLevel(settings.LogLevel)),
		logger.WithOutput(logOut),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	key, err := settings.SealingKey()
	if err != nil {
		return err
	}
	storeOpts := []configstore.Option{
		configstore.WithDefaultBaseURL(settings.APIBaseURL),
		configstore.WithLogger(log),
	}
	if key != nil {
		storeOpts = append(storeOpts, configstore.WithSealing(key, []byte(settings.DeviceID)))
	}
	store := configstore.New(settings.ConfigPath, storeOpts...)

	console := bufio.NewReader(in)

	kioskOpts := []kiosk.Option{
		kiosk.WithLogger(log),
		kiosk.WithClientOptions(apiclient.WithTimeout(settings.HTTPTimeout)),
	}
	if r := newReader(settings.Reader, console, out); r != nil {
		kioskOpts = append(kioskOpts, kiosk.WithReader(r))
	}

	k, err := kiosk.Open(ctx, store, kioskOpts...)
	if err != nil {
		return fmt.Errorf("failed to start kiosk: %w", err)
	}

	sh := &shell{kiosk: k, in: console, out: out}
	return sh.loop(ctx)
}

// newReader maps KIOSK_READER to a reader. "stdin" shares the console, so a
// bare "scan" waits for the card UID on the next line.
func newReader(mode string, console *bufio.Reader, prompt io.Writer) scan.UIDReader {
	switch strings.TrimSpace(mode) {
	case "", config.ReaderNone:
		return nil
	case config.ReaderStdin:
		return nfc.NewReader(nfc.SharedLines(console, prompt))
	default:
		return nfc.NewReader(nfc.DeviceFile(mode))
	}
}

type shell struct {
	kiosk *kiosk.Kiosk
	in    *bufio.Reader
	out   io.Writer
}

func (s *shell) loop(ctx context.Context) error {
	s.print(s.kiosk.LastStatus())
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")

		line, err := s.readLine()
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		if quit := s.dispatch(ctx, line); quit {
			return nil
		}
	}
}

func (s *shell) dispatch(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "token":
		s.print(s.kiosk.SetToken(ctx, arg))
	case "login":
		fmt.Fprint(s.out, "Password: ")
		password, err := s.readLine()
		if err != nil && password == "" {
			fmt.Fprintln(s.out)
			return true
		}
		s.print(s.kiosk.Login(ctx, arg, password))
	case "start":
		s.print(s.kiosk.StartSession(ctx, arg))
	case "end":
		s.print(s.kiosk.EndSession(ctx))
	case "scan":
		s.print(s.kiosk.Scan(ctx, arg))
	case "url":
		s.print(s.kiosk.SetBaseURL(ctx, arg))
	case "status":
		s.print(s.kiosk.Describe())
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "quit", "exit":
		return true
	default:
		s.print(kiosk.Status{Message: fmt.Sprintf("Unknown command %q, type help", cmd)})
	}
	return false
}

func (s *shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (s *shell) print(st kiosk.Status) {
	fmt.Fprintln(s.out, st.String())
}
