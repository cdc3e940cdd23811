package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/nfckiosk/pkg/secrets"
	"github.com/dmitrymomot/nfckiosk/pkg/validator"
)

const (
	DefaultPath    = "nfc_config.json"
	DefaultBaseURL = "http://localhost:8080"

	fileMode = 0o600
)

// Record is the persisted kiosk configuration.
type Record struct {
	BaseURL string `json:"api_base_url" yaml:"api_base_url"`
	Token   string `json:"jwt_token" yaml:"jwt_token"`
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

// Store reads and writes the configuration file.
type Store struct {
	path           string
	format         format
	defaultBaseURL string
	sealKey        []byte
	sealSalt       []byte
	logger         *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultBaseURL sets the base address used when the file is missing or has none.
func WithDefaultBaseURL(u string) Option {
	return func(s *Store) {
		if u = strings.TrimSpace(u); u != "" {
			s.defaultBaseURL = u
		}
	}
}

// WithSealing stores the token encrypted with a key derived from key and salt.
// A nil key disables sealing.
func WithSealing(key, salt []byte) Option {
	return func(s *Store) {
		s.sealKey = key
		s.sealSalt = salt
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store for path. Files ending in .yaml or .yml are written as
// YAML, anything else as JSON. An empty path means DefaultPath.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path:           path,
		format:         formatFor(path),
		defaultBaseURL: DefaultBaseURL,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the configuration file location.
func (s *Store) Path() string {
	return s.path
}

// Defaults returns the record used when the file is missing.
func (s *Store) Defaults() Record {
	return Record{BaseURL: s.defaultBaseURL}
}

// Load reads the record. A missing file yields the defaults and no error.
func (s *Store) Load(ctx context.Context) (Record, error) {
	rec := s.Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.DebugContext(ctx, "config file not found, using defaults",
			slog.String("path", s.path))
		return rec, nil
	}
	if err != nil {
		return Record{}, errors.Join(ErrReadConfig, err)
	}

	var stored Record
	if err := s.decode(data, &stored); err != nil {
		return Record{}, errors.Join(ErrDecodeConfig, err)
	}

	if v := strings.TrimSpace(stored.BaseURL); v != "" {
		rec.BaseURL = v
	}
	rec.Token = strings.TrimSpace(stored.Token)

	if secrets.IsSealed(rec.Token) {
		if len(s.sealKey) == 0 {
			return Record{}, ErrSealedToken
		}
		token, err := secrets.Open(s.sealKey, s.sealSalt, rec.Token)
		if err != nil {
			return Record{}, errors.Join(ErrUnsealToken, err)
		}
		rec.Token = token
	}

	s.logger.DebugContext(ctx, "config loaded",
		slog.String("path", s.path),
		slog.Bool("has_token", rec.Token != ""),
	)
	return rec, nil
}

// Save replaces the file atomically with rec.
func (s *Store) Save(ctx context.Context, rec Record) error {
	rec.BaseURL = strings.TrimSpace(rec.BaseURL)
	if err := validator.Apply(
		validator.URLWithScheme("api_base_url", rec.BaseURL, "http", "https"),
	); err != nil {
		return errors.Join(ErrInvalidRecord, err)
	}

	if rec.Token != "" && len(s.sealKey) > 0 {
		sealed, err := secrets.Seal(s.sealKey, s.sealSalt, rec.Token)
		if err != nil {
			return errors.Join(ErrWriteConfig, err)
		}
		rec.Token = sealed
	}

	data, err := s.encode(rec)
	if err != nil {
		return errors.Join(ErrWriteConfig, err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return errors.Join(ErrWriteConfig, err)
	}

	s.logger.DebugContext(ctx, "config saved",
		slog.String("path", s.path),
		slog.Bool("sealed", len(s.sealKey) > 0 && rec.Token != ""),
	)
	return nil
}

func (s *Store) decode(data []byte, rec *Record) error {
	if s.format == formatYAML {
		return yaml.Unmarshal(data, rec)
	}
	return json.Unmarshal(data, rec)
}

func (s *Store) encode(rec Record) ([]byte, error) {
	if s.format == formatYAML {
		return yaml.Marshal(rec)
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
