package kiosk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nfckiosk"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/svc/configstore"
	"github.com/dmitrymomot/nfckiosk/svc/fakeapi"
	"github.com/dmitrymomot/nfckiosk/svc/kiosk"
)

type stubReader struct {
	uid string
	err error
}

func (r stubReader) ReadUID(context.Context) (string, error) { return r.uid, r.err }

func newKiosk(t *testing.T, opts ...kiosk.Option) (*kiosk.Kiosk, *configstore.Store) {
	t.Helper()

	api := fakeapi.New(
		fakeapi.WithUser("admin", "secret"),
		fakeapi.WithCard("04A1B2C3", "alice", true),
		fakeapi.WithLogger(logger.Discard()),
	)
	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)

	store := configstore.New(filepath.Join(t.TempDir(), "nfc_config.json"),
		configstore.WithDefaultBaseURL(server.URL),
		configstore.WithLogger(logger.Discard()),
	)

	opts = append([]kiosk.Option{kiosk.WithLogger(logger.Discard())}, opts...)
	k, err := kiosk.Open(context.Background(), store, opts...)
	require.NoError(t, err)
	return k, store
}

func TestKiosk_AttendanceFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	k, store := newKiosk(t)

	assert.Equal(t, "Status: Idle", k.LastStatus().String())

	st := k.StartSession(ctx, "Morning Lecture")
	assert.True(t, st.IsError())
	assert.Equal(t, "JWT Token not set.", st.Message)

	st = k.Login(ctx, "admin", "secret")
	require.False(t, st.IsError(), st.Message)
	assert.Equal(t, "Device authenticated", st.Message)

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Token)
	assert.Equal(t, k.BaseURL(), rec.BaseURL)

	st = k.Scan(ctx, "04A1B2C3")
	assert.Equal(t, "Scan failed: No active session.", st.Message)
	assert.ErrorIs(t, st.Err, nfckiosk.ErrState)

	st = k.StartSession(ctx, "Morning Lecture")
	require.False(t, st.IsError(), st.Message)
	assert.Equal(t, "Session 'Morning Lecture' started.", st.Message)
	require.NotNil(t, k.Session())
	assert.Equal(t, int64(1), k.Session().ID)

	st = k.StartSession(ctx, "Another")
	assert.ErrorIs(t, st.Err, nfckiosk.ErrSessionActive)

	st = k.Scan(ctx, "04:a1:b2:c3")
	require.False(t, st.IsError(), st.Message)
	assert.True(t, strings.HasPrefix(st.Message, "Scan success: Checked in successfully to session: Morning Lecture"))

	st = k.Scan(ctx, "04A1B2C3")
	assert.True(t, strings.HasPrefix(st.Message, "Scan success: Checked out successfully"))

	st = k.Scan(ctx, "04A1B2C3")
	assert.Equal(t, "Scan failed: 409 - Already checked in and out for this session.", st.Message)

	st = k.Scan(ctx, "0A0B0C0D")
	assert.True(t, strings.HasPrefix(st.Message, "Scan failed: 404 - NFC card not found"))

	st = k.EndSession(ctx)
	require.False(t, st.IsError(), st.Message)
	assert.Equal(t, "Session 'Morning Lecture' ended.", st.Message)
	assert.Nil(t, k.Session())

	st = k.EndSession(ctx)
	assert.False(t, st.IsError())
	assert.Equal(t, "No active session to end.", st.Message)
	assert.Equal(t, st, k.LastStatus())
}

func TestKiosk_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	k, _ := newKiosk(t)

	st := k.Login(ctx, "admin", "wrong")
	assert.Equal(t, "Login failed: 401 - Incorrect username or password", st.Message)
	assert.ErrorIs(t, st.Err, nfckiosk.ErrAuth)

	st = k.Login(ctx, "", "")
	assert.True(t, st.IsError())
	assert.True(t, strings.HasPrefix(st.Message, "Login failed"), st.Message)
}

func TestKiosk_SetToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	k, store := newKiosk(t)

	st := k.SetToken(ctx, "   ")
	assert.Equal(t, "Invalid input: token: field is required", st.Message)

	st = k.SetToken(ctx, "forged-token")
	assert.Equal(t, "JWT Token set successfully.", st.Message)

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "forged-token", rec.Token)

	st = k.StartSession(ctx, "Lecture")
	assert.True(t, strings.HasPrefix(st.Message, "Error starting session: 401"), st.Message)
	assert.Nil(t, k.Session())
}

func TestKiosk_ScanFromReader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reader uid", func(t *testing.T) {
		t.Parallel()
		k, _ := newKiosk(t, kiosk.WithReader(stubReader{uid: "04a1b2c3"}))
		require.False(t, k.Login(ctx, "admin", "secret").IsError())
		require.False(t, k.StartSession(ctx, "Lab").IsError())

		st := k.Scan(ctx, "")
		assert.True(t, strings.HasPrefix(st.Message, "Scan success: Checked in"), st.Message)
	})

	t.Run("reader failure", func(t *testing.T) {
		t.Parallel()
		k, _ := newKiosk(t, kiosk.WithReader(stubReader{err: errors.New("no device")}))
		require.False(t, k.Login(ctx, "admin", "secret").IsError())
		require.False(t, k.StartSession(ctx, "Lab").IsError())

		st := k.Scan(ctx, "")
		assert.True(t, strings.HasPrefix(st.Message, "NFC read error"), st.Message)
		assert.NotNil(t, k.Session())
	})
}

func TestKiosk_SetBaseURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	k, store := newKiosk(t)
	require.False(t, k.SetToken(ctx, "tok").IsError())

	st := k.SetBaseURL(ctx, "ftp://example.com")
	assert.True(t, st.IsError())
	assert.ErrorIs(t, st.Err, nfckiosk.ErrValidation)

	st = k.SetBaseURL(ctx, "http://127.0.0.1:1")
	require.False(t, st.IsError(), st.Message)
	assert.Equal(t, "http://127.0.0.1:1", k.BaseURL())

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, configstore.Record{BaseURL: "http://127.0.0.1:1", Token: "tok"}, rec)

	st = k.StartSession(ctx, "Offline")
	assert.True(t, strings.HasPrefix(st.Message, "Connection error"), st.Message)
	assert.ErrorIs(t, st.Err, nfckiosk.ErrNetwork)
}

func TestKiosk_Describe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	k, _ := newKiosk(t)

	st := k.Describe()
	assert.Contains(t, st.Message, "No active session")
	assert.Contains(t, st.Message, "token not set")

	require.False(t, k.Login(ctx, "admin", "secret").IsError())
	require.False(t, k.StartSession(ctx, "Morning Lecture").IsError())

	st = k.Describe()
	assert.Contains(t, st.Message, "Active session: Morning Lecture (ID: 1)")
	assert.Contains(t, st.Message, "token set for admin, expires")
	assert.Contains(t, st.Message, "API "+k.BaseURL())
}

func TestOpen_RestoresToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"name":"Morning Lecture"}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "nfc_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: "+server.URL+"\njwt_token: saved-token\n"), 0o600))

	k, err := kiosk.Open(ctx, configstore.New(path), kiosk.WithLogger(logger.Discard()))
	require.NoError(t, err)

	st := k.StartSession(ctx, "Morning Lecture")
	require.False(t, st.IsError(), st.Message)
	assert.Equal(t, "Bearer saved-token", gotAuth)
}

func TestOpen_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	const defaultBase = "http://kiosk.test"

	tests := []struct {
		name      string
		content   string
		wantToken bool
	}{
		{"truncated json", `{"api_base_url": "http://localhost:8080", "jwt_token": null`, false},
		{"garbage", `{broken`, false},
		{"base url without scheme", `{"api_base_url":"localhost:8080","jwt_token":"kept-token"}`, true},
		{"base url not a url", `{"api_base_url":"not a url"}`, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "nfc_config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			store := configstore.New(path, configstore.WithDefaultBaseURL(defaultBase))
			k, err := kiosk.Open(context.Background(), store, kiosk.WithLogger(logger.Discard()))
			require.NoError(t, err)

			assert.Equal(t, defaultBase, k.BaseURL())
			assert.Equal(t, "Idle", k.LastStatus().Message)
			desc := k.Describe().Message
			if tt.wantToken {
				assert.NotContains(t, desc, "token not set")
			} else {
				assert.Contains(t, desc, "token not set")
			}
		})
	}

	t.Run("unreadable file", func(t *testing.T) {
		t.Parallel()
		store := configstore.New(t.TempDir(), configstore.WithDefaultBaseURL(defaultBase))
		k, err := kiosk.Open(context.Background(), store, kiosk.WithLogger(logger.Discard()))
		require.NoError(t, err)
		assert.Equal(t, defaultBase, k.BaseURL())
	})
}

func TestOpen_SealedTokenWithoutKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nfc_config.json")
	content := []byte(`{"api_base_url":"http://localhost:8080","jwt_token":"sealed:v1:AAAA"}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := kiosk.Open(context.Background(), configstore.New(path), kiosk.WithLogger(logger.Discard()))
	require.ErrorIs(t, err, configstore.ErrSealedToken)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}
