package fakeapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/requestid"
	"github.com/dmitrymomot/nfckiosk/svc/fakeapi"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t      *testing.T
	server *httptest.Server
	api    *fakeapi.Server
	clock  *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c := &clock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	api := fakeapi.New(
		fakeapi.WithUser("admin", "secret"),
		fakeapi.WithCard("04a1b2c3", "alice", true),
		fakeapi.WithCard("DEADBEEF", "bob", false),
		fakeapi.WithCard("CAFEBABE", "", true),
		fakeapi.WithTokenTTL(time.Hour),
		fakeapi.WithClock(c.Now),
		fakeapi.WithLogger(logger.Discard()),
	)
	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)
	return &harness{t: t, server: server, api: api, clock: c}
}

func (h *harness) do(method, path, token string, body any) (int, string, http.Header) {
	h.t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, h.server.URL+path, rdr)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, string(data), resp.Header
}

func (h *harness) login() string {
	h.t.Helper()
	status, body, _ := h.do(http.MethodPost, "/admin/authenticate", "", map[string]string{"username": "admin", "password": "secret"})
	require.Equal(h.t, http.StatusOK, status)
	var out struct {
		JWT string `json:"jwt"`
	}
	require.NoError(h.t, json.Unmarshal([]byte(body), &out))
	require.NotEmpty(h.t, out.JWT)
	return out.JWT
}

func (h *harness) startSession(token, name string) int64 {
	h.t.Helper()
	status, body, _ := h.do(http.MethodPost, "/entity/sessions", token, map[string]string{"name": name})
	require.Equal(h.t, http.StatusCreated, status)
	var out fakeapi.Session
	require.NoError(h.t, json.Unmarshal([]byte(body), &out))
	return out.ID
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	assert.NotEmpty(t, h.login())

	status, body, _ := h.do(http.MethodPost, "/admin/authenticate", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Incorrect username or password", body)
}

func TestBearerRequired(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	status, body, _ := h.do(http.MethodPost, "/nfc/scan", "", map[string]string{"cardUid": "04A1B2C3"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, `"message"`)

	status, _, _ = h.do(http.MethodPost, "/entity/sessions", "forged.token.value", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.login()

	h.clock.Advance(2 * time.Hour)
	status, _, _ := h.do(http.MethodPost, "/entity/sessions", token, map[string]string{"name": "Late"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSessions(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.login()

	status, body, _ := h.do(http.MethodPost, "/entity/sessions", token, map[string]string{"name": "Morning Lecture"})
	require.Equal(t, http.StatusCreated, status)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "Morning Lecture", created["name"])
	assert.NotEmpty(t, created["startTime"])

	status, body, _ = h.do(http.MethodPost, "/entity/sessions", token, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Session name is required.", body)

	status, _, _ = h.do(http.MethodPut, "/entity/sessions/1/end", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body, _ = h.do(http.MethodPut, "/entity/sessions/1/end", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Session already ended.", body)

	status, _, _ = h.do(http.MethodPut, "/entity/sessions/99/end", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = h.do(http.MethodPut, "/entity/sessions/abc/end", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body, _ = h.do(http.MethodGet, "/entity/sessions", token, nil)
	assert.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0]["endTime"])

	sessions := h.api.Sessions()
	require.Len(t, sessions, 1)
	assert.NotNil(t, sessions[0].EndTime)
}

func TestScan(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.login()
	scan := func(uid string) (int, string) {
		status, body, _ := h.do(http.MethodPost, "/nfc/scan", token, map[string]string{"cardUid": uid})
		return status, body
	}

	status, body := scan("04A1B2C3")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No active attendance session found.", body)

	h.startSession(token, "Morning Lecture")

	status, body = scan("04A1B2C3")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Checked in successfully to session: Morning Lecture at 2024-03-04T09:00:00", body)

	status, body = scan("04a1b2c3")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Checked out successfully from session: Morning Lecture")

	status, body = scan("04A1B2C3")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Already checked in and out for this session.", body)

	status, _ = scan("DEADBEEF")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = scan("CAFEBABE")
	assert.Equal(t, http.StatusForbidden, status)

	status, body = scan("01020304")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "NFC card not found")

	status, body = scan("")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Card UID is required.", body)
}

func TestScan_LatestSessionWins(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.login()

	h.startSession(token, "First")
	h.clock.Advance(time.Minute)
	h.startSession(token, "Second")

	status, body, _ := h.do(http.MethodPost, "/nfc/scan", token, map[string]string{"cardUid": "04A1B2C3"})
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, "session: Second")
}

func TestRequestIDEchoed(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, _, header := h.do(http.MethodGet, "/health", "", nil)
	assert.True(t, requestid.IsValid(header.Get(requestid.Header)))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRequestLogCarriesRequestIDOnce(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	log := logger.New(
		logger.WithOutput(&out),
		logger.WithJSONFormatter(),
		logger.WithLevel(slog.LevelDebug),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	server := httptest.NewServer(fakeapi.New(fakeapi.WithLogger(log)).Router())
	defer server.Close()

	const id = "550e8400-e29b-41d4-a716-446655440000"
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(requestid.Header, id)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "request served")
	}, time.Second, 10*time.Millisecond)

	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if !strings.Contains(line, "request served") {
			continue
		}
		assert.Equal(t, 1, strings.Count(line, `"request_id"`), line)
		assert.Contains(t, line, id)
	}
}

func TestListenAndServe(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(fakeapi.WithLogger(logger.Discard()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- api.ListenAndServe(ctx, fakeapi.ServeConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
