package scan_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nfckiosk"
	"github.com/dmitrymomot/nfckiosk/pkg/apiclient"
	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/nfc"
	"github.com/dmitrymomot/nfckiosk/svc/scan"
)

type stubReader struct {
	uid   string
	err   error
	calls atomic.Int32
}

func (r *stubReader) ReadUID(context.Context) (string, error) {
	r.calls.Add(1)
	return r.uid, r.err
}

type fixture struct {
	proc  *scan.Processor
	state *nfckiosk.State
	calls *atomic.Int32
	body  *atomic.Value
}

func newFixture(t *testing.T, status int, respBody string, opts ...scan.Option) fixture {
	t.Helper()

	calls := &atomic.Int32{}
	body := &atomic.Value{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, scan.ScanPath, r.URL.Path)
		assert.Equal(t, "Bearer device-token", r.Header.Get("Authorization"))

		var got map[string]any
		_ = json.NewDecoder(r.Body).Decode(&got)
		body.Store(got)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(server.Close)

	client, err := apiclient.New(server.URL, apiclient.WithLogger(logger.Discard()))
	require.NoError(t, err)

	state := nfckiosk.NewState()
	state.SetCredential("device-token")
	state.SetSession(nfckiosk.Session{ID: 42, Purpose: "Morning Lecture"})

	opts = append(opts, scan.WithLogger(logger.Discard()))
	return fixture{
		proc:  scan.NewProcessor(state, client, opts...),
		state: state,
		calls: calls,
		body:  body,
	}
}

func TestProcessor_Submit(t *testing.T) {
	t.Parallel()

	t.Run("check in", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusCreated, "Checked in successfully to session: Morning Lecture at 09:00")

		out, err := f.proc.Submit(context.Background(), "04A1B2C3")
		require.NoError(t, err)
		assert.Equal(t, scan.KindCheckIn, out.Kind)
		assert.Equal(t, http.StatusCreated, out.StatusCode)
		assert.Contains(t, out.Message, "Checked in successfully")
		assert.Equal(t, map[string]any{"cardUid": "04A1B2C3"}, f.body.Load())
	})

	t.Run("check out with json string body", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusOK, `"Checked out successfully from session: Morning Lecture"`)

		out, err := f.proc.Submit(context.Background(), "04a1b2c3")
		require.NoError(t, err)
		assert.Equal(t, scan.KindCheckOut, out.Kind)
		assert.Equal(t, "Checked out successfully from session: Morning Lecture", out.Message)
	})

	t.Run("structured success body", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusCreated, `{"message":"Welcome"}`)

		out, err := f.proc.Submit(context.Background(), "04A1B2C3")
		require.NoError(t, err)
		assert.Equal(t, "Welcome", out.Message)
	})

	t.Run("session id is not sent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusCreated, "ok")

		_, err := f.proc.Submit(context.Background(), "04:a1:b2:c3")
		require.NoError(t, err)
		got := f.body.Load().(map[string]any)
		assert.Len(t, got, 1)
		assert.Equal(t, "04A1B2C3", got["cardUid"])
	})

	t.Run("hyphen separated uid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusCreated, "ok")

		_, err := f.proc.Submit(context.Background(), "04-a1-b2-c3")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"cardUid": "04A1B2C3"}, f.body.Load())
	})

	t.Run("idle sends nothing and never reads", func(t *testing.T) {
		t.Parallel()
		reader := &stubReader{uid: "04A1B2C3"}
		f := newFixture(t, http.StatusCreated, "ok", scan.WithReader(reader))
		f.state.ClearSession()

		for _, uid := range []string{"04A1B2C3", ""} {
			_, err := f.proc.Submit(context.Background(), uid)
			require.ErrorIs(t, err, nfckiosk.ErrNoActiveSession)
			require.ErrorIs(t, err, nfckiosk.ErrState)
		}
		assert.Zero(t, f.calls.Load())
		assert.Zero(t, reader.calls.Load())
	})

	t.Run("structured error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusConflict, `{"message":"Already checked in and out for this session."}`)

		_, err := f.proc.Submit(context.Background(), "04A1B2C3")
		apiErr, ok := nfckiosk.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "Already checked in and out for this session.", apiErr.Message)
	})

	t.Run("raw error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusNotFound, "NFC card not found or not assigned.")

		_, err := f.proc.Submit(context.Background(), "04A1B2C3")
		apiErr, ok := nfckiosk.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "NFC card not found or not assigned.", apiErr.Message)
		assert.Equal(t, nfckiosk.KindAPI, nfckiosk.Kind(err))
	})

	t.Run("other success status is an error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusAccepted, "queued")

		_, err := f.proc.Submit(context.Background(), "04A1B2C3")
		apiErr, ok := nfckiosk.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusAccepted, apiErr.StatusCode)
	})

	t.Run("invalid uid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusCreated, "ok")

		for _, uid := range []string{"xyz", "04A1B2C", "04A1", "0102030405060708090A0B"} {
			_, err := f.proc.Submit(context.Background(), uid)
			require.ErrorIs(t, err, nfckiosk.ErrValidation, uid)
		}
		assert.Zero(t, f.calls.Load())
	})

	t.Run("session is unchanged by scans", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusForbidden, "NFC card is inactive.")

		_, err := f.proc.Submit(context.Background(), "04A1B2C3")
		require.Error(t, err)
		assert.Equal(t, &nfckiosk.Session{ID: 42, Purpose: "Morning Lecture"}, f.state.Session())
	})
}

func TestProcessor_SubmitFromReader(t *testing.T) {
	t.Parallel()

	t.Run("reads when uid is empty", func(t *testing.T) {
		t.Parallel()
		reader := &stubReader{uid: "04a1b2c3"}
		f := newFixture(t, http.StatusCreated, "in", scan.WithReader(reader))

		out, err := f.proc.Submit(context.Background(), "  ")
		require.NoError(t, err)
		assert.Equal(t, scan.KindCheckIn, out.Kind)
		assert.Equal(t, int32(1), reader.calls.Load())
		assert.Equal(t, map[string]any{"cardUid": "04A1B2C3"}, f.body.Load())
	})

	t.Run("nfc reader", func(t *testing.T) {
		t.Parallel()
		reader := nfc.NewReader(func() (nfc.Device, error) { return nil, errors.New("no usb device") })
		f := newFixture(t, http.StatusCreated, "in", scan.WithReader(reader))

		_, err := f.proc.Submit(context.Background(), "")
		require.ErrorIs(t, err, nfckiosk.ErrHardware)
		require.ErrorIs(t, err, nfc.ErrNoReader)
		assert.Equal(t, nfckiosk.KindHardware, nfckiosk.Kind(err))
		assert.Zero(t, f.calls.Load())
	})

	t.Run("no reader", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, http.StatusCreated, "in")

		_, err := f.proc.Submit(context.Background(), "")
		require.ErrorIs(t, err, nfckiosk.ErrHardware)
		assert.Zero(t, f.calls.Load())
	})

	t.Run("read failure is not retried", func(t *testing.T) {
		t.Parallel()
		reader := &stubReader{err: errors.New("timeout")}
		f := newFixture(t, http.StatusCreated, "in", scan.WithReader(reader))

		_, err := f.proc.Submit(context.Background(), "")
		require.ErrorIs(t, err, nfckiosk.ErrHardware)
		assert.Equal(t, int32(1), reader.calls.Load())
		assert.Zero(t, f.calls.Load())
	})

	t.Run("empty read", func(t *testing.T) {
		t.Parallel()
		reader := &stubReader{}
		f := newFixture(t, http.StatusCreated, "in", scan.WithReader(reader))

		_, err := f.proc.Submit(context.Background(), "")
		require.ErrorIs(t, err, nfckiosk.ErrHardware)
		assert.Zero(t, f.calls.Load())
	})
}

func TestNormalizeUID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "04A1B2C3", scan.NormalizeUID(" 04:a1 b2:c3 "))
	assert.Equal(t, "DEADBEEF", scan.NormalizeUID("deadbeef"))
	assert.Equal(t, "04A1B2C3", scan.NormalizeUID("04-a1-b2-c3"))
}
