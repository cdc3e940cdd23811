package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/nfckiosk/pkg/logger"
	"github.com/dmitrymomot/nfckiosk/pkg/requestid"
)

type message struct {
	Message string `json:"message"`
}

// Router returns the HTTP handler serving the attendance endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(s.logRequests)

	r.Post("/admin/authenticate", s.authenticate)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Route("/entity/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.createSession)
			r.Put("/{id}/end", s.endSession)
		})
		r.Post("/nfc/scan", s.scan)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})

	return r
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	if !s.store.checkPassword(req.Username, req.Password) {
		writeText(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.issueToken(req.Username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to issue token", logger.Error(err))
		writeText(w, http.StatusInternalServerError, "Could not issue token.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jwt": token})
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listSessions())
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string     `json:"name"`
		StartTime *time.Time `json:"startTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeText(w, http.StatusBadRequest, "Session name is required.")
		return
	}

	start := s.now()
	if req.StartTime != nil {
		start = *req.StartTime
	}
	sess := s.store.createSession(name, start)
	s.logger.InfoContext(r.Context(), "session created", logger.SessionID(sess.ID), logger.Purpose(sess.Name))
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid session id.")
		return
	}

	sess, found, alreadyEnded := s.store.endSession(id, s.now())
	switch {
	case !found:
		writeText(w, http.StatusNotFound, fmt.Sprintf("Attendance session not found with id: %d", id))
	case alreadyEnded:
		writeText(w, http.StatusBadRequest, "Session already ended.")
	default:
		s.logger.InfoContext(r.Context(), "session ended", logger.SessionID(sess.ID))
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardUID string `json:"cardUid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	uid := strings.ToUpper(strings.TrimSpace(req.CardUID))
	if uid == "" {
		writeText(w, http.StatusBadRequest, "Card UID is required.")
		return
	}

	now := s.now()
	result, sess := s.store.scan(uid, now)
	stamp := now.Format("2006-01-02T15:04:05")

	switch result {
	case scanUnknownCard:
		writeText(w, http.StatusNotFound, "NFC card not found with UID: "+uid)
	case scanInactiveCard:
		writeText(w, http.StatusForbidden, "NFC card is inactive or not associated with a subscriber.")
	case scanNoSession:
		writeText(w, http.StatusNotFound, "No active attendance session found.")
	case scanCheckedIn:
		writeText(w, http.StatusCreated, "Checked in successfully to session: "+sess.Name+" at "+stamp)
	case scanCheckedOut:
		writeText(w, http.StatusOK, "Checked out successfully from session: "+sess.Name+" at "+stamp)
	case scanCompleted:
		writeText(w, http.StatusConflict, "Already checked in and out for this session.")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.DebugContext(r.Context(), "request served",
			logger.Endpoint(r.Method, r.URL.Path),
			logger.StatusCode(rec.status),
			logger.Duration(time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

