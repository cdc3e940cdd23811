package fakeapi

import (
	"sort"
	"sync"
	"time"
)

// Card is an NFC card assigned to a subscriber.
type Card struct {
	UID        string
	Subscriber string
	Active     bool
}

// Session is a server-side attendance session.
type Session struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

type attendance struct {
	checkIn  time.Time
	checkOut time.Time
}

type attendanceKey struct {
	subscriber string
	sessionID  int64
}

// store keeps users, cards, sessions and attendance in memory.
type store struct {
	mu         sync.Mutex
	users      map[string]string
	cards      map[string]Card
	sessions   map[int64]*Session
	nextID     int64
	attendance map[attendanceKey]*attendance
}

func newStore() *store {
	return &store{
		users:      make(map[string]string),
		cards:      make(map[string]Card),
		sessions:   make(map[int64]*Session),
		nextID:     1,
		attendance: make(map[attendanceKey]*attendance),
	}
}

func (s *store) checkPassword(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.users[username]
	return ok && want == password
}

func (s *store) createSession(name string, start time.Time) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{ID: s.nextID, Name: name, StartTime: start}
	s.sessions[sess.ID] = sess
	s.nextID++
	return *sess
}

// endSession returns the ended session, whether it exists and whether it was
// already ended.
func (s *store) endSession(id int64, at time.Time) (Session, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false, false
	}
	if sess.EndTime != nil {
		return *sess, true, true
	}
	sess.EndTime = &at
	return *sess, true, false
}

func (s *store) listSessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type scanResult int

const (
	scanUnknownCard scanResult = iota
	scanInactiveCard
	scanNoSession
	scanCheckedIn
	scanCheckedOut
	scanCompleted
)

// scan records a tap of uid against the most recently started open session.
func (s *store) scan(uid string, now time.Time) (scanResult, Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[uid]
	if !ok {
		return scanUnknownCard, Session{}
	}
	if !card.Active || card.Subscriber == "" {
		return scanInactiveCard, Session{}
	}

	var target *Session
	for _, sess := range s.sessions {
		if sess.EndTime != nil || sess.StartTime.After(now) {
			continue
		}
		if target == nil || sess.StartTime.After(target.StartTime) ||
			(sess.StartTime.Equal(target.StartTime) && sess.ID > target.ID) {
			target = sess
		}
	}
	if target == nil {
		return scanNoSession, Session{}
	}

	key := attendanceKey{subscriber: card.Subscriber, sessionID: target.ID}
	rec, ok := s.attendance[key]
	switch {
	case !ok:
		s.attendance[key] = &attendance{checkIn: now}
		return scanCheckedIn, *target
	case rec.checkOut.IsZero():
		rec.checkOut = now
		return scanCheckedOut, *target
	default:
		return scanCompleted, *target
	}
}
