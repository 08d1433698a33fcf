package dashboard

import (
	"errors"
	"sync"
	"time"

	"flightdash/internal/models"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one viewer's control state. Viewers never share state.
type Session struct {
	ID       string              `json:"id"`
	Controls models.ControlState `json:"controls"`
	lastSeen time.Time
}

// Sessions is an in-memory session store with idle eviction.
type Sessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]*Session
}

// NewSessions evicts sessions idle for longer than ttl; ttl <= 0 keeps them forever.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{ttl: ttl, now: time.Now, items: make(map[string]*Session)}
}

func (s *Sessions) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	sess := &Session{
		ID:       uuid.NewString(),
		Controls: models.DefaultControlState(),
		lastSeen: s.now(),
	}
	s.items[sess.ID] = sess
	return *sess
}

func (s *Sessions) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}

// Update applies fn to the session's controls and stores the result unless
// fn fails. It returns the controls before and after.
func (s *Sessions) Update(id string, fn func(models.ControlState) (models.ControlState, error)) (before, after models.ControlState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return before, after, err
	}
	before = sess.Controls
	after, err = fn(before)
	if err != nil {
		return before, before, err
	}
	sess.Controls = after
	return before, after, nil
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// lookup finds a live session and refreshes its idle timer. Caller holds mu.
func (s *Sessions) lookup(id string) (*Session, error) {
	sess, ok := s.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.items, id)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

func (s *Sessions) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

// sweep drops expired sessions. Caller holds mu.
func (s *Sessions) sweep() {
	now := s.now()
	for id, sess := range s.items {
		if s.expired(sess, now) {
			delete(s.items, id)
		}
	}
}
