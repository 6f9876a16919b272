// Package session tracks per-client state shared between tool calls.
// The only state kept today is the last geocoded location.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/soochol/marketfinder/internal/market"
)

// DefaultID names the session used by callers that carry no session identity.
const DefaultID = "default"

// Session is the state owned by one client session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	location market.GeoCoordinates
	hasLoc   bool
	lastSeen time.Time
	attached bool // a transport stream is open for this session
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, lastSeen: now}
}

// Location returns the last known location and whether one was set.
func (s *Session) Location() (market.GeoCoordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location, s.hasLoc
}

// SetLocation replaces the last known location. Last write wins.
func (s *Session) SetLocation(c market.GeoCoordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = c
	s.hasLoc = true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) setAttached() {
	s.mu.Lock()
	s.attached = true
	s.mu.Unlock()
}

// Attached reports whether a transport stream holds the session open.
func (s *Session) Attached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attached
}

// LastSeen returns the time the session was last looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
