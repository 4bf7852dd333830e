package battle

import (
	"sync"
	"time"

	"github.com/agusx1211/promptarena/internal/eventq"
	"github.com/agusx1211/promptarena/internal/ids"
	"github.com/agusx1211/promptarena/internal/profile"
)

// EventKind names a round event.
type EventKind string

const (
	EventPhase     EventKind = "phase"
	EventTick      EventKind = "tick"
	EventSubmitted EventKind = "submitted"
	EventPowerUp   EventKind = "powerup"
	EventResult    EventKind = "result"
	EventCancelled EventKind = "cancelled"
)

// Event is published on Session.Events for views to render.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"sessionId"`
	Phase     Phase     `json:"phase"`
	Remaining int       `json:"remaining"`
	Urgency   Urgency   `json:"urgency"`
	PowerUp   string    `json:"powerUp,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	Time      time.Time `json:"time"`
}

// Session holds one player's state: the profile and at most one round in
// flight. It replaces any process-wide game state.
type Session struct {
	ID     string
	Events *eventq.Hub[Event]

	mu      sync.Mutex
	profile *profile.Profile
	round   *Round
}

// NewSession wraps p.
func NewSession(p *profile.Profile) *Session {
	return &Session{
		ID:      ids.Session(),
		Events:  eventq.NewHub[Event](),
		profile: p,
	}
}

// Profile returns the live profile. Callers must not mutate it while a round
// is resolving.
func (s *Session) Profile() *profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile replaces the player, cancelling any round in flight.
func (s *Session) SetProfile(p *profile.Profile) {
	s.mu.Lock()
	r := s.round
	s.profile = p
	s.round = nil
	s.mu.Unlock()
	if r != nil {
		r.Cancel("profile changed")
	}
}

// Round returns the current round or nil.
func (s *Session) Round() *Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (s *Session) setRound(r *Round) *Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.round
	s.round = r
	return prev
}

// Close cancels the round in flight and closes the event hub.
func (s *Session) Close() {
	if r := s.Round(); r != nil {
		r.Cancel("session closed")
	}
	s.Events.Close()
}

func (s *Session) publish(e Event) {
	e.SessionID = s.ID
	s.Events.Publish(e)
}
