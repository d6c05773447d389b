package game

import (
	"fmt"
	"sync"
	"time"
)

// SessionState tracks where a session is in its lifecycle.
type SessionState string

const (
	StateSetup     SessionState = "setup"
	StateRevealing SessionState = "revealing"
	StateComplete  SessionState = "complete"
)

// Session is one facilitated deal: the configuration being edited, the
// active assignment if any, and the reveal cursor walking through it.
// Code and FacilitatorToken are set at construction and never change;
// everything else is guarded by the mutex, so all access goes through
// methods.
type Session struct {
	Code             string
	FacilitatorToken string

	mu           sync.RWMutex
	state        SessionState
	names        []string
	counts       RoleCounts
	acknowledged bool
	assignment   *Assignment
	cursor       int
	createdAt    time.Time
	lastActiveAt time.Time
}

// SetupView is a consistent snapshot of the configuration being edited.
type SetupView struct {
	Code         string
	State        SessionState
	Names        []string
	Counts       RoleCounts
	Acknowledged bool
}

// RevealView is a consistent snapshot of the reveal walk: who the device
// should be passed to, and whether their card is currently face up.
type RevealView struct {
	Code          string
	Index         int
	Total         int
	Current       PlayerAssignment
	Shown         bool
	RevealedCount int
}

// SummaryView is the aggregate picture shown once the walk finishes. It
// deliberately carries no per-player roles; those stay secret.
type SummaryView struct {
	Code         string
	AssignmentID string
	CreatedAt    time.Time
	TotalPlayers int
	Stats        AssignmentStats
	Counts       RoleCounts
	Complete     bool
}

// NewSession creates a fresh session in the setup state.
func NewSession(code, facilitatorToken string) *Session {
	now := time.Now()
	return &Session{
		Code:             code,
		FacilitatorToken: facilitatorToken,
		state:            StateSetup,
		counts:           RoleCounts{},
		createdAt:        now,
		lastActiveAt:     now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// LastActive returns the last time anything touched the session. The store
// purges sessions idle past the configured timeout.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActiveAt
}

// Touch marks the session active without changing anything else.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// SetSetup stores the latest submitted configuration. It may be called in
// any state; the stored values only take effect at the next allocation.
func (s *Session) SetSetup(names []string, counts RoleCounts, acknowledged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append([]string(nil), names...)
	s.counts = counts.Clone()
	s.acknowledged = acknowledged
	s.lastActiveAt = time.Now()
}

// SetupView snapshots the configuration being edited.
func (s *Session) SetupView() SetupView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SetupView{
		Code:         s.Code,
		State:        s.state,
		Names:        append([]string(nil), s.names...),
		Counts:       s.counts.Clone(),
		Acknowledged: s.acknowledged,
	}
}

// BeginReveal attaches a fresh assignment and starts the reveal walk at the
// first participant. Calling it again replaces the previous assignment, so
// a reallocation is just BeginReveal with a new deal.
func (s *Session) BeginReveal(a *Assignment) error {
	if a == nil || len(a.Players) == 0 {
		return fmt.Errorf("cannot reveal an empty assignment: %w", ErrNoAssignment)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignment = a
	s.cursor = 0
	s.state = StateRevealing
	s.lastActiveAt = time.Now()
	return nil
}

// RevealView snapshots the current position in the reveal walk.
func (s *Session) RevealView() (RevealView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateRevealing:
	case StateComplete:
		return RevealView{}, ErrRevealComplete
	default:
		return RevealView{}, ErrNotRevealing
	}

	revealed := 0
	for _, p := range s.assignment.Players {
		if p.Revealed {
			revealed++
		}
	}
	return RevealView{
		Code:          s.Code,
		Index:         s.cursor,
		Total:         len(s.assignment.Players),
		Current:       s.assignment.Players[s.cursor],
		Shown:         s.assignment.Players[s.cursor].Revealed,
		RevealedCount: revealed,
	}, nil
}

// ShowCurrent turns the current participant's card face up and returns it.
// The flag is monotonic; nothing turns a card face down again short of a
// new assignment.
func (s *Session) ShowCurrent() (PlayerAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRevealing {
		return PlayerAssignment{}, ErrNotRevealing
	}
	if s.cursor >= len(s.assignment.Players) {
		return PlayerAssignment{}, ErrRevealComplete
	}
	s.assignment.Players[s.cursor].Revealed = true
	s.lastActiveAt = time.Now()
	return s.assignment.Players[s.cursor], nil
}

// AdvanceReveal moves the cursor to the next participant. It returns true
// when the walk just finished, which flips the session to complete.
func (s *Session) AdvanceReveal() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRevealing {
		return false, ErrNotRevealing
	}
	s.cursor++
	s.lastActiveAt = time.Now()
	if s.cursor >= len(s.assignment.Players) {
		s.state = StateComplete
		return true, nil
	}
	return false, nil
}

// SummaryView snapshots the aggregate result of the active assignment.
func (s *Session) SummaryView() (SummaryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.assignment == nil {
		return SummaryView{}, ErrNoAssignment
	}
	return SummaryView{
		Code:         s.Code,
		AssignmentID: s.assignment.ID,
		CreatedAt:    s.assignment.CreatedAt,
		TotalPlayers: s.assignment.Metadata.TotalPlayers,
		Stats:        s.assignment.Stats,
		Counts:       s.assignment.Metadata.RoleCounts.Clone(),
		Complete:     s.state == StateComplete,
	}, nil
}

// AssignmentInputs returns the participant names and counts the active
// assignment was dealt from, for a reallocation with identical inputs.
func (s *Session) AssignmentInputs() ([]string, RoleCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.assignment == nil {
		return nil, nil, ErrNoAssignment
	}
	names := make([]string, len(s.assignment.Players))
	for i, p := range s.assignment.Players {
		names[i] = p.Name
	}
	return names, s.assignment.Metadata.RoleCounts.Clone(), nil
}

// Reset discards the assignment and returns to setup. Names and counts
// survive so the facilitator can adjust rather than retype.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignment = nil
	s.cursor = 0
	s.state = StateSetup
	s.acknowledged = false
	s.lastActiveAt = time.Now()
}
