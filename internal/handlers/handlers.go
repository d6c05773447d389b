package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"rolecast/internal/config"
	"rolecast/internal/game"
	"rolecast/internal/store"
)

// Event types published on the bus. One session's SSE streams react to all
// of them; other sessions never see them.
const (
	eventConfigUpdated   = "config_updated"
	eventAssignmentDealt = "assignment_dealt"
	eventRevealProgress  = "reveal_progress"
	eventRevealComplete  = "reveal_complete"
	eventSessionReset    = "session_reset"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store     *store.MemoryStore
	eventBus  *EventBus
	registry  *game.Registry
	validator *game.Validator
	assigner  *game.Assigner
	config    *config.ServerConfig
	tracker   *ConnectionTracker
}

// New creates a new handler wired to the given catalog and config.
func New(s *store.MemoryStore, reg *game.Registry, cfg *config.ServerConfig) *Handler {
	return &Handler{
		store:     s,
		eventBus:  NewEventBus(),
		registry:  reg,
		validator: game.NewValidator(reg),
		assigner:  game.NewAssigner(reg),
		config:    cfg,
		tracker:   NewConnectionTracker(),
	}
}

// Store returns the handler's store (for testing)
func (h *Handler) Store() *store.MemoryStore {
	return h.store
}

// Registry returns the handler's role catalog (for testing)
func (h *Handler) Registry() *game.Registry {
	return h.registry
}

// Event represents a session event
type Event struct {
	Type        string
	SessionCode string
	Data        interface{}
}

// EventBus manages event subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe subscribes to events for a session
func (eb *EventBus) Subscribe(sessionCode string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 10)
	eb.subscribers[sessionCode] = append(eb.subscribers[sessionCode], ch)
	return ch
}

// Unsubscribe removes a subscription
func (eb *EventBus) Unsubscribe(sessionCode string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[sessionCode]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[sessionCode] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
}

// Publish publishes an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[event.SessionCode] {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// publish is shorthand for handlers that only carry a type and code.
func (h *Handler) publish(eventType, sessionCode string) {
	h.eventBus.Publish(Event{Type: eventType, SessionCode: sessionCode})
}

// facilitatorCookie names the per-session cookie holding the facilitator
// token. Scoping by code lets one browser drive several sessions.
func facilitatorCookie(code string) string {
	return "facilitator_" + code
}

// setFacilitatorCookie marks this device as the one driving the session.
func setFacilitatorCookie(w http.ResponseWriter, s *game.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     facilitatorCookie(s.Code),
		Value:    s.FacilitatorToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 1 day, matches the session timeout default
	})
}

// isFacilitator reports whether the request's device holds the session.
func isFacilitator(r *http.Request, s *game.Session) bool {
	cookie, err := r.Cookie(facilitatorCookie(s.Code))
	if err != nil {
		return false
	}
	return cookie.Value == s.FacilitatorToken
}

// generateToken generates a facilitator token
func generateToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
