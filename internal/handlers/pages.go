package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rolecast/internal/game"
	"rolecast/internal/store"
	"rolecast/internal/views/pages"
)

// Home renders the landing page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	component := pages.Home()
	component.Render(r.Context(), w)
}

// CreateSession starts a new session and sends the device to setup
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.CreateSession(generateToken())
	if err != nil {
		if errors.Is(err, store.ErrStoreFull) {
			http.Error(w, "Too many active sessions, try again later", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	// Seed the catalog defaults so setup opens with a sensible deal
	session.SetSetup(nil, h.registry.DefaultCounts(), false)

	setFacilitatorCookie(w, session)
	log.Printf("🎮 Created session %s", session.Code)

	http.Redirect(w, r, "/session/"+session.Code, http.StatusSeeOther)
}

// LookupSession sends a typed-in code to its session page
func (h *Handler) LookupSession(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("code")))
	if code == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/session/"+code, http.StatusSeeOther)
}

// SetupPage renders the configuration screen. A stale tab gets redirected
// to whichever screen matches the session state.
func (h *Handler) SetupPage(w http.ResponseWriter, r *http.Request) {
	session := h.sessionForPage(w, r)
	if session == nil {
		return
	}
	code := session.Code

	switch session.State() {
	case game.StateRevealing:
		http.Redirect(w, r, "/session/"+code+"/reveal", http.StatusSeeOther)
		return
	case game.StateComplete:
		http.Redirect(w, r, "/session/"+code+"/summary", http.StatusSeeOther)
		return
	}

	v := session.SetupView()
	result := h.validator.Validate(v.Counts, len(v.Names))
	component := pages.SetupPage(v, h.registry, result, h.config.Server.MaxPlayers)
	component.Render(r.Context(), w)
}

// RevealPage renders the pass-the-device walk
func (h *Handler) RevealPage(w http.ResponseWriter, r *http.Request) {
	session := h.sessionForPage(w, r)
	if session == nil {
		return
	}
	code := session.Code

	switch session.State() {
	case game.StateSetup:
		http.Redirect(w, r, "/session/"+code, http.StatusSeeOther)
		return
	case game.StateComplete:
		http.Redirect(w, r, "/session/"+code+"/summary", http.StatusSeeOther)
		return
	}

	v, err := session.RevealView()
	if err != nil {
		http.Redirect(w, r, "/session/"+code, http.StatusSeeOther)
		return
	}
	component := pages.RevealPage(v)
	component.Render(r.Context(), w)
}

// SummaryPage renders the aggregate result of the current deal
func (h *Handler) SummaryPage(w http.ResponseWriter, r *http.Request) {
	session := h.sessionForPage(w, r)
	if session == nil {
		return
	}

	v, err := session.SummaryView()
	if err != nil {
		http.Redirect(w, r, "/session/"+session.Code, http.StatusSeeOther)
		return
	}
	component := pages.SummaryPage(v, h.registry)
	component.Render(r.Context(), w)
}

// sessionForPage loads the session for a page request and runs the device
// checks. A nil return means the response has already been written.
func (h *Handler) sessionForPage(w http.ResponseWriter, r *http.Request) *game.Session {
	code := chi.URLParam(r, "code")
	session, err := h.store.GetSession(code)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		pages.ErrorPage("Session not found", "Session "+code+" does not exist or has expired.").Render(r.Context(), w)
		return nil
	}
	if !h.authorizeDevice(w, r, session) {
		return nil
	}
	return session
}

// authorizeDevice lets the facilitator through and claims the session when
// the URL carries the hand-off key. Any other device gets a refusal page.
func (h *Handler) authorizeDevice(w http.ResponseWriter, r *http.Request, s *game.Session) bool {
	if isFacilitator(r, s) {
		return true
	}
	if key := r.URL.Query().Get("key"); key != "" && key == s.FacilitatorToken {
		setFacilitatorCookie(w, s)
		log.Printf("📱 Session %s handed off to a new device", s.Code)
		return true
	}
	w.WriteHeader(http.StatusForbidden)
	pages.NotClaimedPage(s.Code).Render(r.Context(), w)
	return false
}
