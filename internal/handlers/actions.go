package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	datastar "github.com/starfederation/datastar-go/datastar"

	"rolecast/internal/game"
	"rolecast/internal/views/pages"
)

// Allocate re-validates the submitted configuration and deals. Warnings
// block until the confirm flag arrives with a second post.
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	log.Printf("🎲 Allocate called for session %s", code)

	session, err := h.store.GetSession(code)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if !isFacilitator(r, session) {
		http.Error(w, "Not the session facilitator", http.StatusForbidden)
		return
	}

	signals := &setupSignals{}
	if err := json.NewDecoder(r.Body).Decode(signals); err != nil {
		http.Error(w, "Invalid signals", http.StatusBadRequest)
		return
	}

	names := parseNames(signals.Names)
	counts, extra := countsFromSignals(signals.Counts)
	result := h.applyBoundaryFindings(h.validator.Validate(counts, len(names)), extra, len(names))

	session.SetSetup(names, counts, signals.ConfirmWarnings)

	// The validate endpoint runs on a debounce, so the submitted state can
	// be newer than the last panel patch. Never deal from a stale verdict.
	if !result.IsValid {
		log.Printf("❌ Allocate blocked for session %s: %d validation errors", code, len(result.Errors))
		sse := datastar.NewSSE(w, r)
		sse.PatchElements(renderToString(pages.ValidationPanel(result, h.registry.CatchAll())),
			datastar.WithSelector("#validation-panel"))
		sse.MarshalAndPatchSignals(validationSignals(result, len(names)))
		return
	}

	if result.RequiresConfirmation && !signals.ConfirmWarnings {
		log.Printf("⚠️ Session %s has warnings, asking for confirmation", code)
		sse := datastar.NewSSE(w, r)
		sse.PatchElements(renderToString(pages.ConfirmModal(code, result.Warnings)),
			datastar.WithSelector("#confirm-modal"))
		sse.MarshalAndPatchSignals(map[string]interface{}{"confirmOpen": true})
		return
	}

	assignment, err := h.assigner.Assign(counts, len(names), names)
	if err != nil {
		log.Printf("❌ Deal failed for session %s: %v", code, err)
		http.Error(w, "Failed to deal roles", http.StatusInternalServerError)
		return
	}
	if err := session.BeginReveal(assignment); err != nil {
		log.Printf("❌ Could not start reveal for session %s: %v", code, err)
		http.Error(w, "Failed to start reveal", http.StatusInternalServerError)
		return
	}

	h.publish(eventAssignmentDealt, code)
	log.Printf("✅ Dealt %d roles for session %s (assignment %s)", len(names), code, assignment.ID)

	// Use datastar to redirect directly in the POST response
	sse := datastar.NewSSE(w, r)
	sse.ExecuteScript("window.location.href = '/session/" + code + "/reveal'")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Reallocate deals again with the exact inputs of the current assignment.
func (h *Handler) Reallocate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	session, err := h.store.GetSession(code)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if !isFacilitator(r, session) {
		http.Error(w, "Not the session facilitator", http.StatusForbidden)
		return
	}

	names, counts, err := session.AssignmentInputs()
	if err != nil {
		http.Error(w, "Nothing to deal again", http.StatusConflict)
		return
	}

	assignment, err := h.assigner.Assign(counts, len(names), names)
	if err != nil {
		log.Printf("❌ Re-deal failed for session %s: %v", code, err)
		http.Error(w, "Failed to deal roles", http.StatusInternalServerError)
		return
	}
	if err := session.BeginReveal(assignment); err != nil {
		http.Error(w, "Failed to start reveal", http.StatusInternalServerError)
		return
	}

	h.publish(eventAssignmentDealt, code)
	log.Printf("🔀 Re-dealt session %s with the same setup (assignment %s)", code, assignment.ID)

	sse := datastar.NewSSE(w, r)
	sse.ExecuteScript("window.location.href = '/session/" + code + "/reveal'")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// RevealShow turns the current card face up.
func (h *Handler) RevealShow(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	session, err := h.store.GetSession(code)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if !isFacilitator(r, session) {
		http.Error(w, "Not the session facilitator", http.StatusForbidden)
		return
	}

	if _, err := session.ShowCurrent(); err != nil {
		h.redirectByState(w, r, session)
		return
	}

	v, err := session.RevealView()
	if err != nil {
		h.redirectByState(w, r, session)
		return
	}

	h.eventBus.Publish(Event{Type: eventRevealProgress, SessionCode: code, Data: v})
	log.Printf("👁️ Session %s showed card %d of %d", code, v.Index+1, v.Total)

	sse := datastar.NewSSE(w, r)
	sse.PatchElements(renderToString(pages.RevealStage(v)),
		datastar.WithSelector("#reveal-stage"))
}

// RevealNext hides the current card and moves to the next participant.
func (h *Handler) RevealNext(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	session, err := h.store.GetSession(code)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if !isFacilitator(r, session) {
		http.Error(w, "Not the session facilitator", http.StatusForbidden)
		return
	}

	done, err := session.AdvanceReveal()
	if err != nil {
		h.redirectByState(w, r, session)
		return
	}

	if done {
		h.publish(eventRevealComplete, code)
		log.Printf("🏁 Session %s finished its reveal walk", code)
		sse := datastar.NewSSE(w, r)
		sse.ExecuteScript("window.location.href = '/session/" + code + "/summary'")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		return
	}

	v, err := session.RevealView()
	if err != nil {
		h.redirectByState(w, r, session)
		return
	}

	h.eventBus.Publish(Event{Type: eventRevealProgress, SessionCode: code, Data: v})

	sse := datastar.NewSSE(w, r)
	sse.PatchElements(renderToString(pages.RevealStage(v)),
		datastar.WithSelector("#reveal-stage"))
}

// ResetSession discards the deal and returns to setup.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	session, err := h.store.GetSession(code)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if !isFacilitator(r, session) {
		http.Error(w, "Not the session facilitator", http.StatusForbidden)
		return
	}

	session.Reset()
	h.publish(eventSessionReset, code)
	log.Printf("♻️ Session %s reset to setup", code)

	sse := datastar.NewSSE(w, r)
	sse.ExecuteScript("window.location.href = '/session/" + code + "'")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// redirectByState sends a stale tab to the screen matching the session
// state. Used when an action arrives for a phase the session left.
func (h *Handler) redirectByState(w http.ResponseWriter, r *http.Request, s *game.Session) {
	target := "/session/" + s.Code
	switch s.State() {
	case game.StateRevealing:
		target += "/reveal"
	case game.StateComplete:
		target += "/summary"
	}
	sse := datastar.NewSSE(w, r)
	sse.ExecuteScript("window.location.href = '" + target + "'")
}
