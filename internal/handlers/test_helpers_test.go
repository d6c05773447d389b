package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"rolecast/internal/config"
	"rolecast/internal/game"
	"rolecast/internal/store"
)

// newTestHandler creates a handler with default test configuration
func newTestHandler() *Handler {
	return newTestHandlerWithConfig(testConfig())
}

// newTestHandlerWithConfig creates a handler for tests that tune limits
func newTestHandlerWithConfig(cfg *config.ServerConfig) *Handler {
	s := store.NewMemoryStore(cfg)
	reg := game.DefaultRegistry()
	return New(s, reg, cfg)
}

// testConfig fills in the fields that normally come from the environment.
func testConfig() *config.ServerConfig {
	cfg := config.DefaultConfig()
	cfg.Server.Port = "8080"
	cfg.Server.Host = "localhost"
	return cfg
}

// setupTestRouter builds the real route table minus the middleware that
// makes tests noisy or rate-limited.
func setupTestRouter(h *Handler) *chi.Mux {
	return SetupRouter(h, h.config, &RouterOptions{
		DisableRateLimiting:  true,
		DisableRequestLogger: true,
	})
}

// createTestSession drives POST /session/new through the router and returns
// the new session code plus the facilitator cookie the browser would hold.
func createTestSession(t *testing.T, router *chi.Mux) (string, *http.Cookie) {
	t.Helper()

	req := httptest.NewRequest("POST", "/session/new", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 from session create, got %d", w.Code)
	}
	code := strings.TrimPrefix(w.Header().Get("Location"), "/session/")
	if code == "" {
		t.Fatal("no session code in redirect location")
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "facilitator_"+code {
			return code, c
		}
	}
	t.Fatalf("facilitator cookie not set for session %s", code)
	return "", nil
}

// signalsBody encodes setup signals the way a datastar action posts them.
func signalsBody(t *testing.T, names string, counts map[string]any, confirm bool) io.Reader {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"names":           names,
		"counts":          counts,
		"confirmWarnings": confirm,
	})
	if err != nil {
		t.Fatalf("marshal signals: %v", err)
	}
	return bytes.NewReader(payload)
}

// postSignals posts a signal payload to a session endpoint as the device
// holding the given cookies.
func postSignals(router *chi.Mux, path string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// getPage fetches a page through the router with the given cookies.
func getPage(router *chi.Mux, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// withRouteCode attaches a chi route context for direct handler calls.
func withRouteCode(r *http.Request, code string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", code)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// dealTestSession moves a session straight into the reveal state without
// going through the allocate endpoint.
func dealTestSession(t *testing.T, h *Handler, code string, names []string, counts game.RoleCounts) {
	t.Helper()
	session, err := h.store.GetSession(code)
	if err != nil {
		t.Fatalf("session %s vanished: %v", code, err)
	}
	session.SetSetup(names, counts, false)
	assignment, err := h.assigner.Assign(counts, len(names), names)
	if err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	if err := session.BeginReveal(assignment); err != nil {
		t.Fatalf("begin reveal failed: %v", err)
	}
}

// completeTestReveal walks the whole reveal so the session lands in the
// complete state.
func completeTestReveal(t *testing.T, h *Handler, code string) {
	t.Helper()
	session, err := h.store.GetSession(code)
	if err != nil {
		t.Fatalf("session %s vanished: %v", code, err)
	}
	for {
		if _, err := session.ShowCurrent(); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		done, err := session.AdvanceReveal()
		if err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		if done {
			return
		}
	}
}
