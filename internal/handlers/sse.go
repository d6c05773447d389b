package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	datastar "github.com/starfederation/datastar-go/datastar"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"rolecast/internal/game"
	"rolecast/internal/views/pages"
)

// ConnectionTracker counts live SSE connections per session and globally.
type ConnectionTracker struct {
	mu       sync.RWMutex
	sessions map[string]int
	total    int64
}

func NewConnectionTracker() *ConnectionTracker {
	return &ConnectionTracker{
		sessions: make(map[string]int),
	}
}

func (ct *ConnectionTracker) AddConnection(sessionCode string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.sessions[sessionCode]++
	atomic.AddInt64(&ct.total, 1)
	log.Printf("📡 SSE connection opened for session %s (session: %d, global: %d)",
		sessionCode, ct.sessions[sessionCode], atomic.LoadInt64(&ct.total))
}

func (ct *ConnectionTracker) RemoveConnection(sessionCode string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if ct.sessions[sessionCode] > 0 {
		ct.sessions[sessionCode]--
		atomic.AddInt64(&ct.total, -1)
	}
	if ct.sessions[sessionCode] == 0 {
		delete(ct.sessions, sessionCode)
	}
	log.Printf("📡 SSE connection closed for session %s (global: %d)",
		sessionCode, atomic.LoadInt64(&ct.total))
}

func (ct *ConnectionTracker) GetConnectionCount(sessionCode string) int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.sessions[sessionCode]
}

func (ct *ConnectionTracker) GetTotalConnections() int64 {
	return atomic.LoadInt64(&ct.total)
}

// StreamSession streams live updates for one session to the facilitator's
// open tabs. Only validation outcomes, deal notifications, reveal progress
// and resets are pushed. Name and count signals stay out of this stream so
// an in-flight edit in another tab is never clobbered.
func (h *Handler) StreamSession(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	session, err := h.store.GetSession(code)
	if err != nil {
		log.Printf("📡 SSE requested for non-existent session: %s", code)
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if !isFacilitator(r, session) {
		log.Printf("📡 Unauthorized SSE attempt for session %s", code)
		http.Error(w, "Session claimed by another device", http.StatusForbidden)
		return
	}

	if h.tracker.GetTotalConnections() >= int64(h.config.Server.MaxSSEConnections) {
		log.Printf("❌ SSE connection limit %d reached, rejecting session %s",
			h.config.Server.MaxSSEConnections, code)
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	h.tracker.AddConnection(code)
	defer h.tracker.RemoveConnection(code)

	sse := datastar.NewSSE(w, r)

	events := h.eventBus.Subscribe(code)
	defer h.eventBus.Unsubscribe(code, events)

	// QR code goes out once per connection. The encoded URL carries the
	// facilitator key, so scanning it claims the session on the new device.
	handoffURL := fmt.Sprintf("%s/session/%s?key=%s", getBaseURL(r), code, session.FacilitatorToken)
	if qrCode, err := generateQRCode(handoffURL); err != nil {
		log.Printf("❌ Failed to generate QR code for session %s: %v", code, err)
	} else {
		signals := map[string]string{
			"qrCode": fmt.Sprintf("data:image/png;base64,%s", qrCode),
		}
		if err := sse.MarshalAndPatchSignals(signals); err != nil {
			log.Printf("❌ Failed to send QR code signal for session %s: %v", code, err)
		} else {
			log.Printf("📱 Sent hand-off QR code for session %s", code)
		}
	}

	// Page already rendered its own content. Sync only the validation
	// outcome so a tab opened mid-edit agrees with the stored config.
	if session.State() == game.StateSetup {
		if err := h.sendValidationOutcome(sse, session); err != nil {
			log.Printf("❌ Failed to send initial validation state: %v", err)
		}
	}

	log.Printf("📡 SSE connection ready for session %s", code)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("📡 SSE context cancelled for session %s", code)
			return
		case <-heartbeat.C:
			if _, err := h.store.GetSession(code); err != nil {
				log.Printf("📡 Heartbeat: session %s no longer exists, closing SSE", code)
				return
			}
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				log.Printf("📡 Keepalive failed for session %s: %v - closing connection", code, err)
				return
			}
		case event := <-events:
			log.Printf("📡 SSE event received for session %s: %s", code, event.Type)

			switch event.Type {
			case eventConfigUpdated:
				if session.State() != game.StateSetup {
					continue
				}
				if err := h.sendValidationOutcome(sse, session); err != nil {
					log.Printf("❌ Failed to sync validation state for session %s: %v", code, err)
				}
			case eventAssignmentDealt:
				sse.ExecuteScript("window.location.href = '/session/" + code + "/reveal'")
				if flusher, ok := w.(http.Flusher); ok {
					flusher.Flush()
				}
			case eventRevealProgress:
				v, ok := event.Data.(game.RevealView)
				if !ok {
					rv, err := session.RevealView()
					if err != nil {
						continue
					}
					v = rv
				}
				component := pages.RevealStage(v)
				sse.PatchElements(renderToString(component),
					datastar.WithSelector("#reveal-stage"))
			case eventRevealComplete:
				sse.ExecuteScript("window.location.href = '/session/" + code + "/summary'")
				if flusher, ok := w.(http.Flusher); ok {
					flusher.Flush()
				}
			case eventSessionReset:
				sse.ExecuteScript("window.location.href = '/session/" + code + "'")
				if flusher, ok := w.(http.Flusher); ok {
					flusher.Flush()
				}
			default:
				log.Printf("📡 Unknown event type %s for session %s", event.Type, code)
			}
		}
	}
}

// sendValidationOutcome recomputes the verdict from stored state and pushes
// the panel plus outcome signals.
func (h *Handler) sendValidationOutcome(sse *datastar.ServerSentEventGenerator, session *game.Session) error {
	v := session.SetupView()
	result := h.validator.Validate(v.Counts, len(v.Names))
	result = h.applyBoundaryFindings(result, nil, len(v.Names))

	if err := sse.PatchElements(
		renderToString(pages.ValidationPanel(result, h.registry.CatchAll())),
		datastar.WithSelector("#validation-panel"),
	); err != nil {
		return err
	}
	return sse.MarshalAndPatchSignals(validationSignals(result, len(v.Names)))
}

// renderToString renders a templ component to string
func renderToString(component templ.Component) string {
	buf := &bytes.Buffer{}
	component.Render(context.Background(), buf)
	return buf.String()
}

// generateQRCode generates a QR code for the given URL and returns it as base64 encoded PNG
func generateQRCode(url string) (string, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	tmpFile := fmt.Sprintf("/tmp/qr_%d.png", time.Now().UnixNano())

	w, err := standard.New(tmpFile,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8), // 8 pixels per module
	)
	if err != nil {
		return "", fmt.Errorf("failed to create writer: %w", err)
	}

	if err := qrc.Save(w); err != nil {
		return "", fmt.Errorf("failed to save QR code: %w", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return "", fmt.Errorf("failed to read QR code file: %w", err)
	}
	os.Remove(tmpFile)

	return base64.StdEncoding.EncodeToString(data), nil
}

// getBaseURL constructs the base URL from the request
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	// Check for X-Forwarded-Proto header (common in reverse proxy setups)
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		host = forwardedHost
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}
