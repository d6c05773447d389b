package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	datastar "github.com/starfederation/datastar-go/datastar"

	"rolecast/internal/game"
	"rolecast/internal/views/pages"
)

// setupSignals is the browser state the setup screen posts on every edit.
// Counts stays untyped here because number inputs can surface values as
// JSON numbers or strings depending on edit state.
type setupSignals struct {
	Names           string         `json:"names"`
	Counts          map[string]any `json:"counts"`
	ConfirmWarnings bool           `json:"confirmWarnings"`
}

// ValidateSetup runs the rule pipeline against the in-flight configuration
// and patches the validation panel. It fires on a debounce from every
// keystroke, so it must stay cheap and never block.
func (h *Handler) ValidateSetup(w http.ResponseWriter, r *http.Request) {
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

	signals := &setupSignals{}
	if err := json.NewDecoder(r.Body).Decode(signals); err != nil {
		http.Error(w, "Invalid signals", http.StatusBadRequest)
		return
	}

	names := parseNames(signals.Names)
	counts, extra := countsFromSignals(signals.Counts)
	result := h.validator.Validate(counts, len(names))
	result = h.applyBoundaryFindings(result, extra, len(names))

	// Persist so a reconnecting tab and the allocate endpoint see the
	// same configuration the panel was computed from.
	session.SetSetup(names, counts, signals.ConfirmWarnings)
	h.publish(eventConfigUpdated, code)

	sse := datastar.NewSSE(w, r)
	sse.PatchElements(renderToString(pages.ValidationPanel(result, h.registry.CatchAll())),
		datastar.WithSelector("#validation-panel"))
	sse.MarshalAndPatchSignals(validationSignals(result, len(names)))
}

// validationSignals is the signal set both the validate endpoint and the
// SSE stream send after a validation pass.
func validationSignals(result game.ValidationResult, totalPlayers int) map[string]interface{} {
	return map[string]interface{}{
		"isValid":              result.IsValid,
		"requiresConfirmation": result.RequiresConfirmation,
		"villagerCount":        result.VillagerCount,
		"totalPlayers":         totalPlayers,
	}
}

// applyBoundaryFindings folds transport-level findings into a validation
// result: count coercion problems and the server's player bounds, which
// the pure rule pipeline knows nothing about.
func (h *Handler) applyBoundaryFindings(result game.ValidationResult, extra []game.Finding, totalPlayers int) game.ValidationResult {
	if totalPlayers < h.config.Server.MinPlayers {
		extra = append(extra, game.Finding{
			Rule:     "player-count",
			Severity: game.SeverityError,
			Message:  fmt.Sprintf("needs at least %d players, have %d", h.config.Server.MinPlayers, totalPlayers),
		})
	}
	if totalPlayers > h.config.Server.MaxPlayers {
		extra = append(extra, game.Finding{
			Rule:     "player-count",
			Severity: game.SeverityError,
			Message:  fmt.Sprintf("allows at most %d players, have %d", h.config.Server.MaxPlayers, totalPlayers),
		})
	}

	for _, f := range extra {
		switch f.Severity {
		case game.SeverityError:
			result.Errors = append(result.Errors, f)
		case game.SeverityWarning:
			result.Warnings = append(result.Warnings, f)
		}
	}
	result.IsValid = len(result.Errors) == 0
	result.RequiresConfirmation = result.IsValid && len(result.Warnings) > 0
	return result
}

// countsFromSignals coerces raw signal values into role counts. Anything
// that is not a whole number becomes a finding instead of a silent zero.
func countsFromSignals(raw map[string]any) (game.RoleCounts, []game.Finding) {
	counts := make(game.RoleCounts, len(raw))
	var findings []game.Finding
	for id, value := range raw {
		switch n := value.(type) {
		case float64:
			if n != math.Trunc(n) {
				findings = append(findings, wholeNumberFinding(id))
				continue
			}
			counts[game.RoleID(id)] = int(n)
		case string:
			// A number input holds an empty string mid-edit
			trimmed := strings.TrimSpace(n)
			if trimmed == "" {
				counts[game.RoleID(id)] = 0
				continue
			}
			parsed, err := strconv.Atoi(trimmed)
			if err != nil {
				findings = append(findings, wholeNumberFinding(id))
				continue
			}
			counts[game.RoleID(id)] = parsed
		default:
			findings = append(findings, wholeNumberFinding(id))
		}
	}
	return counts, findings
}

func wholeNumberFinding(id string) game.Finding {
	return game.Finding{
		Rule:     "negative-count",
		Severity: game.SeverityError,
		Message:  fmt.Sprintf("%s: count must be a whole number", id),
	}
}

// parseNames splits the textarea into player names: one per line, commas
// also accepted, blanks dropped.
func parseNames(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' })
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name := strings.TrimSpace(f); name != "" {
			names = append(names, name)
		}
	}
	return names
}
