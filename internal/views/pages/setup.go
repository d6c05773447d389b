package pages

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"rolecast/internal/game"
)

// SetupPage is the configuration screen: the player list, one counter per
// special role, live validation and the deal button.
func SetupPage(v game.SetupView, reg *game.Registry, result game.ValidationResult, maxPlayers int) templ.Component {
	return page("Rolecast session "+v.Code, SetupContent(v, reg, result, maxPlayers))
}

// SetupContent renders the setup panel with its initial signal set. The
// validation endpoint and the SSE stream patch fragments inside it.
func SetupContent(v game.SetupView, reg *game.Registry, result game.ValidationResult, maxPlayers int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		counts := make(map[string]int)
		for _, def := range reg.SpecialRoles() {
			counts[string(def.ID)] = v.Counts[def.ID]
		}
		signals := map[string]any{
			"names":                strings.Join(v.Names, "\n"),
			"counts":               counts,
			"isValid":              result.IsValid,
			"requiresConfirmation": result.RequiresConfirmation,
			"villagerCount":        result.VillagerCount,
			"totalPlayers":         len(v.Names),
			"confirmOpen":          false,
			"confirmWarnings":      false,
			"qrCode":               "",
		}
		validate := "@post('/session/" + v.Code + "/validate')"
		catchAll := reg.CatchAll()

		// The stream hookup lives on this wrapper, never on an element the
		// stream patches, so a morph cannot re-trigger the connection.
		hw := &htmlWriter{w: w}
		hw.writef(`<div id="setup" class="setup" data-signals='%s' data-on-load="%s">`,
			esc(signalsJSON(signals)), esc("@get('/sse/session/"+v.Code+"')"))

		hw.writef(`<header class="session-header"><h1>Session <span class="session-code">%s</span></h1>`+
			`<a class="home-link" href="/">home</a></header>`, esc(v.Code))

		// Player list
		hw.writef(`<section class="panel players-panel"><h2>👥 Players</h2>`+
			`<label for="names">One name per line</label>`+
			`<textarea id="names" rows="10" placeholder="Ada&#10;Bram&#10;Cleo" `+
			`data-bind-names data-on-input__debounce.300ms="%s"></textarea>`+
			`<p class="player-count">Players: <span data-text="$totalPlayers"></span> of %d max</p>`+
			`</section>`, esc(validate), maxPlayers)

		// Role counters
		hw.write(`<section class="panel roles-panel"><h2>🃏 Roles</h2>`)
		for _, def := range reg.SpecialRoles() {
			if err := roleCounterRow(v.Code, def, v.Counts[def.ID]).Render(ctx, w); err != nil {
				return err
			}
		}
		hw.writef(`<p class="villager-line"><span data-text="$villagerCount"></span> %s cards fill the remaining seats</p>`+
			`</section>`, esc(catchAll.Name))

		if err := ValidationPanel(result, catchAll).Render(ctx, w); err != nil {
			return err
		}

		hw.writef(`<div class="actions">`+
			`<button id="allocate" class="btn btn-primary" data-attr-disabled="!$isValid" `+
			`data-on-click="@post('/session/%s/allocate')">🎲 Deal roles</button>`+
			`</div>`, esc(v.Code))

		if err := ConfirmModal(v.Code, nil).Render(ctx, w); err != nil {
			return err
		}

		hw.write(`<section class="panel qr-panel"><h2>📱 Hand off</h2>` +
			`<p>Scan to move this session to another device.</p>` +
			`<img class="qr-code" alt="session hand-off QR" data-show="$qrCode !== ''" data-attr-src="$qrCode">` +
			`</section>`)

		hw.write(`</div>`)
		return hw.err
	})
}

// roleCounterRow is one special role with its count input.
func roleCounterRow(code string, def game.RoleDefinition, value int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.writef(`<div class="role-row" style="border-left-color: %s">`, esc(def.Color.Primary))
		hw.writef(`<div class="role-meta"><span class="role-name">%s</span>`+
			`<span class="role-desc">%s</span>`, esc(def.Name), esc(def.Description))
		if def.Constraints.Min > 0 {
			hw.writef(`<span class="role-hint">at least %d</span>`, def.Constraints.Min)
		}
		if def.Constraints.Max > 0 {
			hw.writef(`<span class="role-hint">at most %d</span>`, def.Constraints.Max)
		}
		hw.write(`</div>`)
		hw.writef(`<input type="number" class="role-count" inputmode="numeric" min="0" value="%d" `+
			`aria-label="%s count" data-bind-counts.%s `+
			`data-on-input__debounce.300ms="@post('/session/%s/validate')">`,
			value, esc(def.Name), esc(string(def.ID)), esc(code))
		hw.write(`</div>`)
		return hw.err
	})
}

// ValidationPanel shows every finding from the last validation pass. The
// validate endpoint patches this element on each keystroke.
func ValidationPanel(result game.ValidationResult, catchAll game.RoleDefinition) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state := "ok"
		switch {
		case len(result.Errors) > 0:
			state = "errors"
		case len(result.Warnings) > 0:
			state = "warnings"
		}

		hw := &htmlWriter{w: w}
		hw.writef(`<div id="validation-panel" class="validation validation-%s">`, state)
		if len(result.Errors) > 0 || len(result.Warnings) > 0 {
			hw.write(`<ul class="findings">`)
			for _, f := range result.Errors {
				hw.writef(`<li class="finding finding-error">❌ %s</li>`, esc(f.Message))
			}
			for _, f := range result.Warnings {
				hw.writef(`<li class="finding finding-warning">⚠️ %s</li>`, esc(f.Message))
			}
			hw.write(`</ul>`)
		}
		if result.IsValid {
			hw.writef(`<p class="ok-line">✅ Ready to deal: %d %s card(s) and the roles above</p>`,
				result.VillagerCount, esc(catchAll.Name))
		}
		hw.write(`</div>`)
		return hw.err
	})
}

// ConfirmModal asks the facilitator to acknowledge warnings before dealing.
// The allocate endpoint patches it with the current warnings and flips
// $confirmOpen when acknowledgment is needed.
func ConfirmModal(code string, warnings []game.Finding) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.write(`<div id="confirm-modal" class="modal" data-show="$confirmOpen"><div class="modal-card">`)
		hw.write(`<h3>⚠️ Unusual configuration</h3>`)
		if len(warnings) > 0 {
			hw.write(`<ul class="findings">`)
			for _, f := range warnings {
				hw.writef(`<li class="finding finding-warning">%s</li>`, esc(f.Message))
			}
			hw.write(`</ul>`)
		}
		hw.write(`<div class="modal-actions">` +
			`<button class="btn" data-on-click="$confirmOpen = false">Go back</button>`)
		hw.writef(`<button class="btn btn-warning" `+
			`data-on-click="$confirmWarnings = true; $confirmOpen = false; @post('/session/%s/allocate')">`+
			`Deal anyway</button>`, esc(code))
		hw.write(`</div></div></div>`)
		return hw.err
	})
}
