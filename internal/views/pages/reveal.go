package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"rolecast/internal/game"
)

// RevealPage is the pass-the-device screen. One participant at a time sees
// their card; the stage fragment below is all the show/next actions patch.
func RevealPage(v game.RevealView) templ.Component {
	return page("Rolecast session "+v.Code, revealShell(v))
}

func revealShell(v game.RevealView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		// Hookup stays on this wrapper; the stream only patches #reveal-stage.
		hw := &htmlWriter{w: w}
		hw.writef(`<div class="reveal" data-on-load="%s"><header class="session-header">`+
			`<h1>Session <span class="session-code">%s</span></h1></header>`,
			esc("@get('/sse/session/"+v.Code+"')"), esc(v.Code))
		hw.write(`<p class="privacy-hint">🤫 Only the named player should look at the screen.</p>`)
		if hw.err != nil {
			return hw.err
		}
		if err := RevealStage(v).Render(ctx, w); err != nil {
			return err
		}
		hw.write(`</div>`)
		return hw.err
	})
}

// RevealStage renders the current position of the reveal walk.
func RevealStage(v game.RevealView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.write(`<div id="reveal-stage" class="reveal-stage">`)
		hw.writef(`<p class="progress">Card %d of %d</p>`, v.Index+1, v.Total)

		if !v.Shown {
			hw.writef(`<div class="pass-prompt">`+
				`<p class="pass-to">Pass the device to</p>`+
				`<h2 class="player-name">%s</h2>`+
				`<button class="btn btn-primary" data-on-click="@post('/session/%s/reveal/show')">👁️ Show my role</button>`+
				`</div>`, esc(v.Current.Name), esc(v.Code))
		} else {
			if hw.err != nil {
				return hw.err
			}
			if err := roleCard(v.Current).Render(ctx, w); err != nil {
				return err
			}
			label := "🙈 Hide and pass on"
			if v.Index == v.Total-1 {
				label = "🏁 Finish"
			}
			hw.writef(`<button class="btn btn-primary" data-on-click="@post('/session/%s/reveal/next')">%s</button>`,
				esc(v.Code), label)
		}

		hw.write(`</div>`)
		return hw.err
	})
}

// roleCard is the secret card itself, colored by the role's palette.
func roleCard(p game.PlayerAssignment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.writef(`<div class="role-card" style="background: %s; color: %s">`,
			esc(p.Role.Color.Primary), esc(p.Role.Color.Text))
		hw.writef(`<p class="card-holder">%s</p>`, esc(p.Name))
		hw.writef(`<h2 class="card-role">%s</h2>`, esc(p.Role.Name))
		hw.writef(`<span class="team-badge" style="background: %s; color: %s">%s team</span>`,
			esc(p.Role.Color.Secondary), esc(p.Role.Color.Primary), esc(string(p.Role.Team)))
		hw.writef(`<p class="card-desc">%s</p>`, esc(p.Role.Description))
		hw.write(`</div>`)
		return hw.err
	})
}
