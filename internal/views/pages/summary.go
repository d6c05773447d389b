package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"rolecast/internal/game"
)

// SummaryPage shows the aggregate outcome of a deal. It never lists who
// holds which role; the table is counts only.
func SummaryPage(v game.SummaryView, reg *game.Registry) templ.Component {
	return page("Rolecast session "+v.Code, SummaryContent(v, reg))
}

// SummaryContent renders the distribution table and the after-deal actions.
func SummaryContent(v game.SummaryView, reg *game.Registry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.writef(`<div id="summary" class="summary" data-signals='{"resetConfirm": false}' data-on-load="%s">`,
			esc("@get('/sse/session/"+v.Code+"')"))

		heading := `🎉 Deal complete`
		if !v.Complete {
			heading = `🎲 Deal in progress`
		}
		hw.writef(`<header class="session-header"><h1>%s</h1>`+
			`<p class="deal-meta">Session %s, %d players</p></header>`,
			heading, esc(v.Code), v.TotalPlayers)

		if err := teamSummary(v, reg).Render(ctx, w); err != nil {
			return err
		}

		hw.writef(`<div class="actions">`+
			`<button class="btn btn-primary" data-on-click="@post('/session/%s/reallocate')">🔀 Deal again, same setup</button>`+
			`<button class="btn" data-on-click="$resetConfirm = true">✏️ Back to setup</button>`+
			`</div>`, esc(v.Code))

		hw.writef(`<div id="reset-confirm" class="modal" data-show="$resetConfirm"><div class="modal-card">`+
			`<h3>Discard this deal?</h3>`+
			`<p>Dealt roles will be lost. Player names and role counts stay.</p>`+
			`<div class="modal-actions">`+
			`<button class="btn" data-on-click="$resetConfirm = false">Cancel</button>`+
			`<button class="btn btn-warning" data-on-click="@post('/session/%s/reset')">Discard and edit</button>`+
			`</div></div></div>`, esc(v.Code))

		hw.write(`</div>`)
		return hw.err
	})
}

// teamSummary is the distribution table, every catalog role in display
// order plus a per-team total row.
func teamSummary(v game.SummaryView, reg *game.Registry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.write(`<table class="team-summary"><thead><tr><th>Role</th><th>Team</th><th>Dealt</th></tr></thead><tbody>`)

		var teams []game.Team
		seen := make(map[game.Team]bool)
		for _, def := range reg.Roles() {
			hw.writef(`<tr><td><span class="role-dot" style="background: %s"></span>%s</td><td>%s</td><td>%d</td></tr>`,
				esc(def.Color.Primary), esc(def.Name), esc(string(def.Team)), v.Stats.RoleDistribution[def.ID])
			if !seen[def.Team] {
				seen[def.Team] = true
				teams = append(teams, def.Team)
			}
		}
		hw.write(`</tbody><tfoot>`)
		for _, team := range teams {
			hw.writef(`<tr class="team-total"><td colspan="2">%s team total</td><td>%d</td></tr>`,
				esc(string(team)), v.Stats.TeamDistribution[team])
		}
		hw.write(`</tfoot></table>`)
		return hw.err
	})
}
