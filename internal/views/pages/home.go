package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Home is the landing page: start a fresh session or reopen one by code.
func Home() templ.Component {
	return page("Rolecast", homeContent())
}

func homeContent() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<section class="hero">`+
				`<h1>🎭 Rolecast</h1>`+
				`<p class="tagline">Deal secret roles for your next mafia night. One device, no paper slips.</p>`+
				`<form method="post" action="/session/new">`+
				`<button type="submit" class="btn btn-primary">Start a session</button>`+
				`</form>`+
				`</section>`+
				`<section class="join-box">`+
				`<h2>Have a session code?</h2>`+
				`<form method="get" action="/session/lookup">`+
				`<input type="text" name="code" placeholder="ABCDE" maxlength="8" autocomplete="off" required>`+
				`<button type="submit" class="btn">Open session</button>`+
				`</form>`+
				`</section>`)
		return err
	})
}
