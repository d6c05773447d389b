package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorPage is the shared shell for navigation errors: missing sessions,
// devices that do not hold the session, and the like.
func ErrorPage(title, message string) templ.Component {
	return page("Rolecast", errorContent(title, message))
}

func errorContent(title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.writef(`<section class="error-box"><h1>%s</h1><p>%s</p>`+
			`<a class="btn" href="/">Back to home</a></section>`,
			esc(title), esc(message))
		return hw.err
	})
}

// NotClaimedPage explains why a device cannot open someone else's session.
func NotClaimedPage(code string) templ.Component {
	return ErrorPage(
		"This session belongs to another device",
		"Session "+code+" is driven from the device that created it. "+
			"Scan the hand-off QR code on that device to move it here.")
}
