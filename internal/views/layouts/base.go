package layouts

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

const datastarSrc = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// Base wraps page content in the shared HTML shell: head, stylesheet and
// the datastar runtime. Children render inside the main container.
func Base(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1.0">`+
				`<title>%s</title>`+
				`<link rel="stylesheet" href="/static/css/app.css">`+
				`<script type="module" src="%s"></script>`+
				`</head><body><main class="container">`,
			html.EscapeString(title), datastarSrc); err != nil {
			return err
		}

		if err := children.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
