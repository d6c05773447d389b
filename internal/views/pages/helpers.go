package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"rolecast/internal/views/layouts"
)

// page wraps content in the base layout.
func page(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layouts.Base(title).Render(templ.WithChildren(ctx, content), w)
	})
}

// esc escapes text for both element content and attribute values.
func esc(s string) string {
	return html.EscapeString(s)
}

// signalsJSON marshals an initial signal set for a data-signals attribute.
// The result still needs attribute escaping.
func signalsJSON(signals map[string]any) string {
	b, err := json.Marshal(signals)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// htmlWriter latches the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) write(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) writef(format string, args ...any) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}
