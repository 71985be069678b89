// Package common provides the page shell and markup helpers shared by UI
// features.
package common

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/gridview/internal/ui/resources"
)

// DatastarScript is the client bundle the pages load.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// Page wraps body in the HTML document shell. In dev mode the page also
// listens on /reload for hot reloads.
func Page(title, lang string, isDev bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!doctype html>\n<html lang=\"")
		b.WriteString(templ.EscapeString(lang))
		b.WriteString("\"><head><meta charset=\"utf-8\">")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		b.WriteString("<title>")
		b.WriteString(templ.EscapeString(title))
		b.WriteString(" - gridview</title>")
		b.WriteString("<link rel=\"stylesheet\" href=\"")
		b.WriteString(resources.StaticPath("gridview.css"))
		b.WriteString("\"><script type=\"module\" src=\"")
		b.WriteString(DatastarScript)
		b.WriteString("\"></script></head><body>")
		if isDev {
			b.WriteString("<div data-init=\"@get('/reload')\"></div>")
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// Attr writes name="value" with value escaped, preceded by a space.
func Attr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString("=\"")
	b.WriteString(templ.EscapeString(value))
	b.WriteByte('"')
}

// Text writes s escaped.
func Text(b *strings.Builder, s string) {
	b.WriteString(templ.EscapeString(s))
}

// Itoa formats n.
func Itoa(n int) string {
	return strconv.Itoa(n)
}
