package helpers

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Writer accumulates markup for hand-written components and remembers the
// first write error.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup verbatim.
func (b *Writer) Raw(parts ...string) {
	for _, p := range parts {
		if b.err != nil {
			return
		}
		_, b.err = io.WriteString(b.w, p)
	}
}

// Text writes escaped text content.
func (b *Writer) Text(s string) {
	b.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with the value escaped.
func (b *Writer) Attr(name, value string) {
	b.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// AttrIf writes a valueless boolean attribute when on is true.
func (b *Writer) AttrIf(name string, on bool) {
	if on {
		b.Raw(" ", name)
	}
}

// Href writes an href attribute after URL sanitisation.
func (b *Writer) Href(url string) {
	b.Attr("href", string(templ.URL(url)))
}

// Open writes a start tag with class and extra attribute pairs.
func (b *Writer) Open(tag, class string, attrs ...string) {
	b.Raw("<", tag)
	if class != "" {
		b.Attr("class", class)
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		b.Attr(attrs[i], attrs[i+1])
	}
	b.Raw(">")
}

// Close writes an end tag.
func (b *Writer) Close(tag string) {
	b.Raw("</", tag, ">")
}

// Element writes a complete element with escaped text content.
func (b *Writer) Element(tag, class, text string, attrs ...string) {
	b.Open(tag, class, attrs...)
	b.Text(text)
	b.Close(tag)
}

// Icon writes an icon placeholder element.
func (b *Writer) Icon(icon string) {
	if strings.TrimSpace(icon) == "" {
		return
	}
	b.Open("i", icon, "aria-hidden", "true")
	b.Close("i")
}

// Render renders a nested component.
func (b *Writer) Render(ctx context.Context, c templ.Component) {
	if b.err != nil || c == nil {
		return
	}
	b.err = c.Render(ctx, b.w)
}

// Err returns the first error encountered.
func (b *Writer) Err() error {
	return b.err
}

// Component adapts a rendering function to templ.Component.
func Component(fn func(ctx context.Context, b *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := NewWriter(w)
		fn(ctx, b)
		return b.Err()
	})
}

// Classes joins the non-empty class names.
func Classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// TextComponent returns a templ component that renders escaped text.
func TextComponent(value string) templ.Component {
	return Component(func(_ context.Context, b *Writer) {
		b.Text(value)
	})
}
