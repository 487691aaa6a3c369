// internal/markdown/markdown.go
// Package markdown converts markdown text into styled terminal output.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/councilchat/council/internal/util"
)

// Renderer turns markdown into terminal text at a fixed wrap width. A
// Renderer is a pure text-to-text transform: the same input always yields
// the same output for the life of the Renderer.
type Renderer struct {
	tr    *glamour.TermRenderer
	width int
}

// New creates a Renderer wrapping at the given width. If the glamour
// renderer cannot be constructed the Renderer falls back to returning the
// input unstyled.
func New(width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		tr = nil
	}
	return &Renderer{tr: tr, width: width}
}

// Render converts markdown to terminal text. Rendering never fails: on any
// error the literal input is returned, wrapped to the renderer width.
func (r *Renderer) Render(text string) string {
	if r == nil {
		return text
	}
	if r.tr == nil {
		return util.WrapToWidth(text, r.width)
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return util.WrapToWidth(text, r.width)
	}
	return strings.TrimRight(out, "\n")
}

// Width returns the wrap width the Renderer was built with.
func (r *Renderer) Width() int { return r.width }
