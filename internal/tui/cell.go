// internal/tui/cell.go
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/councilchat/council/internal/council"
)

var (
	userLabelStyle      = lipgloss.NewStyle().Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
)

// messageCell wraps one conversation entry and is the single decision point
// for re-render avoidance. A user fragment is computed exactly once. An
// assistant fragment is recomputed iff the cell is active now or was active
// at its previous computation; otherwise the cached fragment is returned
// untouched. One active evaluation resets cache eligibility, so output
// computed mid-stream is never trusted.
type messageCell struct {
	msg *council.Message
	md  markdownRenderer

	cached    string
	hasCached bool
	wasActive bool
}

// newMessageCell creates a cell for one conversation entry.
func newMessageCell(msg *council.Message, md markdownRenderer) *messageCell {
	return &messageCell{msg: msg, md: md}
}

// View returns the cell's display fragment for this evaluation.
func (c *messageCell) View(isActive bool) string {
	if c.msg.Role == council.RoleUser {
		if !c.hasCached {
			c.cached = c.renderUser()
			c.hasCached = true
		}
		return c.cached
	}

	if c.hasCached && !isActive && !c.wasActive {
		return c.cached
	}

	c.cached = c.renderAssistant()
	c.hasCached = true
	c.wasActive = isActive
	return c.cached
}

// renderUser produces the fragment for an immutable user message.
func (c *messageCell) renderUser() string {
	return userLabelStyle.Render("You") + "\n" + c.md.Render(c.msg.Content)
}

// renderAssistant composes the label and the three stage sub-fragments in
// order. Stages that have not been reached contribute nothing.
func (c *messageCell) renderAssistant() string {
	m := c.msg

	parts := []string{assistantLabelStyle.Render("Council")}
	for _, fragment := range []string{
		renderStage1(m.Stage1, m.Loading.Stage1, c.md),
		renderStage2(m.Stage2, m.Stage2Meta, m.Loading.Stage2),
		renderStage3(m.Stage3, m.Loading.Stage3, c.md),
	} {
		if fragment != "" {
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, "\n")
}
