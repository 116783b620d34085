package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Rounded border characters used by Section.
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Section describes a bordered block with the title inlined in the top border:
//
//	╭─ Title (hint) ──────╮
//	│content              │
//	╰─────────────────────╯
type Section struct {
	Content []string
	Title   string
	Hint    string
	Width   int
	Focused bool
	// Invalid draws the border in the error color, overriding focus.
	Invalid bool
}

// Render draws the section.
func (s Section) Render() string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	switch {
	case s.Invalid:
		borderColor = StatusErrorColor
	case s.Focused:
		borderColor = BorderHighlightFocusColor
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(borderColor)
	hintStyle := lipgloss.NewStyle().Foreground(TextMutedColor)

	innerWidth := max(s.Width-2, 1)

	var topBorder string
	if s.Title == "" {
		topBorder = borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	} else {
		label := s.Title
		if s.Hint != "" {
			label += " (" + s.Hint + ")"
		}
		// "─ " before the title and " " after it.
		dashesAfter := max(innerWidth-lipgloss.Width(label)-3, 0)

		topBorder = borderStyle.Render(borderTopLeft+borderHorizontal+" ") + titleStyle.Render(s.Title)
		if s.Hint != "" {
			topBorder += " " + hintStyle.Render("("+s.Hint+")")
		}
		topBorder += borderStyle.Render(" " + strings.Repeat(borderHorizontal, dashesAfter) + borderTopRight)
	}

	lines := make([]string, 0, len(s.Content)+2)
	lines = append(lines, topBorder)
	for _, row := range s.Content {
		row = TruncateString(row, innerWidth)
		padding := strings.Repeat(" ", max(innerWidth-lipgloss.Width(row), 0))
		lines = append(lines, borderStyle.Render(borderVertical)+row+padding+borderStyle.Render(borderVertical))
	}
	lines = append(lines, borderStyle.Render(borderBottomLeft+strings.Repeat(borderHorizontal, innerWidth)+borderBottomRight))

	return strings.Join(lines, "\n")
}
