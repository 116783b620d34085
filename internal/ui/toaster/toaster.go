// Package toaster provides a notification toast overlay component.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/backoffice/internal/ui/overlay"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	// StyleSuccess shows ✓ with a green border.
	StyleSuccess Style = iota
	// StyleError shows ✗ with a red border.
	StyleError
	// StyleInfo shows • with a blue border.
	StyleInfo
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

const maxWidth = 48

// Model holds the toaster state. Each Show bumps seq so a dismissal
// scheduled for an older toast leaves a newer one alone.
type Model struct {
	message string
	style   Style
	seq     int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// DismissMsg asks the toaster to hide the toast with the given sequence number.
type DismissMsg struct {
	Seq int
}

// Show displays a toast and returns the command that dismisses it after d.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.seq++
	m.message = message
	m.style = style
	seq := m.seq
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{Seq: seq} })
}

// Update hides the toast when its dismissal arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.Seq == m.seq {
		m.message = ""
	}
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.message != ""
}

// Message returns the text of the visible toast.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var icon string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		icon = "✗ "
	case StyleInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		icon = "• "
	default:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		icon = "✓ "
	}

	return style.Render(wordwrap.String(icon+m.message, maxWidth))
}

// Overlay renders the toast in the bottom right corner of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.BottomRight,
		PadX:     1,
		PadY:     1,
	}, m.View(), bg)
}
