// Package logoverlay provides an in-app log viewer overlay that shows
// recent log entries without leaving the TUI.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/ui/overlay"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

const (
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40

	// MaxEntries is how many log lines the overlay keeps.
	MaxEntries = 500
)

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state. Entries arrive as log.LogEvent
// messages and are kept whether or not the overlay is showing.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden log overlay.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Append records an entry, dropping the oldest beyond MaxEntries.
func (m *Model) Append(entry string) {
	m.entries = append(m.entries, strings.TrimSuffix(entry, "\n"))
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = m.entries[over:]
	}
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Entries returns the buffered entries, oldest first.
func (m Model) Entries() []string { return m.entries }

// Update handles messages for the log overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if ev, ok := msg.(log.LogEvent); ok {
		m.Append(ev.Payload)
		return m, nil
	}
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			m.entries = nil
			m.refreshViewport()
		case "d":
			m.setLevel(log.LevelDebug)
		case "i":
			m.setLevel(log.LevelInfo)
		case "w":
			m.setLevel(log.LevelWarn)
		case "e":
			m.setLevel(log.LevelError)
		case "j", "down":
			m.viewport.ScrollDown(1)
		case "k", "up":
			m.viewport.ScrollUp(1)
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+x", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}
	return m, nil
}

func (m *Model) setLevel(level log.Level) {
	m.minLevel = level
	m.refreshViewport()
}

// View renders the log overlay content.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	boxWidth := m.boxWidth()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var result strings.Builder
	result.WriteString(titleStyle.Render("Logs"))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.viewport.View())
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(result.String())
}

func (m Model) filtered() []string {
	var out []string
	for _, e := range m.entries {
		if levelOf(e) >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) content(width int) string {
	entries := m.filtered()
	if len(entries) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Render("No logs to display")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = colorize(e, width)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Header, footer and borders take six lines.
	h := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	m.viewport = viewport.New(m.contentWidth(), h)
	m.viewport.SetContent(m.content(m.contentWidth()))
}

// Overlay renders the log overlay centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible returns whether the overlay is showing.
func (m Model) Visible() bool { return m.visible }

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// Toggle shows or hides the overlay.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// SetSize updates the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

// levelOf reads the level tag the logger writes after the timestamp.
// Unknown lines count as errors so they are never filtered out.
func levelOf(entry string) log.Level {
	switch {
	case strings.Contains(entry, "[DEBUG]"):
		return log.LevelDebug
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn
	default:
		return log.LevelError
	}
}

func colorize(entry string, maxWidth int) string {
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth, "...")
	}
	var color lipgloss.TerminalColor
	switch levelOf(entry) {
	case log.LevelDebug:
		color = styles.TextMutedColor
	case log.LevelInfo:
		color = styles.ToastBorderInfoColor
	case log.LevelWarn:
		color = styles.StatusWarningColor
	default:
		color = styles.StatusErrorColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, f := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if m.minLevel == f.level {
			parts = append(parts, active.Render(f.label))
		} else {
			parts = append(parts, hint.Render(f.label))
		}
	}
	return strings.Join(parts, "  ")
}
