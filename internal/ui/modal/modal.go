// Package modal provides a confirmation dialog.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/backoffice/internal/ui/overlay"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

// ButtonVariant controls the styling of the confirm button.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota
	ButtonDanger                // destructive actions
)

const (
	zoneConfirm = "modal-confirm"
	zoneCancel  = "modal-cancel"
)

// Config controls modal appearance.
type Config struct {
	Title          string
	Message        string
	ConfirmLabel   string // default "Confirm"
	ConfirmVariant ButtonVariant
	MinWidth       int // default 40
}

// ConfirmMsg is sent when the user confirms.
type ConfirmMsg struct{}

// CancelMsg is sent when the user dismisses the modal.
type CancelMsg struct{}

// Field identifies which button is focused.
type Field int

const (
	FieldConfirm Field = iota
	FieldCancel
)

var (
	keyToggle  = key.NewBinding(key.WithKeys("tab", "shift+tab", "left", "right", "h", "l"))
	keyActive  = key.NewBinding(key.WithKeys("enter"))
	keyYes     = key.NewBinding(key.WithKeys("y"))
	keyDismiss = key.NewBinding(key.WithKeys("esc", "n"))
)

// Model is the modal component state. Cancel is focused initially so a
// stray enter never confirms a destructive action.
type Model struct {
	config  Config
	focused Field
	width   int
	height  int
}

// New creates a new confirmation modal.
func New(cfg Config) Model {
	return Model{config: cfg, focused: FieldCancel}
}

// Update handles messages for the modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyToggle):
			if m.focused == FieldConfirm {
				m.focused = FieldCancel
			} else {
				m.focused = FieldConfirm
			}
		case key.Matches(msg, keyActive):
			return m, m.press(m.focused)
		case key.Matches(msg, keyYes):
			return m, m.press(FieldConfirm)
		case key.Matches(msg, keyDismiss):
			return m, m.press(FieldCancel)
		}

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			if z := zone.Get(zoneConfirm); z != nil && z.InBounds(msg) {
				m.focused = FieldConfirm
				return m, m.press(FieldConfirm)
			}
			if z := zone.Get(zoneCancel); z != nil && z.InBounds(msg) {
				m.focused = FieldCancel
				return m, m.press(FieldCancel)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) press(f Field) tea.Cmd {
	if f == FieldConfirm {
		return func() tea.Msg { return ConfirmMsg{} }
	}
	return func() tea.Msg { return CancelMsg{} }
}

// View renders the modal box.
func (m Model) View() string {
	contentWidth := max(m.config.MinWidth, 40, lipgloss.Width(m.config.Title))
	boxWidth := contentWidth + 2

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	if m.config.Message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
		content.WriteString(msgStyle.Render(wordwrap.String(m.config.Message, contentWidth)))
		content.WriteString("\n\n")
	}
	content.WriteString(m.renderButtons())

	var result strings.Builder
	result.WriteString(titleStyle.Render(m.config.Title))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().Padding(1, 1).Render(content.String()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(result.String())
}

func (m Model) renderButtons() string {
	confirmStyle := styles.PrimaryButtonStyle
	if m.focused == FieldConfirm {
		confirmStyle = styles.PrimaryButtonFocusedStyle
	}
	if m.config.ConfirmVariant == ButtonDanger {
		confirmStyle = styles.DangerButtonStyle
		if m.focused == FieldConfirm {
			confirmStyle = styles.DangerButtonFocusedStyle
		}
	}
	label := m.config.ConfirmLabel
	if label == "" {
		label = "Confirm"
	}

	cancelStyle := styles.SecondaryButtonStyle
	if m.focused == FieldCancel {
		cancelStyle = styles.SecondaryButtonFocusedStyle
	}

	return zone.Mark(zoneConfirm, confirmStyle.Render(label)) + "  " +
		zone.Mark(zoneCancel, cancelStyle.Render("Cancel"))
}

// Overlay renders the modal centered on the given background.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// SetSize updates the viewport size used for centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focused returns the focused button.
func (m Model) Focused() Field {
	return m.focused
}
