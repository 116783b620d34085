package host

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/keys"
	"github.com/zjrosen/backoffice/internal/ui/overlay"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

// View renders the dialog box.
func (m Model) View() string {
	width := m.dialogWidth
	contentWidth := width - 2
	snap := m.ctrl.Snapshot()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor)
	borderStyle := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)
	pad := lipgloss.NewStyle().PaddingLeft(1)

	title := m.cfg.Definition.Title
	if snap.Identity != "" {
		title = fmt.Sprintf("Edit %s #%s", title, snap.Identity)
	} else {
		title = "New " + title
	}

	var content strings.Builder
	content.WriteString(pad.Render(titleStyle.Render(title)))
	content.WriteString("\n")
	content.WriteString(borderStyle.Render(strings.Repeat("─", width)))
	content.WriteString("\n")

	focused, hasField := m.focusedField()
	for i := range m.fields {
		content.WriteString(pad.Render(m.renderField(i, snap, hasField && focused == i, contentWidth-2)))
		content.WriteString("\n")
	}

	if snap.SubmitError != "" {
		content.WriteString("\n")
		msg := wordwrap.String("✗ "+snap.SubmitError, contentWidth-2)
		content.WriteString(pad.Render(styles.ErrorStyle.Render(msg)))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(pad.Render(m.renderButtons(snap)))
	content.WriteString("\n\n")
	content.WriteString(pad.Render(m.help.ShortHelpView(keys.Form.ShortHelp())))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content.String())
}

func (m Model) renderField(i int, snap form.Snapshot, focused bool, width int) string {
	fv := m.fields[i]
	f := fv.field
	state := snap.Fields[f.Name]

	hint := f.Hint
	if f.ReadOnly {
		hint = "auto"
	}

	var row string
	switch {
	case f.ReadOnly:
		row = " " + lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(m.displayValue(f, state.Value))
	case fv.isSelect():
		row = m.renderSelect(f, state.Value, focused)
	default:
		row = fv.input.View()
	}

	rows := []string{row}
	if loadErr, ok := snap.LoadErrors[f.Name]; ok {
		rows = append(rows, " "+styles.FieldErrorStyle.Render(loadErr))
	}

	section := styles.Section{
		Content: rows,
		Title:   f.Label,
		Hint:    hint,
		Width:   width,
		Focused: focused,
		Invalid: state.Error != "",
	}.Render()

	if state.Error != "" {
		section += "\n" + styles.FieldErrorStyle.Render(" "+state.Error)
	}
	if !f.ReadOnly {
		section = zone.Mark(fmt.Sprintf("%s%d", zoneField, i), section)
	}
	return section
}

func (m Model) renderSelect(f form.Field, value string, focused bool) string {
	_, ready := m.options(f)
	if !ready {
		if set, ok := m.ctrl.OptionSet(f.OptionSet); ok && set.State() == form.OptionsFailed {
			if value == "" {
				return " " + styles.HintStyle.Render("options unavailable")
			}
			return " " + value
		}
		return " " + m.spinner.View() + " " + styles.HintStyle.Render("loading options…")
	}

	label := m.displayValue(f, value)
	if label == "" {
		label = styles.HintStyle.Render("none")
	}
	if !focused {
		return " " + label
	}
	arrow := styles.SelectionIndicatorStyle
	return " " + arrow.Render("‹") + " " + label + " " + arrow.Render("›")
}

func (m Model) renderButtons(snap form.Snapshot) string {
	saving := snap.Status == form.StatusSaving
	current, onButton := m.focusedButton()

	var out []string
	for _, b := range m.buttons() {
		focused := onButton && current == b
		var label string
		var style lipgloss.Style
		switch b {
		case buttonSave:
			label = "Save"
			style = styles.PrimaryButtonStyle
			if focused {
				style = styles.PrimaryButtonFocusedStyle
			}
		case buttonDelete:
			label = "Delete"
			style = styles.DangerButtonStyle
			if focused {
				style = styles.DangerButtonFocusedStyle
			}
		default:
			label = "Cancel"
			style = styles.SecondaryButtonStyle
			if focused {
				style = styles.SecondaryButtonFocusedStyle
			}
		}
		if saving {
			style = styles.DisabledButtonStyle
		}
		out = append(out, zone.Mark(b.zone(), style.Render(label)))
	}

	row := strings.Join(out, "  ")
	if saving {
		row += "  " + m.spinner.View() + " " + styles.HintStyle.Render("Saving…")
	}
	return row
}

// Overlay renders the dialog centered over bg, with the delete confirmation
// on top when it is open.
func (m Model) Overlay(bg string) string {
	view := overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
	if m.confirming {
		view = m.confirm.Overlay(view)
	}
	return view
}
