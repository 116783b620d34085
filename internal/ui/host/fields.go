package host

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

// fieldView is the widget state for one form field. Text-like fields own a
// textinput; select and read-only fields render straight from the snapshot.
type fieldView struct {
	field form.Field
	input textinput.Model
}

func (f fieldView) editable() bool { return !f.field.ReadOnly }

func (f fieldView) isSelect() bool { return f.field.Kind == form.KindSelect }

func (f fieldView) hasInput() bool { return f.editable() && !f.isSelect() }

func newFieldView(field form.Field, value string, width int) fieldView {
	fv := fieldView{field: field}
	if !fv.hasInput() {
		return fv
	}
	ti := textinput.New()
	ti.Prompt = " "
	ti.Width = max(width-4, 1)
	ti.CharLimit = 256
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor)
	switch field.Kind {
	case form.KindDate:
		ti.Placeholder = "YYYY-MM-DD"
	case form.KindNumber:
		ti.Placeholder = "0"
	}
	if field.Hint != "" && field.Hint != "optional" {
		ti.Placeholder = field.Hint
	}
	ti.SetValue(value)
	fv.input = ti
	return fv
}

// options returns the choices a select field cycles through, and whether
// they are available yet.
func (m Model) options(f form.Field) ([]form.Option, bool) {
	if f.OptionSet == "" {
		return f.Choices, true
	}
	set, ok := m.ctrl.OptionSet(f.OptionSet)
	if !ok || !set.Ready() {
		return nil, false
	}
	return set.Options(), true
}

// cycle returns the value delta steps away from current in opts. From an
// empty or unknown value, forward lands on the first option and backward on
// the last.
func cycle(opts []form.Option, current string, delta int) string {
	if len(opts) == 0 {
		return current
	}
	idx := -1
	for i, o := range opts {
		if o.Value == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta > 0 {
			return opts[0].Value
		}
		return opts[len(opts)-1].Value
	}
	n := len(opts)
	return opts[((idx+delta)%n+n)%n].Value
}

// displayValue is what a select or read-only field shows for value.
func (m Model) displayValue(f form.Field, value string) string {
	if f.Kind != form.KindSelect || value == "" {
		return value
	}
	if f.OptionSet == "" {
		for _, o := range f.Choices {
			if o.Value == value {
				return o.Label
			}
		}
		return value
	}
	if set, ok := m.ctrl.OptionSet(f.OptionSet); ok && set.Ready() {
		return set.Label(value)
	}
	return value
}

// syncInputs copies controller values into the text inputs, as after a
// reset.
func (m *Model) syncInputs() {
	values := m.ctrl.Values()
	for i := range m.fields {
		if m.fields[i].hasInput() {
			m.fields[i].input.SetValue(values[m.fields[i].field.Name])
		}
	}
}
