// Package keys contains keybinding definitions.
package keys

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// MenuKeyMap drives the form picker on the start screen.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	New    key.Binding
	Quit   key.Binding
}

// ShortHelp implements help.KeyMap.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.New, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Select, k.New, k.Quit}}
}

// ListKeyMap drives a collection's record list.
type ListKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Edit    key.Binding
	New     key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap.
func (k ListKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.New, k.Delete, k.Refresh, k.Back}
}

// FullHelp implements help.KeyMap.
func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Edit, k.New, k.Delete, k.Refresh}, {k.Back, k.Quit}}
}

// FormKeyMap drives the form dialog.
type FormKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	OptPrev  key.Binding
	OptNext  key.Binding
	Clear    key.Binding
	Activate key.Binding
	Save     key.Binding
	Delete   key.Binding
	Cancel   key.Binding
}

// ShortHelp implements help.KeyMap.
func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Save, k.Delete, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.OptPrev, k.OptNext, k.Clear}, {k.Activate, k.Save, k.Delete, k.Cancel}}
}

// Package-level bindings, adjusted once at startup by ApplyConfig.
var (
	Menu MenuKeyMap
	List ListKeyMap
	Form FormKeyMap
)

func init() {
	ResetForTesting()
}

func defaultMenu() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open records"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new record"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func defaultList() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func defaultForm() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		OptPrev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous option"),
		),
		OptNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next option"),
		),
		Clear: key.NewBinding(
			key.WithKeys("backspace", "delete"),
			key.WithHelp("backspace", "clear selection"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "press button"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ApplyConfig rebinds the form's save and delete keys. Empty strings keep the defaults.
func ApplyConfig(save, del string) {
	if save = translateToTerminal(save); save != "" {
		Form.Save = key.NewBinding(
			key.WithKeys(save),
			key.WithHelp(translateToDisplay(save), "save"),
		)
	}
	if del = translateToTerminal(del); del != "" {
		Form.Delete = key.NewBinding(
			key.WithKeys(del),
			key.WithHelp(translateToDisplay(del), "delete"),
		)
	}
}

// ResetForTesting restores every key map to its defaults.
func ResetForTesting() {
	Menu = defaultMenu()
	List = defaultList()
	Form = defaultForm()
}

// translateToTerminal maps user-facing names to what Bubble Tea reports.
// Terminals deliver ctrl+space as ctrl+@.
func translateToTerminal(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	switch k {
	case "ctrl+space", "ctrl+ ":
		return "ctrl+@"
	}
	return k
}

func translateToDisplay(k string) string {
	if k == "ctrl+@" {
		return "ctrl+space"
	}
	return k
}
