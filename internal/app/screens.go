package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/keys"
	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/ui/styles"
	"github.com/zjrosen/backoffice/internal/ui/table"
	"github.com/zjrosen/backoffice/internal/ui/toaster"
)

func menuZone(i int) string { return fmt.Sprintf("menu-%d", i) }

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Menu.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Menu.Up):
		if m.menu > 0 {
			m.menu--
		}
	case key.Matches(msg, keys.Menu.Down):
		if m.menu < len(m.deps.Forms)-1 {
			m.menu++
		}
	case key.Matches(msg, keys.Menu.Select):
		return m.openList(m.menu)
	case key.Matches(msg, keys.Menu.New):
		return m.openHost(m.menu, nil)
	}
	return m, nil
}

func (m Model) mouseMenu(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for i := range m.deps.Forms {
		if zone.Get(menuZone(i)).InBounds(msg) {
			if i == m.menu {
				return m.openList(i)
			}
			m.menu = i
			return m, nil
		}
	}
	return m, nil
}

func (m Model) menuView() string {
	lines := make([]string, 0, len(m.deps.Forms))
	for i, f := range m.deps.Forms {
		line := "  " + f.Title
		if i == m.menu {
			line = styles.SelectionIndicatorStyle.Render("▸ " + f.Title)
		}
		if f.CreateOnly {
			line += styles.HintStyle.Render("  create only")
		}
		lines = append(lines, zone.Mark(menuZone(i), line))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.HintStyle.Render("No forms configured"))
	}

	width := 40
	if m.width > 0 {
		width = min(width, m.width)
	}
	section := styles.Section{
		Content: lines,
		Title:   "Back office",
		Width:   width,
		Focused: true,
	}.Render()
	return lipgloss.JoinVertical(lipgloss.Left, section, m.helpView())
}

// openList switches to the record list of the form at index and starts
// loading it.
func (m Model) openList(index int) (tea.Model, tea.Cmd) {
	m.screen = screenList
	m.current = index
	m.cells = &cells{money: m.money}
	m.listErr = ""
	m.loading = true
	m.table = table.New(m.tableConfig(index)).SetSize(m.width, m.listHeight())
	return m, m.loadRecords(index)
}

func (m Model) listHeight() int {
	return max(m.height-1, 4)
}

func (m Model) tableConfig(index int) table.Config {
	f := m.deps.Forms[index]
	shared := m.cells
	cols := make([]table.Column, 0, len(f.Columns)+1)
	if len(f.Columns) == 0 {
		cols = append(cols, table.Column{Key: form.IDField, Header: "#", Width: 6})
	}
	for _, c := range f.Columns {
		col := table.Column{Key: c.Field, Header: c.Title, Width: c.Width}
		switch {
		case c.Money:
			col.Align = lipgloss.Right
			col.Format = func(rec form.Record, k string) string { return shared.money.Format(rec[k]) }
			col.Style = func(rec form.Record, k string) *lipgloss.Style {
				if shared.money.Negative(rec[k]) {
					return &styles.MoneyNegativeStyle
				}
				return nil
			}
		case c.OptionSet != "":
			set := c.OptionSet
			col.Format = func(rec form.Record, k string) string {
				v := cellText(rec[k])
				if label, ok := shared.labels[set][v]; ok {
					return label
				}
				return v
			}
		}
		cols = append(cols, col)
	}
	return table.Config{
		Columns:      cols,
		Title:        f.Title,
		EmptyMessage: fmt.Sprintf("No %s yet. Press n to add one.", strings.ToLower(f.Title)),
	}
}

// cells is what the list formatters read. It is shared by pointer so rows
// loaded later, and a reloaded locale, reach formatters built earlier.
type cells struct {
	labels map[string]map[string]string
	money  money
}

func cellText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// loadRecords lists the form's collection together with the labels of its
// option-backed columns.
func (m Model) loadRecords(index int) tea.Cmd {
	f := m.deps.Forms[index]
	lister := m.deps.Records(f.Collection)
	loader := m.deps.Options
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		rows, err := lister.List(ctx)
		if err != nil {
			log.ErrorErr(log.CatUI, "listing records failed", err, "collection", f.Collection)
			return recordsLoadedMsg{form: f.Name, err: err}
		}

		labels := make(map[string]map[string]string)
		for _, c := range f.Columns {
			if c.OptionSet == "" || loader == nil {
				continue
			}
			if _, done := labels[c.OptionSet]; done {
				continue
			}
			opts, err := loader.Load(ctx, c.OptionSet)
			if err != nil {
				// Raw values are shown instead.
				log.Warn(log.CatOptions, "labels unavailable", "set", c.OptionSet, "error", err.Error())
				continue
			}
			set := make(map[string]string, len(opts))
			for _, o := range opts {
				set[o.Value] = o.Label
			}
			labels[c.OptionSet] = set
		}
		return recordsLoadedMsg{form: f.Name, rows: rows, labels: labels}
	}
}

func (m Model) handleRecordsLoaded(msg recordsLoadedMsg) Model {
	if m.screen != screenList || m.deps.Forms[m.current].Name != msg.form {
		return m
	}
	m.loading = false
	if msg.err != nil {
		m.listErr = msg.err.Error()
		return m
	}
	m.listErr = ""
	m.cells.labels = msg.labels
	m.table = m.table.SetRows(msg.rows)
	return m
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.List.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.List.Back):
		m.screen = screenMenu
		return m, nil
	case key.Matches(msg, keys.List.Up):
		m.table = m.table.MoveUp()
	case key.Matches(msg, keys.List.Down):
		m.table = m.table.MoveDown()
	case key.Matches(msg, keys.List.New):
		return m.openHost(m.current, nil)
	case key.Matches(msg, keys.List.Edit):
		if m.deps.Forms[m.current].CreateOnly {
			return m, nil
		}
		if rec, ok := m.table.Selected(); ok {
			return m.openHost(m.current, rec)
		}
	case key.Matches(msg, keys.List.Delete):
		return m.deleteSelected()
	case key.Matches(msg, keys.List.Refresh):
		m.loading = true
		return m, m.loadRecords(m.current)
	}
	return m, nil
}

// deleteSelected mounts the selected record and asks for confirmation
// straight away.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	rec, ok := m.table.Selected()
	if !ok {
		return m, nil
	}
	if m.deps.Forms[m.current].CreateOnly {
		return m.refuseDelete()
	}
	next, cmd := m.openHost(m.current, rec)
	if !next.hostOpen {
		return next, cmd
	}
	var confirm tea.Cmd
	next.host, confirm = next.host.ConfirmDelete()
	if !next.host.Confirming() {
		next.hostOpen = false
		return next.refuseDelete()
	}
	return next, tea.Batch(cmd, confirm)
}

func (m Model) refuseDelete() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show("This record cannot be deleted", toaster.StyleError, toaster.DefaultDuration)
	return m, cmd
}

func (m Model) mouseList(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var activated bool
	m.table, activated = m.table.Update(msg)
	if activated && !m.deps.Forms[m.current].CreateOnly {
		if rec, ok := m.table.Selected(); ok {
			return m.openHost(m.current, rec)
		}
	}
	return m, nil
}

func (m Model) listView() string {
	var status string
	switch {
	case m.listErr != "":
		status = styles.ErrorStyle.Render("✗ Could not load records: " + m.listErr)
	case m.loading:
		status = styles.HintStyle.Render("Loading…")
	}
	parts := []string{m.table.View()}
	if status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
