// Package table renders a selectable, scrolling list of records.
//
// Columns supply a Format callback that turns a record into cell text; the
// table owns layout, truncation, the header row and the cursor. Rows are
// wrapped with bubblezone marks so a click can select them.
package table

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/backoffice/internal/form"
)

// Column is one table column.
type Column struct {
	Key    string // record field, passed back to Format
	Header string
	Width  int // fixed width; 0 takes the remaining space
	Align  lipgloss.Position
	// Format renders the cell text. Nil shows the raw field value.
	Format func(rec form.Record, key string) string
	// Style colours the cell after alignment, e.g. negative amounts. Optional.
	Style func(rec form.Record, key string) *lipgloss.Style
}

// Config defines the table.
type Config struct {
	Columns      []Column
	Title        string
	EmptyMessage string // default "No records"
	// ZonePrefix namespaces row zone ids. Default "row-".
	ZonePrefix string
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if len(c.Columns) == 0 {
		return errors.New("table config: at least one column is required")
	}
	for _, col := range c.Columns {
		if col.Key == "" {
			return fmt.Errorf("table config: column %q has no key", col.Header)
		}
	}
	return nil
}

// Model holds rows, cursor and scroll offset.
type Model struct {
	config Config
	rows   []form.Record
	cursor int
	offset int
	width  int
	height int
}

// New creates a table. It panics on an invalid config, which is a
// programming error.
func New(cfg Config) Model {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No records"
	}
	if cfg.ZonePrefix == "" {
		cfg.ZonePrefix = "row-"
	}
	return Model{config: cfg}
}

// SetRows replaces the rows. The cursor stays on the record with the same
// identity when it is still present, otherwise it is clamped.
func (m Model) SetRows(rows []form.Record) Model {
	var selectedID string
	if rec, ok := m.Selected(); ok {
		selectedID = rec.ID()
	}
	m.rows = rows
	if selectedID != "" {
		for i, r := range rows {
			if r.ID() == selectedID {
				m.cursor = i
				return m.ensureVisible()
			}
		}
	}
	m.cursor = min(m.cursor, max(len(rows)-1, 0))
	return m.ensureVisible()
}

// SetSize sets the outer dimensions, border included.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m.ensureVisible()
}

// Rows returns the current rows.
func (m Model) Rows() []form.Record { return m.rows }

// Cursor returns the selected row index.
func (m Model) Cursor() int { return m.cursor }

// Selected returns the record under the cursor.
func (m Model) Selected() (form.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.cursor], true
}

// MoveUp moves the cursor one row up.
func (m Model) MoveUp() Model {
	if m.cursor > 0 {
		m.cursor--
	}
	return m.ensureVisible()
}

// MoveDown moves the cursor one row down.
func (m Model) MoveDown() Model {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
	}
	return m.ensureVisible()
}

// Select moves the cursor to index.
func (m Model) Select(index int) Model {
	if index >= 0 && index < len(m.rows) {
		m.cursor = index
	}
	return m.ensureVisible()
}

// Update handles mouse clicks and the wheel. It returns true when the
// clicked row was already selected, so callers can treat it as activation.
func (m Model) Update(msg tea.Msg) (Model, bool) {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return m, false
	}
	switch mouse.Button {
	case tea.MouseButtonWheelUp:
		return m.MoveUp(), false
	case tea.MouseButtonWheelDown:
		return m.MoveDown(), false
	case tea.MouseButtonLeft:
		if mouse.Action != tea.MouseActionRelease {
			return m, false
		}
		for i := m.offset; i < min(m.offset+m.visibleRows(), len(m.rows)); i++ {
			if z := zone.Get(m.zoneID(i)); z != nil && z.InBounds(mouse) {
				again := i == m.cursor
				return m.Select(i), again
			}
		}
	}
	return m, false
}

func (m Model) zoneID(i int) string {
	return fmt.Sprintf("%s%d", m.config.ZonePrefix, i)
}

// visibleRows is the number of data rows that fit: height minus the border
// and the header.
func (m Model) visibleRows() int {
	return max(m.height-3, 1)
}

func (m Model) ensureVisible() Model {
	n := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-n), 0)
	return m
}
