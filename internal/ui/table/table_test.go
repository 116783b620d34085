package table

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backoffice/internal/form"
)

func init() {
	zone.NewGlobal()
	lipgloss.SetColorProfile(termenv.Ascii)
}

func contacts(n int) []form.Record {
	names := []string{"Ana Reyes", "Marta Diaz", "Luis Gomez", "Eva Ruiz", "Tom Hale", "Ida Berg"}
	rows := make([]form.Record, n)
	for i := range n {
		rows[i] = form.Record{"id": string(rune('1' + i)), "name": names[i%len(names)], "amount": -1.5}
	}
	return rows
}

func newTable() Model {
	return New(Config{
		Title: "Contacts",
		Columns: []Column{
			{Key: "name", Header: "Name", Width: 12},
			{Key: "amount", Header: "Amount", Align: lipgloss.Right},
		},
	})
}

func TestNew_PanicsWithoutColumns(t *testing.T) {
	require.Panics(t, func() { New(Config{}) })
}

func TestView_EmptyMessage(t *testing.T) {
	view := newTable().SetSize(40, 6).View()
	require.Contains(t, view, "Contacts")
	require.Contains(t, view, "No records")
}

func TestView_HeaderAndSelection(t *testing.T) {
	m := newTable().SetRows(contacts(3)).SetSize(40, 8)
	view := m.View()
	lines := strings.Split(view, "\n")

	require.Contains(t, lines[0], "Contacts (1/3)")
	require.Contains(t, lines[1], "Name")
	require.Contains(t, lines[1], "Amount")
	require.Contains(t, lines[2], "▸ Ana Reyes")
	require.Contains(t, lines[3], "  Marta Diaz")
	for _, l := range lines {
		require.Equal(t, 40, lipgloss.Width(l))
	}
}

func TestCursorMovementClamps(t *testing.T) {
	m := newTable().SetRows(contacts(3)).SetSize(40, 8)
	m = m.MoveUp()
	require.Equal(t, 0, m.Cursor())
	m = m.MoveDown().MoveDown().MoveDown()
	require.Equal(t, 2, m.Cursor())

	rec, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, "Luis Gomez", rec["name"])
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	// Height 6 leaves three data rows.
	m := newTable().SetRows(contacts(6)).SetSize(40, 6)
	for range 4 {
		m = m.MoveDown()
	}
	view := m.View()
	require.Contains(t, view, "▸ Tom Hale")
	require.NotContains(t, view, "Ana Reyes")
}

func TestSetRowsKeepsSelectedIdentity(t *testing.T) {
	m := newTable().SetRows(contacts(4)).SetSize(40, 10).Select(2)
	rows := contacts(4)
	// Drop the first row; the selected record moves up one index.
	m = m.SetRows(rows[1:])
	require.Equal(t, 1, m.Cursor())

	m = m.SetRows(contacts(1))
	require.Equal(t, 0, m.Cursor())
}

func TestFormatAndStyle(t *testing.T) {
	red := lipgloss.NewStyle().Bold(true)
	m := New(Config{Columns: []Column{{
		Key:    "amount",
		Header: "Amount",
		Width:  10,
		Format: func(rec form.Record, key string) string { return "$-1.50" },
		Style:  func(rec form.Record, key string) *lipgloss.Style { return &red },
	}}}).SetRows(contacts(2)).SetSize(20, 6)

	require.Contains(t, m.View(), "$-1.50")
}

func TestColumnWidths(t *testing.T) {
	cols := []Column{{Key: "a", Width: 10}, {Key: "b"}, {Key: "c", Width: 5}}
	require.Equal(t, []int{10, 13, 5}, columnWidths(cols, 30))

	// Too narrow: fixed columns shrink from the right, flex keeps a minimum.
	require.Equal(t, []int{9, 3, 3}, columnWidths([]Column{{Key: "a", Width: 10}, {Key: "b"}, {Key: "c", Width: 5}}, 14))
}

func TestAlignText(t *testing.T) {
	require.Equal(t, "ab  ", alignText("ab", 4, lipgloss.Left))
	require.Equal(t, "  ab", alignText("ab", 4, lipgloss.Right))
	require.Equal(t, " ab ", alignText("ab", 4, lipgloss.Center))
	require.Equal(t, "abcdef", alignText("abcdef", 4, lipgloss.Left))
}

func TestTruncateCell(t *testing.T) {
	require.Equal(t, "Housekeeping", truncateCell("Housekeeping", 12))
	require.Equal(t, "House...", truncateCell("Housekeeping", 8))
	// Wide runes take two columns each.
	require.Equal(t, "東京...", truncateCell("東京都庁舎", 7))
	require.Equal(t, "...", truncateCell("Housekeeping", 3))
}
