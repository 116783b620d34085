package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

// indicatorWidth is the gutter holding the cursor marker.
const indicatorWidth = 2

// View renders the table inside a titled border.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	innerWidth := max(m.width-2, 1)
	widths := columnWidths(m.config.Columns, innerWidth-indicatorWidth)

	lines := []string{strings.Repeat(" ", indicatorWidth) + styles.TableHeaderStyle.Render(renderHeader(m.config.Columns, widths))}

	if len(m.rows) == 0 {
		lines = append(lines, "", centered(styles.HintStyle.Render(m.config.EmptyMessage), innerWidth))
	} else {
		end := min(m.offset+m.visibleRows(), len(m.rows))
		for i := m.offset; i < end; i++ {
			lines = append(lines, zone.Mark(m.zoneID(i), m.renderRow(i, widths, innerWidth)))
		}
	}
	for len(lines) < m.height-2 {
		lines = append(lines, "")
	}

	title := m.config.Title
	hint := ""
	if len(m.rows) > 0 {
		hint = fmt.Sprintf("%d/%d", m.cursor+1, len(m.rows))
	}
	return styles.Section{
		Content: lines,
		Title:   title,
		Hint:    hint,
		Width:   m.width,
		Focused: true,
	}.Render()
}

func (m Model) renderRow(i int, widths []int, innerWidth int) string {
	rec := m.rows[i]
	selected := i == m.cursor

	parts := make([]string, len(m.config.Columns))
	for c, col := range m.config.Columns {
		text := cellText(rec, col)
		cell := alignText(truncateCell(text, widths[c]), widths[c], col.Align)
		if !selected && col.Style != nil {
			if st := col.Style(rec, col.Key); st != nil {
				cell = st.Render(cell)
			}
		}
		parts[c] = cell
	}
	row := strings.Join(parts, " ")

	if !selected {
		return strings.Repeat(" ", indicatorWidth) + row
	}
	pad := max(innerWidth-indicatorWidth-lipgloss.Width(row), 0)
	return styles.SelectionIndicatorStyle.Render("▸ ") + styles.TableSelectedStyle.Render(row+strings.Repeat(" ", pad))
}

// truncateCell cuts plain cell text to width display columns, counting wide
// runes as two.
func truncateCell(s string, width int) string {
	if width <= 3 {
		return styles.TruncateString(s, width)
	}
	return runewidth.Truncate(s, width, "...")
}

func cellText(rec form.Record, col Column) string {
	if col.Format != nil {
		return col.Format(rec, col.Key)
	}
	v, ok := rec[col.Key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func renderHeader(cols []Column, widths []int) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = alignText(styles.TruncateString(col.Header, widths[i]), widths[i], col.Align)
	}
	return strings.Join(parts, " ")
}

// columnWidths gives fixed columns their width and shares what is left
// between flex columns. Fixed columns shrink when the table is too narrow.
func columnWidths(cols []Column, available int) []int {
	widths := make([]int, len(cols))
	available -= len(cols) - 1 // separators
	fixed, flex := 0, 0
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			fixed += c.Width
		} else {
			flex++
		}
	}

	if fixed > available {
		// Shrink from the last fixed column backwards, keeping at least 3.
		over := fixed - available
		for i := len(cols) - 1; i >= 0 && over > 0; i-- {
			if widths[i] == 0 {
				continue
			}
			cut := min(over, max(widths[i]-3, 0))
			widths[i] -= cut
			over -= cut
		}
	}

	if flex > 0 {
		remaining := max(available-fixed, 0)
		share := max(remaining/flex, 3)
		for i := range widths {
			if cols[i].Width == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func alignText(text string, width int, align lipgloss.Position) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := width - w
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", padding) + text
	case lipgloss.Center:
		left := padding / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", padding-left)
	default:
		return text + strings.Repeat(" ", padding)
	}
}

func centered(text string, width int) string {
	pad := max((width-lipgloss.Width(text))/2, 0)
	return strings.Repeat(" ", pad) + text
}
