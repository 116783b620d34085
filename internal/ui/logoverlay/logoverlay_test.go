package logoverlay

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backoffice/internal/log"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func event(entry string) log.LogEvent {
	return log.LogEvent{Payload: entry, Timestamp: time.Now()}
}

func shown(t *testing.T) Model {
	t.Helper()
	m := New()
	m.SetSize(100, 40)
	m.Toggle()
	require.True(t, m.Visible())
	return m
}

func TestEventsAreBufferedWhileHidden(t *testing.T) {
	m := New()
	m, _ = m.Update(event("2026-10-18T10:00:00 [INFO] [form] submission succeeded\n"))
	require.Equal(t, []string{"2026-10-18T10:00:00 [INFO] [form] submission succeeded"}, m.Entries())
	require.Empty(t, m.View())
}

func TestBufferIsBounded(t *testing.T) {
	m := New()
	for i := range MaxEntries + 10 {
		m.Append(fmt.Sprintf("[DEBUG] [ui] entry %d", i))
	}
	require.Len(t, m.Entries(), MaxEntries)
	require.Equal(t, "[DEBUG] [ui] entry 10", m.Entries()[0])
}

func TestLevelFilter(t *testing.T) {
	m := shown(t)
	m.Append("[DEBUG] [ui] form mounted")
	m.Append("[ERROR] [form] submission failed")

	require.Contains(t, m.View(), "form mounted")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	view := m.View()
	require.NotContains(t, view, "form mounted")
	require.Contains(t, view, "submission failed")
}

func TestClearAndClose(t *testing.T) {
	m := shown(t)
	m.Append("[WARN] [config] reload failed")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.Empty(t, m.Entries())
	require.Contains(t, m.View(), "No logs to display")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Visible())
	require.Equal(t, CloseMsg{}, cmd())
}

func TestLevelOf(t *testing.T) {
	require.Equal(t, log.LevelDebug, levelOf("x [DEBUG] y"))
	require.Equal(t, log.LevelInfo, levelOf("x [INFO] y"))
	require.Equal(t, log.LevelWarn, levelOf("x [WARN] y"))
	require.Equal(t, log.LevelError, levelOf("no level"))
}
