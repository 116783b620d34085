package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestPlace_Center(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	out := Place(Config{Width: 5, Height: 3, Position: Center}, "XX", bg)

	require.Equal(t, "AAAAA\nAXXAA\nAAAAA", out)
}

func TestPlace_ForegroundWiderThanViewport(t *testing.T) {
	bg := "AAA\nAAA\nAAA"
	out := Place(Config{Width: 3, Height: 3, Position: Center}, "XXXXX", bg)

	require.Equal(t, "AAA\nXXXXX\nAAA", out)
}

func TestPlace_Bottom(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA\nAAAAA"
	out := Place(Config{Width: 5, Height: 4, Position: Bottom, PadY: 1}, "XXX", bg)

	lines := strings.Split(out, "\n")
	require.Equal(t, "AXXXA", lines[2])
	require.Equal(t, "AAAAA", lines[3])
}

func TestPlace_BottomRight(t *testing.T) {
	bg := "AAAAAA\nAAAAAA\nAAAAAA"
	out := Place(Config{Width: 6, Height: 3, Position: BottomRight, PadX: 1}, "XX", bg)

	require.Equal(t, "AAAXXA", strings.Split(out, "\n")[2])
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 4, Height: 3, Position: Center}, "XX", "")

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, " XX ", lines[1])
}

func TestPlace_BackgroundShorterThanOffset(t *testing.T) {
	out := Place(Config{Width: 8, Height: 1, Position: Center}, "XX", "A")
	require.Equal(t, "A  XX", out)
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	bg := red.Render("AAAAAAAA")
	out := Place(Config{Width: 8, Height: 1, Position: Center}, "XX", bg)

	require.Equal(t, 8, lipgloss.Width(out))
	require.Contains(t, out, "XX")
	require.Contains(t, out, "\x1b[")
}

func TestPosition_NeverNegative(t *testing.T) {
	x, y := position(Config{Width: 2, Height: 1, Position: BottomRight, PadX: 5, PadY: 5}, 10, 10)
	require.Equal(t, 0, x)
	require.Equal(t, 0, y)
}
