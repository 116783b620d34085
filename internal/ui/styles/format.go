package styles

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// TruncateString cuts s to maxWidth display columns and marks the cut with
// "...". Escape sequences in styled text are kept intact.
func TruncateString(s string, maxWidth int) string {
	switch {
	case maxWidth < 1:
		return ""
	case ansi.StringWidth(s) <= maxWidth:
		return s
	case maxWidth <= 3:
		return strings.Repeat(".", maxWidth)
	}
	return ansi.Truncate(s, maxWidth, "...")
}
