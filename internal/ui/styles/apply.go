package styles

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styleRebuilders holds callbacks to rebuild styles in other packages.
var styleRebuilders []func()

// RegisterStyleRebuilder adds a callback that will be called after ApplyTheme
// updates colors. Use this to rebuild styles in packages that depend on styles.
func RegisterStyleRebuilder(fn func()) {
	styleRebuilders = append(styleRebuilders, fn)
}

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset string
	Colors map[string]string
}

// ApplyTheme applies a complete theme configuration.
// Order of application:
// 1. Start with default colors
// 2. Apply preset (if specified)
// 3. Apply individual color overrides
// 4. Rebuild all Style objects
//
// On error nothing is changed.
func ApplyTheme(cfg ThemeConfig) error {
	colors := maps.Clone(DefaultPreset.Colors)

	if cfg.Preset != "" && cfg.Preset != "default" {
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return fmt.Errorf("unknown theme preset: %s", cfg.Preset)
		}
		maps.Copy(colors, preset.Colors)
	}

	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !isValidToken(token) {
			return fmt.Errorf("unknown color token: %s", key)
		}
		if !isValidHexColor(value) {
			return fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}

	applyColors(colors)
	rebuildStyles()
	return nil
}

func applyColors(colors map[ColorToken]string) {
	// Themes use the same color for light and dark terminals.
	set := func(dst *lipgloss.AdaptiveColor, token ColorToken) {
		if c, ok := colors[token]; ok {
			*dst = lipgloss.AdaptiveColor{Light: c, Dark: c}
		}
	}

	set(&TextPrimaryColor, TokenTextPrimary)
	set(&TextSecondaryColor, TokenTextSecondary)
	set(&TextMutedColor, TokenTextMuted)
	set(&TextPlaceholderColor, TokenTextPlaceholder)

	set(&BorderDefaultColor, TokenBorderDefault)
	set(&BorderHighlightFocusColor, TokenBorderHighlight)

	set(&StatusSuccessColor, TokenStatusSuccess)
	set(&StatusWarningColor, TokenStatusWarning)
	set(&StatusErrorColor, TokenStatusError)

	set(&SelectionIndicatorColor, TokenSelectionIndicator)
	set(&SelectionBackgroundColor, TokenSelectionBackground)

	set(&ButtonTextColor, TokenButtonText)
	set(&ButtonPrimaryBgColor, TokenButtonPrimaryBg)
	set(&ButtonPrimaryFocusBgColor, TokenButtonPrimaryFocusBg)
	set(&ButtonSecondaryBgColor, TokenButtonSecondaryBg)
	set(&ButtonSecondaryFocusBgColor, TokenButtonSecondaryFocusBg)
	set(&ButtonDangerBgColor, TokenButtonDangerBg)
	set(&ButtonDangerFocusBgColor, TokenButtonDangerFocusBg)
	set(&ButtonDisabledBgColor, TokenButtonDisabledBg)

	set(&OverlayTitleColor, TokenOverlayTitle)
	set(&OverlayBorderColor, TokenOverlayBorder)

	set(&ToastBorderSuccessColor, TokenToastSuccess)
	set(&ToastBorderErrorColor, TokenToastError)
	set(&ToastBorderInfoColor, TokenToastInfo)

	set(&TableHeaderColor, TokenTableHeader)
	set(&MoneyNegativeColor, TokenMoneyNegative)

	set(&SpinnerColor, TokenSpinner)
}

// rebuildStyles recreates all Style objects with updated colors.
// This is necessary because lipgloss.Style objects capture colors at creation time.
func rebuildStyles() {
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonPrimaryBgColor)

	PrimaryButtonFocusedStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonPrimaryFocusBgColor).
		Underline(true).
		UnderlineSpaces(true)

	SecondaryButtonStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonSecondaryBgColor)

	SecondaryButtonFocusedStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonSecondaryFocusBgColor).
		Underline(true).
		UnderlineSpaces(true)

	DangerButtonStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonDangerBgColor)

	DangerButtonFocusedStyle = baseButtonStyle.
		Foreground(ButtonTextColor).
		Background(ButtonDangerFocusBgColor).
		Underline(true).
		UnderlineSpaces(true)

	DisabledButtonStyle = baseButtonStyle.
		Foreground(TextMutedColor).
		Background(ButtonDisabledBgColor)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(StatusErrorColor).
		Bold(true)

	FieldErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	HintStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(TableHeaderColor)
	TableSelectedStyle = lipgloss.NewStyle().
		Foreground(ButtonTextColor).
		Background(SelectionBackgroundColor)
	MoneyNegativeStyle = lipgloss.NewStyle().Foreground(MoneyNegativeColor)

	for _, fn := range styleRebuilders {
		fn()
	}
}

func isValidToken(token ColorToken) bool {
	return slices.Contains(AllTokens(), token)
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
