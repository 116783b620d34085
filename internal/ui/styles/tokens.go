package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens users can override under theme.colors in their config.
const (
	// Text hierarchy
	TokenTextPrimary     ColorToken = "text.primary"
	TokenTextSecondary   ColorToken = "text.secondary"
	TokenTextMuted       ColorToken = "text.muted"
	TokenTextPlaceholder ColorToken = "text.placeholder"

	// Borders
	TokenBorderDefault   ColorToken = "border.default"
	TokenBorderHighlight ColorToken = "border.highlight"

	// Status indicators
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	// Selection
	TokenSelectionIndicator  ColorToken = "selection.indicator"
	TokenSelectionBackground ColorToken = "selection.background"

	// Buttons
	TokenButtonText             ColorToken = "button.text"
	TokenButtonPrimaryBg        ColorToken = "button.primary.bg"
	TokenButtonPrimaryFocusBg   ColorToken = "button.primary.focus"
	TokenButtonSecondaryBg      ColorToken = "button.secondary.bg"
	TokenButtonSecondaryFocusBg ColorToken = "button.secondary.focus"
	TokenButtonDangerBg         ColorToken = "button.danger.bg"
	TokenButtonDangerFocusBg    ColorToken = "button.danger.focus"
	TokenButtonDisabledBg       ColorToken = "button.disabled.bg"

	// Overlays/Modals
	TokenOverlayTitle  ColorToken = "overlay.title"
	TokenOverlayBorder ColorToken = "overlay.border"

	// Toast notifications
	TokenToastSuccess ColorToken = "toast.success"
	TokenToastError   ColorToken = "toast.error"
	TokenToastInfo    ColorToken = "toast.info"

	// Record lists
	TokenTableHeader   ColorToken = "table.header"
	TokenMoneyNegative ColorToken = "money.negative"

	// Misc
	TokenSpinner ColorToken = "spinner"
)

// AllTokens returns all valid color tokens for validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextSecondary,
		TokenTextMuted,
		TokenTextPlaceholder,

		TokenBorderDefault,
		TokenBorderHighlight,

		TokenStatusSuccess,
		TokenStatusWarning,
		TokenStatusError,

		TokenSelectionIndicator,
		TokenSelectionBackground,

		TokenButtonText,
		TokenButtonPrimaryBg,
		TokenButtonPrimaryFocusBg,
		TokenButtonSecondaryBg,
		TokenButtonSecondaryFocusBg,
		TokenButtonDangerBg,
		TokenButtonDangerFocusBg,
		TokenButtonDisabledBg,

		TokenOverlayTitle,
		TokenOverlayBorder,

		TokenToastSuccess,
		TokenToastError,
		TokenToastInfo,

		TokenTableHeader,
		TokenMoneyNegative,

		TokenSpinner,
	}
}
