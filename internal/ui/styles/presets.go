package styles

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":       DefaultPreset,
	"nord":          NordPreset,
	"dracula":       DraculaPreset,
	"high-contrast": HighContrastPreset,
}

// DefaultPreset is the stock backoffice color scheme.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default backoffice theme",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#CCCCCC",
		TokenTextSecondary:   "#BBBBBB",
		TokenTextMuted:       "#696969",
		TokenTextPlaceholder: "#777777",

		TokenBorderDefault:   "#696969",
		TokenBorderHighlight: "#54A0FF",

		TokenStatusSuccess: "#73F59F",
		TokenStatusWarning: "#FECA57",
		TokenStatusError:   "#FF8787",

		TokenSelectionIndicator:  "#FFFFFF",
		TokenSelectionBackground: "#1A5276",

		TokenButtonText:             "#FFFFFF",
		TokenButtonPrimaryBg:        "#1A5276",
		TokenButtonPrimaryFocusBg:   "#3498DB",
		TokenButtonSecondaryBg:      "#2D3436",
		TokenButtonSecondaryFocusBg: "#636E72",
		TokenButtonDangerBg:         "#922B21",
		TokenButtonDangerFocusBg:    "#E74C3C",
		TokenButtonDisabledBg:       "#2D2D2D",

		TokenOverlayTitle:  "#C9C9C9",
		TokenOverlayBorder: "#8C8C8C",

		TokenToastSuccess: "#73F59F",
		TokenToastError:   "#FF8787",
		TokenToastInfo:    "#54A0FF",

		TokenTableHeader:   "#54A0FF",
		TokenMoneyNegative: "#FF8787",

		TokenSpinner: "#FFFFFF",
	},
}

// NordPreset is the Nord theme.
// Colors from: https://www.nordtheme.com/docs/colors-and-palettes
var NordPreset = Preset{
	Name:        "nord",
	Description: "Arctic, north-bluish palette",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#ECEFF4",
		TokenTextSecondary:   "#E5E9F0",
		TokenTextMuted:       "#4C566A",
		TokenTextPlaceholder: "#616E88",

		TokenBorderDefault:   "#4C566A",
		TokenBorderHighlight: "#88C0D0",

		TokenStatusSuccess: "#A3BE8C",
		TokenStatusWarning: "#EBCB8B",
		TokenStatusError:   "#BF616A",

		TokenSelectionIndicator:  "#88C0D0",
		TokenSelectionBackground: "#434C5E",

		TokenButtonText:             "#ECEFF4",
		TokenButtonPrimaryBg:        "#5E81AC",
		TokenButtonPrimaryFocusBg:   "#81A1C1",
		TokenButtonSecondaryBg:      "#3B4252",
		TokenButtonSecondaryFocusBg: "#4C566A",
		TokenButtonDangerBg:         "#A3545C",
		TokenButtonDangerFocusBg:    "#BF616A",
		TokenButtonDisabledBg:       "#2E3440",

		TokenOverlayTitle:  "#ECEFF4",
		TokenOverlayBorder: "#4C566A",

		TokenToastSuccess: "#A3BE8C",
		TokenToastError:   "#BF616A",
		TokenToastInfo:    "#88C0D0",

		TokenTableHeader:   "#88C0D0",
		TokenMoneyNegative: "#BF616A",

		TokenSpinner: "#88C0D0",
	},
}

// DraculaPreset is the Dracula theme.
// Colors from: https://draculatheme.com/contribute
var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#F8F8F2",
		TokenTextSecondary:   "#F8F8F2",
		TokenTextMuted:       "#6272A4",
		TokenTextPlaceholder: "#6272A4",

		TokenBorderDefault:   "#6272A4",
		TokenBorderHighlight: "#BD93F9",

		TokenStatusSuccess: "#50FA7B",
		TokenStatusWarning: "#F1FA8C",
		TokenStatusError:   "#FF5555",

		TokenSelectionIndicator:  "#FF79C6",
		TokenSelectionBackground: "#44475A",

		TokenButtonText:             "#F8F8F2",
		TokenButtonPrimaryBg:        "#6272A4",
		TokenButtonPrimaryFocusBg:   "#BD93F9",
		TokenButtonSecondaryBg:      "#44475A",
		TokenButtonSecondaryFocusBg: "#6272A4",
		TokenButtonDangerBg:         "#B34747",
		TokenButtonDangerFocusBg:    "#FF5555",
		TokenButtonDisabledBg:       "#282A36",

		TokenOverlayTitle:  "#F8F8F2",
		TokenOverlayBorder: "#6272A4",

		TokenToastSuccess: "#50FA7B",
		TokenToastError:   "#FF5555",
		TokenToastInfo:    "#8BE9FD",

		TokenTableHeader:   "#BD93F9",
		TokenMoneyNegative: "#FF5555",

		TokenSpinner: "#FF79C6",
	},
}

// HighContrastPreset maximizes readability.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "High contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenTextPrimary:     "#FFFFFF",
		TokenTextSecondary:   "#FFFFFF",
		TokenTextMuted:       "#C0C0C0",
		TokenTextPlaceholder: "#C0C0C0",

		TokenBorderDefault:   "#FFFFFF",
		TokenBorderHighlight: "#FFFF00",

		TokenStatusSuccess: "#00FF00",
		TokenStatusWarning: "#FFFF00",
		TokenStatusError:   "#FF0000",

		TokenSelectionIndicator:  "#FFFF00",
		TokenSelectionBackground: "#0000FF",

		TokenButtonText:             "#FFFFFF",
		TokenButtonPrimaryBg:        "#0000FF",
		TokenButtonPrimaryFocusBg:   "#0066FF",
		TokenButtonSecondaryBg:      "#333333",
		TokenButtonSecondaryFocusBg: "#666666",
		TokenButtonDangerBg:         "#CC0000",
		TokenButtonDangerFocusBg:    "#FF0000",
		TokenButtonDisabledBg:       "#1A1A1A",

		TokenOverlayTitle:  "#FFFFFF",
		TokenOverlayBorder: "#FFFFFF",

		TokenToastSuccess: "#00FF00",
		TokenToastError:   "#FF0000",
		TokenToastInfo:    "#00FFFF",

		TokenTableHeader:   "#FFFF00",
		TokenMoneyNegative: "#FF0000",

		TokenSpinner: "#FFFF00",
	},
}
