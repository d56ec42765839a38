package styles

// Base palettes. The accent, header and badge roles are placeholders until the
// dashboard theme is layered on with WithPalette.
var (
	DefaultTheme = Theme{
		Name: "default",
		Tokens: ThemeTokens{
			Background: "#0B0F14",
			Panel:      "#121821",
			Text:       "#E6EDF3",
			TextMuted:  "#8B9AAE",
			Border:     "#223043",
			Accent:     "#c96a2b",
			Accent2:    "#dc9e75",
			Focus:      "#dc9e75",
			HeaderBG:   "#c96a2b",
			HeaderText: "#ffffff",
			Badge:      "#c96a2b",
			Badge2:     "#cd763c",
			Success:    "#3FB950",
			Warning:    "#D29922",
			Error:      "#F85149",
			Info:       "#58A6FF",
		},
	}

	// HighContrastTheme keeps a fixed yellow focus ring whatever the accent is.
	HighContrastTheme = Theme{
		Name:       "high-contrast",
		FixedFocus: true,
		Tokens: ThemeTokens{
			Background: "#000000",
			Panel:      "#0A0A0A",
			Text:       "#FFFFFF",
			TextMuted:  "#C0C0C0",
			Border:     "#FFFFFF",
			Accent:     "#c96a2b",
			Accent2:    "#dc9e75",
			Focus:      "#FFD400",
			HeaderBG:   "#c96a2b",
			HeaderText: "#ffffff",
			Badge:      "#c96a2b",
			Badge2:     "#cd763c",
			Success:    "#00FF5A",
			Warning:    "#FFB000",
			Error:      "#FF4040",
			Info:       "#66CCFF",
		},
	}
)
