package theme

import "github.com/identiq/identiq/internal/color"

// Style variable names published by Apply.
const (
	VarAccent           = "--accent"
	VarAccentRGB        = "--accent-rgb"
	VarAccent2          = "--accent-2"
	VarAccentForeground = "--accent-foreground"
	VarHeaderBG         = "--header-bg"
	VarTopLeftBG        = "--top-left-bg"
	VarTopLeftBG2       = "--top-left-bg-2"
)

// StyleVars lists every variable Apply sets, in publication order.
var StyleVars = []string{
	VarAccent,
	VarAccentRGB,
	VarAccent2,
	VarAccentForeground,
	VarHeaderBG,
	VarTopLeftBG,
	VarTopLeftBG2,
}

const (
	// Colors brighter than this get dark text and a darkened header.
	lightThreshold = 0.45

	DarkForeground  = "#111111"
	LightForeground = "#ffffff"

	accentVariantShift = 0.35
	headerShift        = -0.12
	cornerShift        = 0.08
)

// Palette is the set of values derived from a base color.
type Palette struct {
	Accent     string  `json:"accent"`
	AccentRGB  string  `json:"accent_rgb"`
	Accent2    string  `json:"accent_2"`
	Foreground string  `json:"foreground"`
	HeaderBG   string  `json:"header_bg"`
	TopLeftBG  string  `json:"top_left_bg"`
	TopLeftBG2 string  `json:"top_left_bg_2"`
	Luminance  float64 `json:"luminance"`
}

// Derive computes the palette for baseHex.
func Derive(baseHex string) Palette {
	base := color.HexToRGB(baseHex)
	accent := base.Hex()
	lum := base.Luminance()
	light := lum > lightThreshold

	p := Palette{
		Accent:     accent,
		AccentRGB:  base.Triplet(),
		Accent2:    color.AdjustLightness(accent, accentVariantShift),
		Foreground: LightForeground,
		HeaderBG:   accent,
		TopLeftBG:  accent,
		TopLeftBG2: color.AdjustLightness(accent, cornerShift),
		Luminance:  lum,
	}
	if light {
		p.Foreground = DarkForeground
		p.HeaderBG = color.AdjustLightness(accent, headerShift)
	}
	return p
}

// Var is a single named style value.
type Var struct {
	Name  string
	Value string
}

// Vars returns the palette as style variables in publication order.
func (p Palette) Vars() []Var {
	return []Var{
		{Name: VarAccent, Value: p.Accent},
		{Name: VarAccentRGB, Value: p.AccentRGB},
		{Name: VarAccent2, Value: p.Accent2},
		{Name: VarAccentForeground, Value: p.Foreground},
		{Name: VarHeaderBG, Value: p.HeaderBG},
		{Name: VarTopLeftBG, Value: p.TopLeftBG},
		{Name: VarTopLeftBG2, Value: p.TopLeftBG2},
	}
}
