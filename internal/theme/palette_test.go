package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveLightThemeColor(t *testing.T) {
	// #c96a2b has a relative luminance of ~0.229, below the 0.45 threshold.
	p := Derive("#c96a2b")

	require.Equal(t, "#c96a2b", p.Accent)
	require.Equal(t, "201, 106, 43", p.AccentRGB)
	require.Equal(t, "#dc9e75", p.Accent2)
	require.Equal(t, LightForeground, p.Foreground)
	require.Equal(t, p.Accent, p.HeaderBG)
	require.Equal(t, "#c96a2b", p.TopLeftBG)
	require.Equal(t, "#cd763c", p.TopLeftBG2)
	require.InDelta(t, 0.229, p.Luminance, 0.005)
}

func TestDeriveBrightColorUsesDarkText(t *testing.T) {
	p := Derive("#f5d76e")

	require.Greater(t, p.Luminance, lightThreshold)
	require.Equal(t, DarkForeground, p.Foreground)
	require.NotEqual(t, p.Accent, p.HeaderBG)
	require.Equal(t, "#d8bd61", p.HeaderBG)
}

func TestDeriveDarkColors(t *testing.T) {
	for _, hex := range []string{"#000000", "#2f6f66", "#111827"} {
		p := Derive(hex)
		require.Equal(t, LightForeground, p.Foreground, hex)
		require.Equal(t, p.Accent, p.HeaderBG, hex)
	}
}

func TestDeriveNormalizesShorthand(t *testing.T) {
	p := Derive("fff")
	require.Equal(t, "#ffffff", p.Accent)
	require.Equal(t, DarkForeground, p.Foreground)
}

func TestPaletteVarsOrder(t *testing.T) {
	vars := Derive("#2f6f66").Vars()
	require.Len(t, vars, len(StyleVars))
	for i, v := range vars {
		require.Equal(t, StyleVars[i], v.Name)
		require.NotEmpty(t, v.Value)
	}
}
