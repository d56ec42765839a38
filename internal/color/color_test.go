package color

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "six digits with hash", input: "#c96a2b", want: RGB{R: 0xc9, G: 0x6a, B: 0x2b}},
		{name: "six digits without hash", input: "2f6f66", want: RGB{R: 0x2f, G: 0x6f, B: 0x66}},
		{name: "upper case", input: "#FFAA00", want: RGB{R: 0xff, G: 0xaa, B: 0x00}},
		{name: "shorthand", input: "#fa0", want: RGB{R: 0xff, G: 0xaa, B: 0x00}},
		{name: "shorthand without hash", input: "123", want: RGB{R: 0x11, G: 0x22, B: 0x33}},
		{name: "empty", input: "", wantErr: true},
		{name: "wrong length", input: "#12345", wantErr: true},
		{name: "not hex", input: "#zzzzzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHex) {
					t.Fatalf("ParseHex(%q) error = %v, want ErrInvalidHex", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHexToRGBMalformedDoesNotPanic(t *testing.T) {
	for _, input := range []string{"", "#", "##", "#gg", "not a color", "#1234567"} {
		if got := HexToRGB(input); got != (RGB{}) {
			t.Errorf("HexToRGB(%q) = %+v, want black", input, got)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	// Walk a spread of the 24-bit space rather than every value.
	for v := 0; v <= 0xffffff; v += 0x0a0b0d {
		hex := fmt.Sprintf("#%06x", v)
		if got := HexToRGB(hex).Hex(); got != hex {
			t.Fatalf("round trip of %s = %s", hex, got)
		}
	}
	if got := HexToRGB("#ffffff").Hex(); got != "#ffffff" {
		t.Fatalf("round trip of #ffffff = %s", got)
	}
}

func TestTriplet(t *testing.T) {
	if got := HexToRGB("#c96a2b").Triplet(); got != "201, 106, 43" {
		t.Errorf("Triplet() = %q", got)
	}
}

func TestRelativeLuminance(t *testing.T) {
	const epsilon = 1e-9

	if got := RelativeLuminance(0, 0, 0); math.Abs(got) > epsilon {
		t.Errorf("black luminance = %v, want 0", got)
	}
	if got := RelativeLuminance(255, 255, 255); math.Abs(got-1) > epsilon {
		t.Errorf("white luminance = %v, want 1", got)
	}

	// Green dominates the weighting.
	if RelativeLuminance(0, 255, 0) <= RelativeLuminance(255, 0, 0) {
		t.Error("expected green to be brighter than red")
	}

	got := HexToRGB("#c96a2b").Luminance()
	if math.Abs(got-0.229) > 0.005 {
		t.Errorf("#c96a2b luminance = %v, want ~0.229", got)
	}
}

func TestAdjustLightnessZeroIsIdentity(t *testing.T) {
	for _, hex := range []string{"#000000", "#ffffff", "#c96a2b", "#2f6f66", "#123456"} {
		if got := AdjustLightness(hex, 0); got != hex {
			t.Errorf("AdjustLightness(%s, 0) = %s", hex, got)
		}
	}
}

func TestAdjustLightnessDirection(t *testing.T) {
	base := HexToRGB("#c96a2b")

	for _, p := range []float64{0.08, 0.35, 0.5, 1} {
		got := HexToRGB(AdjustLightness(base.Hex(), p))
		if got.R < base.R || got.G < base.G || got.B < base.B {
			t.Errorf("AdjustLightness(+%v) = %+v, expected channels >= %+v", p, got, base)
		}
	}

	for _, p := range []float64{-0.12, -0.5, -1} {
		got := HexToRGB(AdjustLightness(base.Hex(), p))
		if got.R > base.R || got.G > base.G || got.B > base.B {
			t.Errorf("AdjustLightness(%v) = %+v, expected channels <= %+v", p, got, base)
		}
	}
}

func TestAdjustLightnessClamps(t *testing.T) {
	if got := AdjustLightness("#c96a2b", 3); got != "#ffffff" {
		t.Errorf("AdjustLightness(3) = %s, want #ffffff", got)
	}
	if got := AdjustLightness("#c96a2b", -2.5); got != "#000000" {
		t.Errorf("AdjustLightness(-2.5) = %s, want #000000", got)
	}
}

func TestAdjustLightnessKnownValues(t *testing.T) {
	tests := []struct {
		hex     string
		percent float64
		want    string
	}{
		// 201 + 54*0.35 = 219.9, 106 + 149*0.35 = 158.15, 43 + 212*0.35 = 117.2
		{hex: "#c96a2b", percent: 0.35, want: "#dc9e75"},
		// 201*0.88 = 176.88, 106*0.88 = 93.28, 43*0.88 = 37.84
		{hex: "#c96a2b", percent: -0.12, want: "#b15d26"},
		{hex: "#000000", percent: 0.5, want: "#808080"},
		{hex: "#fff", percent: -0.5, want: "#808080"},
	}

	for _, tt := range tests {
		if got := AdjustLightness(tt.hex, tt.percent); got != tt.want {
			t.Errorf("AdjustLightness(%s, %v) = %s, want %s", tt.hex, tt.percent, got, tt.want)
		}
	}
}

func TestFromHSL(t *testing.T) {
	tests := []struct {
		h, s, l float64
		want    string
	}{
		{h: 0, s: 100, l: 50, want: "#ff0000"},
		{h: 120, s: 100, l: 50, want: "#00ff00"},
		{h: 240, s: 100, l: 50, want: "#0000ff"},
		{h: 0, s: 0, l: 100, want: "#ffffff"},
		{h: 200, s: 50, l: 0, want: "#000000"},
	}

	for _, tt := range tests {
		if got := FromHSL(tt.h, tt.s, tt.l).Hex(); got != tt.want {
			t.Errorf("FromHSL(%v, %v, %v) = %s, want %s", tt.h, tt.s, tt.l, got, tt.want)
		}
	}
}
