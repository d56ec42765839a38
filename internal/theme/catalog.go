// Package theme resolves, derives, applies and persists the dashboard theme.
package theme

import "errors"

// Theme identifiers.
const (
	IDTeal   = "teal"
	IDLight  = "light"
	IDDark   = "dark"
	IDRandom = "random"

	// DefaultID is used whenever an identifier is missing or unknown.
	DefaultID = IDLight
)

const previewImage = "/themeChange.webp"

// ErrUnknownTheme is returned when selecting an identifier outside the catalog.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme is one entry of the theme picker.
type Theme struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Image string `json:"img"`

	// Color is the base color as #rrggbb. Empty for the random theme, whose color is
	// only known once resolved.
	Color string `json:"color,omitempty"`
}

// IsRandom reports whether the theme synthesizes its color.
func (t Theme) IsRandom() bool {
	return t.ID == IDRandom
}

// Themes lists the catalog in display order.
var Themes = []Theme{
	{ID: IDTeal, Label: "Teal", Image: previewImage, Color: "#2f6f66"},
	{ID: IDLight, Label: "Light", Image: previewImage, Color: "#c96a2b"},
	{ID: IDDark, Label: "Dark", Image: previewImage, Color: "#000000"},
	{ID: IDRandom, Label: "Random", Image: previewImage},
}

// Lookup finds a theme by identifier.
func Lookup(id string) (Theme, bool) {
	for _, t := range Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// IDs returns the catalog identifiers in display order.
func IDs() []string {
	ids := make([]string, 0, len(Themes))
	for _, t := range Themes {
		ids = append(ids, t.ID)
	}
	return ids
}

// Entry is a catalog theme annotated with the current selection.
type Entry struct {
	Theme
	Selected bool `json:"selected"`
}

// Catalog returns every theme, marking selectedID.
func Catalog(selectedID string) []Entry {
	entries := make([]Entry, 0, len(Themes))
	for _, t := range Themes {
		entries = append(entries, Entry{Theme: t, Selected: t.ID == selectedID})
	}
	return entries
}
