package models

import (
	"strings"
	"time"
)

// User is a dashboard user with the theme they picked.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// ThemeName is the label of the user's theme (e.g. "Sunset").
	ThemeName string `json:"theme_name"`

	// ThemeColor is the theme's base color as #rrggbb.
	ThemeColor string `json:"theme_color"`

	// CreatedAt is when the user was added.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the user is valid.
func (u *User) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(u.Name) == "" {
		validation.AddMessage("name", "name is required")
	}
	if strings.TrimSpace(u.ThemeName) == "" {
		validation.AddMessage("theme_name", "theme name is required")
	}
	if strings.TrimSpace(u.ThemeColor) == "" {
		validation.AddMessage("theme_color", "theme color is required")
	}
	return validation.Err()
}

// ThemeShare is the number of users on one theme.
type ThemeShare struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Value int    `json:"value"`
}

// ThemeDistribution counts users per (theme name, color), in order of first appearance.
func ThemeDistribution(users []*User) []ThemeShare {
	type key struct{ name, color string }

	index := make(map[key]int)
	var shares []ThemeShare
	for _, u := range users {
		k := key{name: u.ThemeName, color: u.ThemeColor}
		if i, ok := index[k]; ok {
			shares[i].Value++
			continue
		}
		index[k] = len(shares)
		shares = append(shares, ThemeShare{Name: u.ThemeName, Color: u.ThemeColor, Value: 1})
	}
	return shares
}
