package tui

import (
	"time"

	"github.com/identiq/identiq/internal/models"
)

// sampleUsers backs the users view when no database is attached.
func sampleUsers() []*models.User {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*models.User{
		{ID: "u_1001", Name: "Alice Johnson", ThemeName: "Sunset", ThemeColor: "#c96a2b", CreatedAt: base.Add(1 * time.Second)},
		{ID: "u_1002", Name: "Bruno Lee", ThemeName: "Ocean", ThemeColor: "#2b9fc9", CreatedAt: base.Add(2 * time.Second)},
		{ID: "u_1003", Name: "Camila R.", ThemeName: "Midnight", ThemeColor: "#111827", CreatedAt: base.Add(3 * time.Second)},
		{ID: "u_1004", Name: "Diego M.", ThemeName: "Sunset", ThemeColor: "#c96a2b", CreatedAt: base.Add(4 * time.Second)},
		{ID: "u_1005", Name: "Eve K.", ThemeName: "Ocean", ThemeColor: "#2b9fc9", CreatedAt: base.Add(5 * time.Second)},
	}
}
