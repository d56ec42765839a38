package models

import "testing"

func TestThemeDistribution(t *testing.T) {
	users := []*User{
		{ID: "u_1001", Name: "Alice Johnson", ThemeName: "Sunset", ThemeColor: "#c96a2b"},
		{ID: "u_1002", Name: "Bruno Lee", ThemeName: "Ocean", ThemeColor: "#2b9fc9"},
		{ID: "u_1003", Name: "Camila R.", ThemeName: "Midnight", ThemeColor: "#111827"},
		{ID: "u_1004", Name: "Diego M.", ThemeName: "Sunset", ThemeColor: "#c96a2b"},
		{ID: "u_1005", Name: "Eve K.", ThemeName: "Ocean", ThemeColor: "#2b9fc9"},
		{ID: "u_1006", Name: "Fay", ThemeName: "Sunset", ThemeColor: "#d97a3b"},
	}

	got := ThemeDistribution(users)
	want := []ThemeShare{
		{Name: "Sunset", Color: "#c96a2b", Value: 2},
		{Name: "Ocean", Color: "#2b9fc9", Value: 2},
		{Name: "Midnight", Color: "#111827", Value: 1},
		{Name: "Sunset", Color: "#d97a3b", Value: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d shares, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("share %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestThemeDistributionEmpty(t *testing.T) {
	if got := ThemeDistribution(nil); len(got) != 0 {
		t.Fatalf("expected no shares, got %+v", got)
	}
}

func TestUserValidate(t *testing.T) {
	u := &User{Name: "Alice"}
	err := u.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	verrs, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(verrs.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(verrs.Errors))
	}

	valid := &User{Name: "Alice", ThemeName: "Sunset", ThemeColor: "#c96a2b"}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEventValidate(t *testing.T) {
	e := &Event{Type: EventTypeThemeSelected, EntityType: EntityTypeTheme}
	if err := e.Validate(); err == nil {
		t.Fatal("expected missing entity id to fail validation")
	}
	e.EntityID = "teal"
	if err := e.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
