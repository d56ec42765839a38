package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType names an audit log entry, "<entity>.<verb>".
type EventType string

const (
	EventTypeThemeSelected   EventType = "theme.selected"
	EventTypeThemeRandomized EventType = "theme.randomized"
	EventTypeUserDeleted     EventType = "user.deleted"
)

// EntityType is the kind of record an event is about.
type EntityType string

const (
	EntityTypeTheme EntityType = "theme"
	EntityTypeUser  EntityType = "user"
)

// Event is one append-only audit log entry. Payload holds one of the
// *Payload types below, matching Type.
type Event struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	EntityType EntityType        `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Validate reports every missing required field.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// ThemeSelectedPayload records a picker selection. Previous is the prior theme ID.
type ThemeSelectedPayload struct {
	ThemeID  string `json:"theme_id"`
	Color    string `json:"color"`
	Previous string `json:"previous,omitempty"`
}

// ThemeRandomizedPayload records a newly generated color. Previous is the prior color.
type ThemeRandomizedPayload struct {
	Color    string `json:"color"`
	Previous string `json:"previous,omitempty"`
}

type UserDeletedPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
