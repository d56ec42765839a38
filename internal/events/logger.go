// Package events provides helper functions for logging dashboard events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/theme"
	"github.com/rs/zerolog"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogThemeSelected records that the active theme changed to themeID.
func LogThemeSelected(ctx context.Context, repo Repository, themeID, color, previous string) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if themeID == "" {
		return fmt.Errorf("theme id is required")
	}

	payload, err := json.Marshal(models.ThemeSelectedPayload{
		ThemeID:  themeID,
		Color:    color,
		Previous: previous,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal theme payload: %w", err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       models.EventTypeThemeSelected,
		EntityType: models.EntityTypeTheme,
		EntityID:   themeID,
		Payload:    payload,
	})
}

// LogThemeRandomized records a newly generated random theme color.
func LogThemeRandomized(ctx context.Context, repo Repository, color, previous string) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if color == "" {
		return fmt.Errorf("color is required")
	}

	payload, err := json.Marshal(models.ThemeRandomizedPayload{
		Color:    color,
		Previous: previous,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal randomize payload: %w", err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       models.EventTypeThemeRandomized,
		EntityType: models.EntityTypeTheme,
		EntityID:   theme.IDRandom,
		Payload:    payload,
	})
}

// LogUserDeleted records the removal of a user.
func LogUserDeleted(ctx context.Context, repo Repository, userID, name string) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	payload, err := json.Marshal(models.UserDeletedPayload{UserID: userID, Name: name})
	if err != nil {
		return fmt.Errorf("failed to marshal user payload: %w", err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       models.EventTypeUserDeleted,
		EntityType: models.EntityTypeUser,
		EntityID:   userID,
		Payload:    payload,
	})
}

// ThemeHook returns a session change hook that writes theme events to repo.
// The initial resolution is not recorded. Write failures are logged.
func ThemeHook(repo Repository, logger zerolog.Logger) theme.ChangeHook {
	return func(ctx context.Context, change theme.Change) {
		var err error
		switch change.Kind {
		case theme.ChangeSelect:
			err = LogThemeSelected(ctx, repo, change.Current.ID, change.Current.Color, change.Previous.ID)
		case theme.ChangeRandomize:
			err = LogThemeRandomized(ctx, repo, change.Current.Color, change.Previous.Color)
		default:
			return
		}
		if err != nil {
			logger.Warn().Err(err).Str("kind", string(change.Kind)).Msg("failed to record theme event")
		}
	}
}
