package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/identiq/identiq/internal/color"
	"github.com/rs/zerolog"
)

// StorageKey is the durable storage key holding the last selection.
const StorageKey = "dashboardTheme"

// KeyValueStore is the durable client storage capability.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Selection is the persisted theme choice. Color carries the resolved base color so a
// random theme stays stable across sessions.
type Selection struct {
	ID    string `json:"id"`
	Color string `json:"color,omitempty"`
}

// Store persists the selection under StorageKey.
type Store struct {
	kv     KeyValueStore
	key    string
	logger zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for recovered storage failures.
func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStorageKey overrides the storage key.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// NewStore creates a Store over kv. A nil kv behaves as unavailable storage.
func NewStore(kv KeyValueStore, opts ...StoreOption) *Store {
	s := &Store{
		kv:     kv,
		key:    StorageKey,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted selection. Unavailable storage and malformed content are
// reported as absent.
func (s *Store) Load(ctx context.Context) (Selection, bool) {
	if s == nil || s.kv == nil {
		return Selection{}, false
	}

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("theme storage unavailable")
		return Selection{}, false
	}
	if !found {
		return Selection{}, false
	}

	sel, ok := decodeSelection(raw)
	if !ok {
		s.logger.Warn().Str("key", s.key).Msg("ignoring malformed theme selection")
		return Selection{}, false
	}
	return sel, true
}

// Save writes the selection in the canonical JSON shape.
func (s *Store) Save(ctx context.Context, sel Selection) error {
	if s == nil || s.kv == nil {
		return nil
	}
	if sel.ID == "" {
		return fmt.Errorf("selection id is required")
	}

	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist selection: %w", err)
	}
	return nil
}

// decodeSelection accepts the JSON object form and the legacy bare identifier.
func decodeSelection(raw string) (Selection, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selection{}, false
	}

	switch raw[0] {
	case '{':
		var sel Selection
		if err := json.Unmarshal([]byte(raw), &sel); err != nil {
			return Selection{}, false
		}
		sel.ID = strings.TrimSpace(sel.ID)
		if sel.ID == "" {
			return Selection{}, false
		}
		if sel.Color != "" {
			c, err := color.ParseHex(sel.Color)
			if err != nil {
				sel.Color = ""
			} else {
				sel.Color = c.Hex()
			}
		}
		return sel, true
	case '"':
		var id string
		if err := json.Unmarshal([]byte(raw), &id); err != nil || strings.TrimSpace(id) == "" {
			return Selection{}, false
		}
		return Selection{ID: strings.TrimSpace(id)}, true
	case '[':
		return Selection{}, false
	}

	if strings.ContainsAny(raw, " \t\r\n") {
		return Selection{}, false
	}
	return Selection{ID: raw}, true
}
