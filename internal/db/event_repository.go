package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/identiq/identiq/internal/models"
)

// eventTimeLayout is fixed-width so timestamps sort lexically.
const eventTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

const eventColumns = `id, timestamp, type, entity_type, entity_id, payload_json, metadata_json`

const defaultEventLimit = 100

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// EventRepository stores the dashboard audit log: theme changes and user deletions.
type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventQuery filters the audit log. Nil fields match everything.
type EventQuery struct {
	Type       *models.EventType
	EntityType *models.EntityType
	EntityID   *string

	// Since is inclusive.
	Since *time.Time

	// Cursor is the ID of the last event of the previous page.
	Cursor string
	Limit  int
}

// EventPage is one page of a Query. NextCursor is empty on the last page.
type EventPage struct {
	Events     []*models.Event `json:"events"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// Append validates event and stores it, wrapping validation failures in ErrInvalidEvent.
func (r *EventRepository) Append(ctx context.Context, event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return r.Create(ctx, event)
}

// Create stores event, assigning an ID and timestamp when missing.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	switch {
	case event.Type == "":
		return fmt.Errorf("event type is required")
	case event.EntityType == "":
		return fmt.Errorf("event entity type is required")
	case event.EntityID == "":
		return fmt.Errorf("event entity id is required")
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()

	metadata, err := encodeMetadata(event.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.Format(eventTimeLayout),
		string(event.Type),
		string(event.EntityType),
		event.EntityID,
		nullString(string(event.Payload)),
		nullString(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func encodeMetadata(metadata map[string]string) (string, error) {
	if metadata == nil {
		return "", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event metadata: %w", err)
	}
	return string(data), nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := r.scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// Query returns events oldest first, one page at a time.
func (r *EventRepository) Query(ctx context.Context, q EventQuery) (*EventPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}

	where, args := q.filters()
	if q.Cursor != "" {
		where = append(where, `(timestamp, id) > (SELECT timestamp, id FROM events WHERE id = ?)`)
		args = append(args, q.Cursor)
	}

	// Fetch one extra row to learn whether another page exists.
	events, err := r.list(ctx, where, args, "timestamp, id", limit+1)
	if err != nil {
		return nil, err
	}

	page := &EventPage{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		page.NextCursor = events[limit-1].ID
	}
	return page, nil
}

// Recent returns the newest events matching q, newest first. Cursor is ignored.
func (r *EventRepository) Recent(ctx context.Context, q EventQuery) ([]*models.Event, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	where, args := q.filters()
	return r.list(ctx, where, args, "timestamp DESC, id DESC", limit)
}

// ListByEntity returns up to limit events about one entity, oldest first.
func (r *EventRepository) ListByEntity(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]*models.Event, error) {
	page, err := r.Query(ctx, EventQuery{
		EntityType: &entityType,
		EntityID:   &entityID,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return page.Events, nil
}

func (q EventQuery) filters() ([]string, []any) {
	var where []string
	var args []any

	if q.Type != nil {
		where = append(where, `type = ?`)
		args = append(args, string(*q.Type))
	}
	if q.EntityType != nil {
		where = append(where, `entity_type = ?`)
		args = append(args, string(*q.EntityType))
	}
	if q.EntityID != nil {
		where = append(where, `entity_id = ?`)
		args = append(args, *q.EntityID)
	}
	if q.Since != nil {
		where = append(where, `timestamp >= ?`)
		args = append(args, q.Since.UTC().Format(eventTimeLayout))
	}
	return where, args
}

func (r *EventRepository) list(ctx context.Context, where []string, args []any, order string, limit int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ` + order + ` LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event                       models.Event
		timestamp, kind, entityType string
		payload, metadata           sql.NullString
	)

	if err := row.Scan(&event.ID, &timestamp, &kind, &entityType, &event.EntityID, &payload, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Type = models.EventType(kind)
	event.EntityType = models.EntityType(entityType)
	if t, err := time.Parse(eventTimeLayout, timestamp); err == nil {
		event.Timestamp = t
	}
	if payload.Valid {
		event.Payload = json.RawMessage(payload.String)
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &event.Metadata); err != nil {
			r.db.logger.Warn().Err(err).Str("event_id", event.ID).Msg("ignoring malformed event metadata")
		}
	}
	return &event, nil
}
