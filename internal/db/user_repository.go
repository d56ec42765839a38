package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/identiq/identiq/internal/models"
)

// User repository errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("invalid user")
)

// UserRepository handles user persistence.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, theme_name, theme_color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		user.ID,
		user.Name,
		user.ThemeName,
		user.ThemeColor,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, theme_name, theme_color, created_at
		FROM users WHERE id = ?
	`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns all users in creation order.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, theme_name, theme_color, created_at
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Delete removes a user and returns the deleted record.
func (r *UserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ThemeDistribution counts users per theme.
func (r *UserRepository) ThemeDistribution(ctx context.Context) ([]models.ThemeShare, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.ThemeDistribution(users), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var createdAt string

	if err := row.Scan(&user.ID, &user.Name, &user.ThemeName, &user.ThemeColor, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		user.CreatedAt = t
	}
	return &user, nil
}
