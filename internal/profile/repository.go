package profile

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"padel-server/internal/shared/database"
	"padel-server/internal/shared/errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "profile_repository", "operation", "init")
	logger.Debug("Initializing profile repository")
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	logger := slog.With(
		"component", "profile_repository",
		"operation", "get_by_id",
		"profile_id", id,
	)
	logger.Debug("Getting profile by ID")

	query := `
		SELECT id, username, full_name, avatar_url, avatar_thumb_url, rating, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Username,
		&p.FullName,
		&p.AvatarURL,
		&p.AvatarThumbURL,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No profile found with ID")
			return nil, errors.NotFoundf("profile %s not found", id)
		}
		logger.Error("Database error getting profile by ID", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found profile by ID", "username", p.Username)
	return &p, nil
}

// Upsert creates the profile row for an account, updating username and full
// name if a row already exists. Sign-up retries and the OAuth callback both
// funnel through here, so the insert has to tolerate racing with itself.
func (r *Repository) Upsert(ctx context.Context, id, username, fullName string) (*Profile, error) {
	logger := slog.With(
		"component", "profile_repository",
		"operation", "upsert",
		"profile_id", id,
		"username", username,
	)
	logger.Info("Upserting profile")

	query := `
		INSERT INTO profiles (id, username, full_name, rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, full_name = EXCLUDED.full_name, updated_at = NOW()
		RETURNING id, username, full_name, avatar_url, avatar_thumb_url, rating, created_at, updated_at
	`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, id, username, fullName, DefaultRating).Scan(
		&p.ID,
		&p.Username,
		&p.FullName,
		&p.AvatarURL,
		&p.AvatarThumbURL,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to upsert profile", "error", err)
		return nil, classifyProfileError(err)
	}

	logger.Info("Profile upserted successfully")
	return &p, nil
}

func (r *Repository) Update(ctx context.Context, id, username, fullName string) error {
	logger := slog.With(
		"component", "profile_repository",
		"operation", "update",
		"profile_id", id,
	)
	logger.Debug("Updating profile")

	query := `
		UPDATE profiles
		SET username = $2, full_name = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, username, fullName)
	if err != nil {
		logger.Error("Failed to update profile", "error", err)
		return classifyProfileError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return errors.NotFoundf("profile %s not found", id)
	}

	logger.Info("Profile updated")
	return nil
}

// SetAvatarURLs writes both avatar columns in a single statement. They are
// never updated separately; a display image without its thumbnail (or the
// reverse) is not a valid state.
func (r *Repository) SetAvatarURLs(ctx context.Context, id, avatarURL, thumbURL string) error {
	logger := slog.With(
		"component", "profile_repository",
		"operation", "set_avatar_urls",
		"profile_id", id,
	)
	logger.Debug("Setting avatar URLs")

	query := `
		UPDATE profiles
		SET avatar_url = $2, avatar_thumb_url = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, avatarURL, thumbURL)
	if err != nil {
		logger.Error("Failed to set avatar URLs", "error", err)
		return fmt.Errorf("failed to set avatar URLs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return errors.NotFoundf("profile %s not found", id)
	}

	logger.Info("Avatar URLs updated")
	return nil
}

func classifyProfileError(err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if strings.Contains(pqErr.Constraint, "username") {
			return errors.ConflictField("username", "username already taken")
		}
		return errors.Conflictf("duplicate value: %s", pqErr.Constraint)
	}
	return fmt.Errorf("database error: %w", err)
}
