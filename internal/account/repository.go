package account

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"padel-server/internal/shared/database"
	"padel-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "account_repository", "operation", "init")
	logger.Debug("Initializing account repository")
	return &Repository{db: db}
}

func (r *Repository) CreateAccount(ctx context.Context, email, passwordHash string) (*Account, error) {
	logger := slog.With(
		"component", "account_repository",
		"operation", "create",
		"email", email,
	)
	logger.Info("Creating new account")

	query := `
		INSERT INTO accounts (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at, updated_at
	`

	var account Account
	err := r.db.QueryRowContext(ctx, query, email, passwordHash).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		logger.Error("Failed to create account", "error", err)
		return nil, Classify(err)
	}

	logger.Info("Account created successfully", "account_id", account.ID)
	return &account, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	logger := slog.With(
		"component", "account_repository",
		"operation", "find_by_email",
		"email", email,
	)
	logger.Debug("Finding account by email")

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	var account Account
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No account found with email")
			return nil, errors.NotFoundf("account with email %s not found", email)
		}
		logger.Error("Database error finding account by email", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	logger.Debug("Found account by email", "account_id", account.ID)
	return &account, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Account, error) {
	logger := slog.With(
		"component", "account_repository",
		"operation", "get_by_id",
		"account_id", id,
	)
	logger.Debug("Getting account by ID")

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No account found with ID")
			return nil, errors.NotFoundf("account %s not found", id)
		}
		logger.Error("Database error getting account by ID", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &account, nil
}

func (r *Repository) UpdateEmail(ctx context.Context, id, email string) error {
	logger := slog.With(
		"component", "account_repository",
		"operation", "update_email",
		"account_id", id,
	)
	logger.Debug("Updating account email")

	query := `
		UPDATE accounts
		SET email = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, email)
	if err != nil {
		logger.Error("Failed to update account email", "error", err)
		return Classify(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return errors.NotFoundf("account %s not found", id)
	}

	logger.Info("Account email updated")
	return nil
}
