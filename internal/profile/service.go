package profile

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"padel-server/internal/shared/errors"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing profile service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateForAccount sets up the profile row right after sign-up. Usernames are
// stored lowercased so uniqueness is case-insensitive.
func (s *Service) CreateForAccount(ctx context.Context, accountID, username, fullName string) (*Profile, error) {
	logger := s.logger.With(
		"component", "profile_service",
		"operation", "create_for_account",
		"account_id", accountID,
	)

	username = strings.ToLower(strings.TrimSpace(username))
	fullName = strings.TrimSpace(fullName)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}

	p, err := s.repo.Upsert(ctx, accountID, username, fullName)
	if err != nil {
		logger.Warn("Failed to create profile", "error", err)
		return nil, err
	}

	logger.Info("Profile created", "username", p.Username)
	return p, nil
}

// Update applies a profile edit. Username conflicts come back attributed to
// the username field.
func (s *Service) Update(ctx context.Context, id, username, fullName string) (*Profile, error) {
	logger := s.logger.With(
		"component", "profile_service",
		"operation", "update",
		"profile_id", id,
	)

	username = strings.ToLower(strings.TrimSpace(username))
	fullName = strings.TrimSpace(fullName)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, username, fullName); err != nil {
		logger.Warn("Failed to update profile", "error", err)
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// SetAvatarURLs persists the pair of public URLs produced by the avatar
// pipeline. This write is the commit point of an avatar upload.
func (s *Service) SetAvatarURLs(ctx context.Context, id, avatarURL, thumbURL string) error {
	return s.repo.SetAvatarURLs(ctx, id, avatarURL, thumbURL)
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return errors.ValidationField("username", "username must be at least 3 characters")
	}
	if len(username) > 20 {
		return errors.ValidationField("username", "username must be less than 20 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.ValidationField("username", "username must start with a letter and can only contain letters, numbers, and underscores")
	}
	return nil
}

func validateFullName(fullName string) error {
	if len(fullName) < 2 {
		return errors.ValidationField("full_name", "full name must be at least 2 characters")
	}
	if len(fullName) > 50 {
		return errors.ValidationField("full_name", "full name must be less than 50 characters")
	}
	return nil
}
