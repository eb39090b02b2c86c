package account

import (
	"context"
	"crypto/rand"
	"log/slog"
	"strings"

	"padel-server/internal/shared/errors"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing account service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// SignUp creates a new account with a bcrypt-hashed password. A duplicate
// email surfaces as a conflict attributed to the email field.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Account, error) {
	logger := s.logger.With(
		"component", "account_service",
		"operation", "sign_up",
		"email", email,
	)
	logger.Debug("Signing up new account")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.ValidationField("email", "a valid email address is required")
	}
	if len(password) < 8 {
		return nil, errors.ValidationField("password", "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return nil, errors.WrapInternal("failed to hash password", err)
	}

	account, err := s.repo.CreateAccount(ctx, email, string(hash))
	if err != nil {
		logger.Warn("Sign up failed", "error", err)
		return nil, err
	}

	logger.Info("Account signed up", "account_id", account.ID)
	return account, nil
}

// SignIn verifies the password for the account registered under email.
// Both an unknown email and a wrong password report the same unauthorized
// error, so the response does not leak which emails exist.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Account, error) {
	logger := s.logger.With(
		"component", "account_service",
		"operation", "sign_in",
		"email", email,
	)
	logger.Debug("Signing in")

	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.GetType(err) == errors.ErrorTypeNotFound {
			logger.Debug("Sign in failed, account not found")
			return nil, errors.Unauthorized("invalid email or password")
		}
		logger.Error("Database error during sign in", "error", err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		logger.Debug("Sign in failed, password mismatch")
		return nil, errors.Unauthorized("invalid email or password")
	}

	logger.Info("Account signed in", "account_id", account.ID)
	return account, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureAccount finds the account registered under email, creating one with
// an unusable random password when none exists. OAuth sign-ins land here;
// such accounts can only authenticate through their provider until a
// password reset.
func (s *Service) EnsureAccount(ctx context.Context, email string) (*Account, bool, error) {
	logger := s.logger.With(
		"component", "account_service",
		"operation", "ensure_account",
		"email", email,
	)

	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		logger.Debug("Found existing account", "account_id", account.ID)
		return account, false, nil
	}
	if errors.GetType(err) != errors.ErrorTypeNotFound {
		logger.Error("Database error looking up account", "error", err)
		return nil, false, err
	}

	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, false, errors.WrapInternal("failed to generate placeholder password", err)
	}

	hash, err := bcrypt.GenerateFromPassword(random, bcrypt.DefaultCost)
	if err != nil {
		return nil, false, errors.WrapInternal("failed to hash placeholder password", err)
	}

	account, err = s.repo.CreateAccount(ctx, email, string(hash))
	if err != nil {
		logger.Error("Failed to create account for OAuth identity", "error", err)
		return nil, false, err
	}

	logger.Info("Account created for OAuth identity", "account_id", account.ID)
	return account, true, nil
}

// UpdateEmail changes the email on an account. Conflicts surface attributed
// to the email field so the profile editor can keep the form editable.
func (s *Service) UpdateEmail(ctx context.Context, id, email string) error {
	logger := s.logger.With(
		"component", "account_service",
		"operation", "update_email",
		"account_id", id,
	)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return errors.ValidationField("email", "a valid email address is required")
	}

	if err := s.repo.UpdateEmail(ctx, id, email); err != nil {
		logger.Warn("Email update failed", "error", err)
		return err
	}

	logger.Info("Email updated")
	return nil
}
