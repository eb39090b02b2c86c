package account

import (
	"context"
	"log/slog"
	"testing"

	"padel-server/internal/shared/errors"
)

// Validation runs before any repository access, so a nil repository is fine
// for these cases.
func newValidationOnlyService() *Service {
	return NewService(nil, slog.Default())
}

func TestSignUpRejectsInvalidEmail(t *testing.T) {
	s := newValidationOnlyService()

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"missing at sign", "maria.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SignUp(context.Background(), tt.email, "longenoughpassword")
			if err == nil {
				t.Fatal("expected validation error")
			}
			if errors.GetType(err) != errors.ErrorTypeValidation {
				t.Errorf("type = %q, want validation", errors.GetType(err))
			}
			if errors.GetField(err) != "email" {
				t.Errorf("field = %q, want email", errors.GetField(err))
			}
		})
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	s := newValidationOnlyService()

	_, err := s.SignUp(context.Background(), "maria@example.com", "short")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("type = %q, want validation", errors.GetType(err))
	}
	if errors.GetField(err) != "password" {
		t.Errorf("field = %q, want password", errors.GetField(err))
	}
}

func TestUpdateEmailRejectsInvalidEmail(t *testing.T) {
	s := newValidationOnlyService()

	err := s.UpdateEmail(context.Background(), "acc-1", "not-an-email")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if errors.GetField(err) != "email" {
		t.Errorf("field = %q, want email", errors.GetField(err))
	}
}
