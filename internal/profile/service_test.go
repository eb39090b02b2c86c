package profile

import (
	"context"
	"log/slog"
	"testing"

	"padel-server/internal/shared/errors"
)

// Validation rejects bad input before the repository is touched, so a nil
// repository is fine for these cases.
func newValidationOnlyService() *Service {
	return NewService(nil, slog.Default())
}

func TestCreateForAccountValidatesUsername(t *testing.T) {
	s := newValidationOnlyService()

	tests := []struct {
		name     string
		username string
	}{
		{"too short", "ab"},
		{"too long", "thisusernameiswaytoolongtobeallowed"},
		{"starts with digit", "1maria"},
		{"starts with underscore", "_maria"},
		{"contains space", "maria silva"},
		{"contains dash", "maria-silva"},
		{"contains dot", "maria.silva"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateForAccount(context.Background(), "acc-1", tt.username, "Maria Silva")
			if err == nil {
				t.Fatal("expected validation error")
			}
			if errors.GetType(err) != errors.ErrorTypeValidation {
				t.Errorf("type = %q, want validation", errors.GetType(err))
			}
			if errors.GetField(err) != "username" {
				t.Errorf("field = %q, want username", errors.GetField(err))
			}
		})
	}
}

func TestCreateForAccountValidatesFullName(t *testing.T) {
	s := newValidationOnlyService()

	tests := []struct {
		name     string
		fullName string
	}{
		{"too short", "M"},
		{"empty", ""},
		{"whitespace only", "   "},
		{"too long", "Maria Josefina Albuquerque dos Santos e Silva Carvalho"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateForAccount(context.Background(), "acc-1", "maria", tt.fullName)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if errors.GetField(err) != "full_name" {
				t.Errorf("field = %q, want full_name", errors.GetField(err))
			}
		})
	}
}

func TestUpdateValidatesBeforeWriting(t *testing.T) {
	s := newValidationOnlyService()

	_, err := s.Update(context.Background(), "acc-1", "x", "Maria Silva")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("type = %q, want validation", errors.GetType(err))
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{"full name preferred", Profile{Username: "maria", FullName: "Maria Silva"}, "Maria Silva"},
		{"falls back to username", Profile{Username: "maria", FullName: ""}, "maria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
