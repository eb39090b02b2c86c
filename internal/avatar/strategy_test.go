package avatar

import (
	"context"
	"log/slog"
	"regexp"
	"testing"

	"padel-server/internal/shared/errors"
)

func TestSingleFileStrategyStoresOriginalBytes(t *testing.T) {
	storage := newFakeStorage()
	s := NewSingleFileStrategy(storage, "profiles", slog.Default())

	upload := jpegUpload(t, 600, 600)
	result, err := s.Upload(context.Background(), upload, "u1")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if len(storage.uploads) != 1 {
		t.Fatalf("stored %d objects, want 1", len(storage.uploads))
	}

	keyPattern := regexp.MustCompile(`^avatars/u1-[0-9a-f]{16}\.jpg$`)
	for key, data := range storage.uploads {
		if !keyPattern.MatchString(key) {
			t.Errorf("key %q does not match avatars/{userID}-{hex}.{ext}", key)
		}
		if len(data) != len(upload.Data) {
			t.Errorf("stored %d bytes, want the original %d, file must not be recompressed", len(data), len(upload.Data))
		}
	}

	if result.AvatarURL == "" {
		t.Error("AvatarURL empty on success")
	}
	if result.ThumbnailURL != "" {
		t.Errorf("ThumbnailURL = %q, single-file strategy produces none", result.ThumbnailURL)
	}
}

func TestSingleFileStrategyDefaultsExtension(t *testing.T) {
	storage := newFakeStorage()
	s := NewSingleFileStrategy(storage, "profiles", slog.Default())

	upload := jpegUpload(t, 100, 100)
	upload.Name = "camera-roll-export"

	if _, err := s.Upload(context.Background(), upload, "u1"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	for key := range storage.uploads {
		if got := key[len(key)-4:]; got != ".jpg" {
			t.Errorf("key %q does not default to .jpg", key)
		}
	}
}

func TestSingleFileStrategyValidates(t *testing.T) {
	storage := newFakeStorage()
	s := NewSingleFileStrategy(storage, "profiles", slog.Default())

	_, err := s.Upload(context.Background(), FileUpload{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Size:        4,
		Data:        []byte("text"),
	}, "u1")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("type = %q, want validation", errors.GetType(err))
	}
	if storage.bucketChecks != 0 || len(storage.uploads) != 0 {
		t.Error("storage touched despite rejected upload")
	}
}

func TestSingleFileStrategyMissingBucket(t *testing.T) {
	storage := newFakeStorage()
	storage.bucketExists = false
	s := NewSingleFileStrategy(storage, "profiles", slog.Default())

	_, err := s.Upload(context.Background(), jpegUpload(t, 100, 100), "u1")
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if errors.GetType(err) != errors.ErrorTypeExternal {
		t.Errorf("type = %q, want external", errors.GetType(err))
	}
}
