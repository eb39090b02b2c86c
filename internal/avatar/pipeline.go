package avatar

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"padel-server/internal/shared/errors"
)

// MaxFileSize caps avatar uploads at 5 MiB, checked before any I/O.
const MaxFileSize = 5 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var (
	displayOptions   = CompressOptions{MaxWidth: 800, MaxHeight: 800, Quality: 0.8}
	thumbnailOptions = CompressOptions{MaxWidth: 150, MaxHeight: 150, Quality: 0.7}
)

// FileUpload is the in-memory file handed to an upload pipeline.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadResult carries the resolved public URLs of a successful upload. On
// failure both fields are empty and the error explains why.
type UploadResult struct {
	AvatarURL    string `json:"avatar_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// CleanupResult reports the outcome of a best-effort cleanup. Callers are
// allowed to ignore it entirely.
type CleanupResult struct {
	Removed int
	Err     error
}

// Pipeline produces a display image and a thumbnail from one uploaded file
// and stores both under the user's prefix in the avatars bucket.
type Pipeline struct {
	storage ObjectStorage
	bucket  string
	logger  *slog.Logger
	now     func() time.Time
}

func NewPipeline(storage ObjectStorage, bucket string, logger *slog.Logger) *Pipeline {
	logger.Debug("Initializing avatar pipeline", "bucket", bucket)

	return &Pipeline{
		storage: storage,
		bucket:  bucket,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload validates the file and runs the full pipeline: bucket check,
// best-effort cleanup of the user's previous files, two independent
// compression passes, both uploads, and public URL resolution. Either both
// URLs come back or neither does; the caller persists them onto the profile,
// which is the commit point. Objects orphaned by a failed persist are
// reclaimed by the cleanup phase of the next upload.
//
// Concurrent calls for the same user are not deduplicated: a second call's
// cleanup can race a first call's uploads and delete a just-written object.
// The frontend disables the upload control while a call is outstanding.
func (p *Pipeline) Upload(ctx context.Context, upload FileUpload, userID string) (UploadResult, error) {
	logger := p.logger.With(
		"component", "avatar_pipeline",
		"operation", "upload",
		"user_id", userID,
		"file_name", upload.Name,
		"file_size", upload.Size,
		"content_type", upload.ContentType,
	)
	logger.Debug("Starting avatar upload")

	if err := validateUpload(upload); err != nil {
		logger.Debug("Avatar upload rejected by validation", "error", err)
		return UploadResult{}, err
	}

	exists, err := p.storage.BucketExists(ctx, p.bucket)
	if err != nil {
		logger.Error("Failed to check avatar bucket", "error", err)
		return UploadResult{}, errors.WrapExternal("avatar storage not available", err)
	}
	if !exists {
		logger.Error("Avatar bucket does not exist", "bucket", p.bucket)
		return UploadResult{}, errors.External("avatar storage not configured")
	}

	// Old files must never block a new upload; stale leftovers are an
	// accepted degraded state.
	if cleanup := p.CleanupPrevious(ctx, userID); cleanup.Err != nil {
		logger.Warn("Failed to clean up old avatars", "error", cleanup.Err)
	} else if cleanup.Removed > 0 {
		logger.Debug("Removed old avatar files", "count", cleanup.Removed)
	}

	// Both variants derive from the original bytes so quality loss does not
	// compound.
	display, err := Compress(bytes.NewReader(upload.Data), displayOptions)
	if err != nil {
		logger.Warn("Failed to compress display variant", "error", err)
		return UploadResult{}, err
	}

	thumbnail, err := Compress(bytes.NewReader(upload.Data), thumbnailOptions)
	if err != nil {
		logger.Warn("Failed to compress thumbnail variant", "error", err)
		return UploadResult{}, err
	}

	timestamp := p.now().UnixMilli()
	displayKey := fmt.Sprintf("%s/avatar-%d-original.%s", userID, timestamp, display.Ext)
	thumbnailKey := fmt.Sprintf("%s/avatar-%d-thumb.%s", userID, timestamp, thumbnail.Ext)

	if err := p.uploadVariant(ctx, displayKey, display); err != nil {
		logger.Error("Failed to upload display variant", "error", err, "key", displayKey)
		return UploadResult{}, errors.WrapExternal("failed to upload avatar", err)
	}

	if err := p.uploadVariant(ctx, thumbnailKey, thumbnail); err != nil {
		logger.Error("Failed to upload thumbnail variant", "error", err, "key", thumbnailKey)
		return UploadResult{}, errors.WrapExternal("failed to upload avatar thumbnail", err)
	}

	avatarURL, err := p.storage.PublicURL(ctx, p.bucket, displayKey)
	if err != nil {
		logger.Error("Failed to resolve avatar URL", "error", err)
		return UploadResult{}, errors.WrapExternal("failed to resolve avatar URL", err)
	}

	thumbnailURL, err := p.storage.PublicURL(ctx, p.bucket, thumbnailKey)
	if err != nil {
		logger.Error("Failed to resolve thumbnail URL", "error", err)
		return UploadResult{}, errors.WrapExternal("failed to resolve thumbnail URL", err)
	}

	logger.Info("Avatar uploaded",
		"display_key", displayKey,
		"thumbnail_key", thumbnailKey,
		"display_dims", fmt.Sprintf("%dx%d", display.Width, display.Height),
		"thumbnail_dims", fmt.Sprintf("%dx%d", thumbnail.Width, thumbnail.Height),
	)

	return UploadResult{
		AvatarURL:    avatarURL,
		ThumbnailURL: thumbnailURL,
	}, nil
}

// CleanupPrevious removes every stored file under the user's prefix. It is
// best-effort: the result is returned for observability, never as a reason
// to abort the enclosing operation.
func (p *Pipeline) CleanupPrevious(ctx context.Context, userID string) CleanupResult {
	objects, err := p.storage.List(ctx, p.bucket, userID+"/")
	if err != nil {
		return CleanupResult{Err: fmt.Errorf("failed to list old avatars: %w", err)}
	}

	if len(objects) == 0 {
		return CleanupResult{}
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}

	if err := p.storage.Remove(ctx, p.bucket, keys); err != nil {
		return CleanupResult{Err: fmt.Errorf("failed to remove old avatars: %w", err)}
	}

	return CleanupResult{Removed: len(keys)}
}

func (p *Pipeline) uploadVariant(ctx context.Context, key string, img *Image) error {
	return p.storage.Upload(ctx, p.bucket, key, bytes.NewReader(img.Data), int64(len(img.Data)), UploadOptions{
		ContentType:  img.ContentType,
		CacheControl: "max-age=3600",
		Upsert:       true,
	})
}

func validateUpload(upload FileUpload) error {
	if len(upload.Data) == 0 {
		return errors.Validation("no file selected")
	}
	if !allowedContentTypes[upload.ContentType] {
		return errors.Validationf("invalid file type %q, must be JPEG, PNG or WebP", upload.ContentType)
	}
	if upload.Size > MaxFileSize {
		return errors.Validation("file too large, maximum size is 5MB")
	}
	return nil
}
