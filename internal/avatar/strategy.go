package avatar

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"padel-server/internal/shared/errors"
)

// StorageStrategy is one way of turning an uploaded file into stored avatar
// URLs. Two variants exist side by side: the dual-variant pipeline used by
// the profile dialog, and the older single-file path kept for the legacy
// editor. They use different buckets and naming schemes on purpose.
type StorageStrategy interface {
	Upload(ctx context.Context, upload FileUpload, userID string) (UploadResult, error)
}

// DualVariantStrategy runs the full pipeline: compression, cleanup, display
// and thumbnail variants under the avatars bucket.
type DualVariantStrategy struct {
	pipeline *Pipeline
}

func NewDualVariantStrategy(pipeline *Pipeline) *DualVariantStrategy {
	return &DualVariantStrategy{pipeline: pipeline}
}

func (s *DualVariantStrategy) Upload(ctx context.Context, upload FileUpload, userID string) (UploadResult, error) {
	return s.pipeline.Upload(ctx, upload, userID)
}

// SingleFileStrategy stores the file as-is under the profiles bucket with a
// random suffix. No compression, no cleanup, no thumbnail.
type SingleFileStrategy struct {
	storage ObjectStorage
	bucket  string
	logger  *slog.Logger
}

func NewSingleFileStrategy(storage ObjectStorage, bucket string, logger *slog.Logger) *SingleFileStrategy {
	logger.Debug("Initializing single-file avatar strategy", "bucket", bucket)

	return &SingleFileStrategy{
		storage: storage,
		bucket:  bucket,
		logger:  logger,
	}
}

func (s *SingleFileStrategy) Upload(ctx context.Context, upload FileUpload, userID string) (UploadResult, error) {
	logger := s.logger.With(
		"component", "avatar_single_file",
		"operation", "upload",
		"user_id", userID,
		"file_size", upload.Size,
	)
	logger.Debug("Starting single-file avatar upload")

	if err := validateUpload(upload); err != nil {
		logger.Debug("Upload rejected by validation", "error", err)
		return UploadResult{}, err
	}

	exists, err := s.storage.BucketExists(ctx, s.bucket)
	if err != nil {
		logger.Error("Failed to check profile bucket", "error", err)
		return UploadResult{}, errors.WrapExternal("profile storage not available", err)
	}
	if !exists {
		logger.Error("Profile bucket does not exist", "bucket", s.bucket)
		return UploadResult{}, errors.External("profile storage not configured")
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return UploadResult{}, errors.WrapInternal("failed to generate file name", err)
	}

	ext := strings.TrimPrefix(path.Ext(upload.Name), ".")
	if ext == "" {
		ext = "jpg"
	}
	key := fmt.Sprintf("avatars/%s-%s.%s", userID, hex.EncodeToString(suffix), ext)

	err = s.storage.Upload(ctx, s.bucket, key, bytes.NewReader(upload.Data), upload.Size, UploadOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		logger.Error("Failed to upload avatar", "error", err, "key", key)
		return UploadResult{}, errors.WrapExternal("failed to upload avatar", err)
	}

	url, err := s.storage.PublicURL(ctx, s.bucket, key)
	if err != nil {
		logger.Error("Failed to resolve avatar URL", "error", err)
		return UploadResult{}, errors.WrapExternal("failed to resolve avatar URL", err)
	}

	logger.Info("Avatar uploaded", "key", key)

	return UploadResult{AvatarURL: url}, nil
}
