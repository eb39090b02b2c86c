package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"padel-server/internal/avatar"
	"padel-server/internal/middleware"
	"padel-server/internal/profile"
	"padel-server/internal/session"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

// maxRequestBody leaves room for multipart framing around a 5 MiB file.
const maxRequestBody = avatar.MaxFileSize + 1024*1024

type UploadResponse struct {
	User   *session.User       `json:"user"`
	Result avatar.UploadResult `json:"result"`
}

type UploadHandler struct {
	strategy avatar.StorageStrategy
	profiles *profile.Service
	sessions *session.Manager
}

func NewUploadHandler(strategy avatar.StorageStrategy, profiles *profile.Service, sessions *session.Manager) *UploadHandler {
	return &UploadHandler{
		strategy: strategy,
		profiles: profiles,
		sessions: sessions,
	}
}

// ServeHTTP accepts a multipart avatar upload, runs the storage strategy,
// and persists the resolved URLs onto the profile. The profile write is the
// commit point: if it fails the freshly uploaded objects are left orphaned
// for the next upload's cleanup pass.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "avatar_upload")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("no user claims found in context"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.Error(w, r, logger, errors.Validation("no file selected"))
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("Failed to close uploaded file", "error", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("failed to read uploaded file", err))
		return
	}

	upload := avatar.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}

	ctx := r.Context()

	result, err := h.strategy.Upload(ctx, upload, claims.AccountID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	thumbURL := result.ThumbnailURL
	if thumbURL == "" {
		// single-file strategy produces no thumbnail; reuse the original
		thumbURL = result.AvatarURL
	}

	if err := h.profiles.SetAvatarURLs(ctx, claims.AccountID, result.AvatarURL, thumbURL); err != nil {
		logger.Error("Failed to persist avatar URLs, uploaded objects orphaned",
			"account_id", claims.AccountID, "error", err)
		response.ErrorWithMessage(w, r, logger, err, "avatar uploaded but could not be saved, please retry")
		return
	}

	user, err := h.sessions.Refresh(ctx, session.Identity{ID: claims.AccountID, Email: claims.Email})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Avatar updated", "account_id", claims.AccountID)

	response.Success(w, http.StatusOK, UploadResponse{
		User:   user,
		Result: result,
	})
}
