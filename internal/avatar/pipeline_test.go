package avatar

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"padel-server/internal/shared/errors"
)

type fakeStorage struct {
	bucketExists    bool
	bucketCheckErr  error
	listed          []ObjectInfo
	listErr         error
	removeErr       error
	uploadErr       error
	publicURLErr    error
	bucketChecks    int
	listCalls       int
	removedKeys     []string
	uploads         map[string][]byte
	uploadOpts      map[string]UploadOptions
	resolvedURLKeys []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		bucketExists: true,
		uploads:      make(map[string][]byte),
		uploadOpts:   make(map[string]UploadOptions),
	}
}

func (f *fakeStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.bucketChecks++
	return f.bucketExists, f.bucketCheckErr
}

func (f *fakeStorage) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matched []ObjectInfo
	for _, obj := range f.listed {
		if strings.HasPrefix(obj.Key, prefix) {
			matched = append(matched, obj)
		}
	}
	return matched, nil
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, opts UploadOptions) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploads[key] = data
	f.uploadOpts[key] = opts
	return nil
}

func (f *fakeStorage) Remove(ctx context.Context, bucket string, keys []string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedKeys = append(f.removedKeys, keys...)
	return nil
}

func (f *fakeStorage) PublicURL(ctx context.Context, bucket, key string) (string, error) {
	if f.publicURLErr != nil {
		return "", f.publicURLErr
	}
	f.resolvedURLKeys = append(f.resolvedURLKeys, key)
	return "https://cdn.example.com/" + bucket + "/" + key, nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestPipeline(storage ObjectStorage) *Pipeline {
	p := NewPipeline(storage, "avatars", slog.Default())
	p.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return p
}

func jpegUpload(t *testing.T, width, height int) FileUpload {
	t.Helper()
	data := testJPEG(t, width, height)
	return FileUpload{
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Data:        data,
	}
}

func TestUploadStoresBothVariants(t *testing.T) {
	storage := newFakeStorage()
	p := newTestPipeline(storage)

	result, err := p.Upload(context.Background(), jpegUpload(t, 1600, 1200), "u1")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	wantDisplay := "u1/avatar-1700000000000-original.jpg"
	wantThumb := "u1/avatar-1700000000000-thumb.jpg"

	if _, ok := storage.uploads[wantDisplay]; !ok {
		t.Errorf("display variant not stored under %q, keys: %v", wantDisplay, uploadKeys(storage))
	}
	if _, ok := storage.uploads[wantThumb]; !ok {
		t.Errorf("thumbnail variant not stored under %q, keys: %v", wantThumb, uploadKeys(storage))
	}
	if len(storage.uploads) != 2 {
		t.Errorf("stored %d objects, want 2", len(storage.uploads))
	}

	if result.AvatarURL == "" || result.ThumbnailURL == "" {
		t.Errorf("result URLs incomplete: %+v", result)
	}
	if !strings.Contains(result.AvatarURL, wantDisplay) {
		t.Errorf("AvatarURL = %q, want it to reference %q", result.AvatarURL, wantDisplay)
	}
	if !strings.Contains(result.ThumbnailURL, wantThumb) {
		t.Errorf("ThumbnailURL = %q, want it to reference %q", result.ThumbnailURL, wantThumb)
	}

	for key, opts := range storage.uploadOpts {
		if opts.ContentType != "image/jpeg" {
			t.Errorf("upload %q content type = %q, want image/jpeg", key, opts.ContentType)
		}
		if opts.CacheControl != "max-age=3600" {
			t.Errorf("upload %q cache control = %q, want max-age=3600", key, opts.CacheControl)
		}
		if !opts.Upsert {
			t.Errorf("upload %q not marked upsert", key)
		}
	}

	if len(storage.uploads[wantThumb]) >= len(storage.uploads[wantDisplay]) {
		t.Errorf("thumbnail (%d bytes) not smaller than display (%d bytes)",
			len(storage.uploads[wantThumb]), len(storage.uploads[wantDisplay]))
	}
}

func uploadKeys(s *fakeStorage) []string {
	keys := make([]string, 0, len(s.uploads))
	for k := range s.uploads {
		keys = append(keys, k)
	}
	return keys
}

func TestUploadRejectsOversizedFileBeforeIO(t *testing.T) {
	storage := newFakeStorage()
	p := newTestPipeline(storage)

	upload := jpegUpload(t, 100, 100)
	upload.Size = MaxFileSize + 1

	result, err := p.Upload(context.Background(), upload, "u1")
	if err == nil {
		t.Fatal("expected validation error for oversized file")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("error type = %q, want validation", errors.GetType(err))
	}
	if result.AvatarURL != "" || result.ThumbnailURL != "" {
		t.Errorf("result should be empty on rejection: %+v", result)
	}
	if storage.bucketChecks != 0 || storage.listCalls != 0 || len(storage.uploads) != 0 {
		t.Errorf("storage touched before validation: checks=%d lists=%d uploads=%d",
			storage.bucketChecks, storage.listCalls, len(storage.uploads))
	}
}

func TestUploadRejectsDisallowedContentType(t *testing.T) {
	storage := newFakeStorage()
	p := newTestPipeline(storage)

	upload := FileUpload{
		Name:        "anim.gif",
		ContentType: "image/gif",
		Size:        10,
		Data:        []byte("GIF89a...."),
	}

	_, err := p.Upload(context.Background(), upload, "u1")
	if err == nil {
		t.Fatal("expected validation error for gif")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("error type = %q, want validation", errors.GetType(err))
	}
	if storage.bucketChecks != 0 || len(storage.uploads) != 0 {
		t.Error("storage touched despite rejected content type")
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	storage := newFakeStorage()
	p := newTestPipeline(storage)

	_, err := p.Upload(context.Background(), FileUpload{Name: "empty.jpg", ContentType: "image/jpeg"}, "u1")
	if err == nil {
		t.Fatal("expected validation error for empty file")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("error type = %q, want validation", errors.GetType(err))
	}
}

func TestUploadMissingBucketIsExternalError(t *testing.T) {
	storage := newFakeStorage()
	storage.bucketExists = false
	p := newTestPipeline(storage)

	_, err := p.Upload(context.Background(), jpegUpload(t, 100, 100), "u1")
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if errors.GetType(err) != errors.ErrorTypeExternal {
		t.Errorf("error type = %q, want external", errors.GetType(err))
	}
	if len(storage.uploads) != 0 {
		t.Error("objects uploaded despite missing bucket")
	}
}

func TestUploadCleansUpPreviousFiles(t *testing.T) {
	storage := newFakeStorage()
	storage.listed = []ObjectInfo{
		{Key: "u1/avatar-1600000000000-original.jpg"},
		{Key: "u1/avatar-1600000000000-thumb.jpg"},
		{Key: "u2/avatar-1600000000000-original.jpg"},
	}
	p := newTestPipeline(storage)

	if _, err := p.Upload(context.Background(), jpegUpload(t, 400, 400), "u1"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if len(storage.removedKeys) != 2 {
		t.Fatalf("removed %d keys, want 2 (only u1's): %v", len(storage.removedKeys), storage.removedKeys)
	}
	for _, key := range storage.removedKeys {
		if !strings.HasPrefix(key, "u1/") {
			t.Errorf("removed key %q outside the user's prefix", key)
		}
	}
}

func TestUploadSurvivesCleanupFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.listErr = fmt.Errorf("transient list failure")
	p := newTestPipeline(storage)

	result, err := p.Upload(context.Background(), jpegUpload(t, 400, 400), "u1")
	if err != nil {
		t.Fatalf("Upload failed because of cleanup error: %v", err)
	}
	if result.AvatarURL == "" || result.ThumbnailURL == "" {
		t.Errorf("result incomplete despite successful upload: %+v", result)
	}
	if len(storage.uploads) != 2 {
		t.Errorf("stored %d objects, want 2", len(storage.uploads))
	}
}

func TestUploadFailureReturnsEmptyResult(t *testing.T) {
	storage := newFakeStorage()
	storage.uploadErr = fmt.Errorf("disk full")
	p := newTestPipeline(storage)

	result, err := p.Upload(context.Background(), jpegUpload(t, 400, 400), "u1")
	if err == nil {
		t.Fatal("expected error when upload fails")
	}
	if errors.GetType(err) != errors.ErrorTypeExternal {
		t.Errorf("error type = %q, want external", errors.GetType(err))
	}
	if result.AvatarURL != "" || result.ThumbnailURL != "" {
		t.Errorf("partial result leaked on failure: %+v", result)
	}
}

func TestUploadUndecodableImageIsValidationError(t *testing.T) {
	storage := newFakeStorage()
	p := newTestPipeline(storage)

	upload := FileUpload{
		Name:        "broken.jpg",
		ContentType: "image/jpeg",
		Size:        12,
		Data:        []byte("not an image"),
	}

	_, err := p.Upload(context.Background(), upload, "u1")
	if err == nil {
		t.Fatal("expected error for undecodable data")
	}
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Errorf("error type = %q, want validation", errors.GetType(err))
	}
	if len(storage.uploads) != 0 {
		t.Error("objects uploaded despite undecodable input")
	}
}

func TestCleanupPreviousReportsRemovals(t *testing.T) {
	storage := newFakeStorage()
	storage.listed = []ObjectInfo{
		{Key: "u1/avatar-1-original.jpg"},
		{Key: "u1/avatar-1-thumb.jpg"},
	}
	p := newTestPipeline(storage)

	result := p.CleanupPrevious(context.Background(), "u1")
	if result.Err != nil {
		t.Fatalf("CleanupPrevious failed: %v", result.Err)
	}
	if result.Removed != 2 {
		t.Errorf("Removed = %d, want 2", result.Removed)
	}
}

func TestCleanupPreviousNothingToRemove(t *testing.T) {
	storage := newFakeStorage()
	p := newTestPipeline(storage)

	result := p.CleanupPrevious(context.Background(), "u1")
	if result.Err != nil || result.Removed != 0 {
		t.Errorf("CleanupPrevious on empty prefix = %+v, want zero result", result)
	}
	if len(storage.removedKeys) != 0 {
		t.Errorf("Remove called with no objects: %v", storage.removedKeys)
	}
}

func TestCleanupPreviousRemoveFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.listed = []ObjectInfo{{Key: "u1/avatar-1-original.jpg"}}
	storage.removeErr = fmt.Errorf("access denied")
	p := newTestPipeline(storage)

	result := p.CleanupPrevious(context.Background(), "u1")
	if result.Err == nil {
		t.Fatal("expected error from failed removal")
	}
	if result.Removed != 0 {
		t.Errorf("Removed = %d, want 0 on failure", result.Removed)
	}
}
