package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

const defaultMaxFileSize = 10 * 1024 * 1024

var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
}

type MediaUseCase struct {
	objects     service.ObjectStore
	folder      string
	maxFiles    int
	maxFileSize int64
}

func NewMediaUseCase(objects service.ObjectStore, folder string, maxFiles int) *MediaUseCase {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &MediaUseCase{
		objects:     objects,
		folder:      strings.Trim(folder, "/"),
		maxFiles:    maxFiles,
		maxFileSize: defaultMaxFileSize,
	}
}

type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type UploadResult struct {
	URLs   []string `json:"urls"`
	Failed []string `json:"failed,omitempty"`
}

// UploadImages stores each file independently. The call fails only when no
// file could be stored; otherwise failures are listed by original name.
func (uc *MediaUseCase) UploadImages(ctx context.Context, userID string, files []UploadFile) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, errors.BadRequest("At least one file is required", nil)
	}
	if len(files) > uc.maxFiles {
		return nil, errors.BadRequest(fmt.Sprintf("At most %d files can be uploaded at once", uc.maxFiles), nil)
	}

	folder := uc.folder + "/" + userID
	result := &UploadResult{URLs: []string{}}

	for _, f := range files {
		ext, ok := mediaExtensions[strings.ToLower(f.ContentType)]
		if !ok {
			logger.Warn("Rejected upload %s: unsupported type %s", f.Name, f.ContentType)
			result.Failed = append(result.Failed, f.Name)
			continue
		}
		if f.Size > uc.maxFileSize {
			logger.Warn("Rejected upload %s: %d bytes exceeds limit", f.Name, f.Size)
			result.Failed = append(result.Failed, f.Name)
			continue
		}

		url, err := uc.objects.Upload(ctx, folder, uuid.NewString()+ext, f.ContentType, f.Reader)
		if err != nil {
			logger.Error("Upload of %s failed: %v", f.Name, err)
			result.Failed = append(result.Failed, f.Name)
			continue
		}
		result.URLs = append(result.URLs, url)
	}

	if len(result.URLs) == 0 {
		return nil, errors.BadRequest("No files could be uploaded", nil)
	}
	return result, nil
}

// DeleteImages attempts every URL and reports the first failure.
func (uc *MediaUseCase) DeleteImages(ctx context.Context, urls []string) error {
	var firstErr error
	for _, url := range urls {
		if err := uc.objects.Delete(ctx, url); err != nil {
			logger.Warn("Failed to delete %s: %v", url, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return errors.Internal("Failed to delete some files", firstErr)
	}
	return nil
}
