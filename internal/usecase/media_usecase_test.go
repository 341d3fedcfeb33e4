package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/satvik8373/Rentieo/internal/infrastructure/storage"
	"github.com/satvik8373/Rentieo/pkg/errors"
)

func TestUploadImages_PartialSuccess(t *testing.T) {
	objects := storage.NewMemoryStore()
	uc := NewMediaUseCase(objects, "listings", 5)

	result, err := uc.UploadImages(context.Background(), "u1", []UploadFile{
		{Name: "a.jpg", ContentType: "image/jpeg", Size: 4, Reader: strings.NewReader("jpeg")},
		{Name: "notes.txt", ContentType: "text/plain", Size: 4, Reader: strings.NewReader("text")},
		{Name: "clip.mp4", ContentType: "video/mp4", Size: 3, Reader: strings.NewReader("mp4")},
	})
	require.NoError(t, err)
	require.Len(t, result.URLs, 2)
	assert.Equal(t, []string{"notes.txt"}, result.Failed)
	assert.True(t, strings.HasPrefix(result.URLs[0], "memory://listings/u1/"))
	assert.True(t, strings.HasSuffix(result.URLs[0], ".jpg"))

	data, ok := objects.Object(result.URLs[1])
	require.True(t, ok)
	assert.Equal(t, "mp4", string(data))
}

func TestUploadImages_AllFail(t *testing.T) {
	objects := &mockObjectStore{}
	objects.On("Upload", mock.Anything, "listings/u1", mock.Anything, "image/png", mock.Anything).Return("", assert.AnError)
	uc := NewMediaUseCase(objects, "listings", 5)

	_, err := uc.UploadImages(context.Background(), "u1", []UploadFile{
		{Name: "a.png", ContentType: "image/png", Reader: strings.NewReader("png")},
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
	objects.AssertExpectations(t)
}

func TestUploadImages_Limits(t *testing.T) {
	uc := NewMediaUseCase(storage.NewMemoryStore(), "listings", 1)

	_, err := uc.UploadImages(context.Background(), "u1", nil)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	files := []UploadFile{
		{Name: "a.png", ContentType: "image/png", Reader: strings.NewReader("a")},
		{Name: "b.png", ContentType: "image/png", Reader: strings.NewReader("b")},
	}
	_, err = uc.UploadImages(context.Background(), "u1", files)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestDeleteImages(t *testing.T) {
	objects := &mockObjectStore{}
	objects.On("Delete", mock.Anything, "a").Return(nil)
	objects.On("Delete", mock.Anything, "b").Return(assert.AnError)
	objects.On("Delete", mock.Anything, "c").Return(nil)
	uc := NewMediaUseCase(objects, "listings", 5)

	err := uc.DeleteImages(context.Background(), []string{"a", "b", "c"})
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))
	objects.AssertNumberOfCalls(t, "Delete", 3)
}
