package handler

import (
	"mime/multipart"

	"github.com/labstack/echo/v4"

	"github.com/satvik8373/Rentieo/internal/usecase"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
	"github.com/satvik8373/Rentieo/pkg/response"
)

const maxMultipartMemory = 32 << 20

type FileHandler struct {
	mediaUseCase *usecase.MediaUseCase
}

func NewFileHandler(mediaUseCase *usecase.MediaUseCase) *FileHandler {
	return &FileHandler{
		mediaUseCase: mediaUseCase,
	}
}

type deleteFilesRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,required"`
}

// UploadImages accepts a multipart form with one or more "files" parts.
func (h *FileHandler) UploadImages(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return response.Error(c, errors.BadRequest("Invalid multipart form", err))
	}
	headers := c.Request().MultipartForm.File["files"]
	if len(headers) == 0 {
		return response.Error(c, errors.BadRequest("No files provided", nil))
	}

	files := make([]usecase.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			logger.Warn("Failed to open upload %s: %v", header.Filename, err)
			continue
		}
		opened = append(opened, f)
		files = append(files, usecase.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      f,
		})
	}

	result, err := h.mediaUseCase.UploadImages(c.Request().Context(), uid, files)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, result)
}

func (h *FileHandler) DeleteFiles(c echo.Context) error {
	if _, err := currentUID(c); err != nil {
		return response.Error(c, err)
	}

	var req deleteFilesRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.mediaUseCase.DeleteImages(c.Request().Context(), req.URLs); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"deleted": len(req.URLs)})
}
