package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"

	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/domain/service"
	"petadopt/internal/infrastructure/storage"
	"petadopt/pkg/errors"
	"petadopt/pkg/response"
)

const defaultMediaFolder = "animals"

var mediaFolders = map[string]bool{
	"animals":  true,
	"profiles": true,
}

type MediaHandler struct {
	media    service.MediaUploadService
	maxBytes int64
}

// NewMediaHandler accepts a nil media service; uploads then answer 503.
func NewMediaHandler(media service.MediaUploadService, maxBytes int64) *MediaHandler {
	return &MediaHandler{
		media:    media,
		maxBytes: maxBytes,
	}
}

func (h *MediaHandler) Upload(c echo.Context) error {
	if h.media == nil {
		return response.Error(c, errors.Unavailable("Media uploads are not configured"))
	}

	if h.maxBytes > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxBytes)
	}

	folder := c.FormValue("folder")
	if folder == "" {
		folder = defaultMediaFolder
	}
	if !mediaFolders[folder] {
		return response.Error(c, errors.BadRequest("Unknown upload folder", nil))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("File is required", err))
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		return response.Error(c, errors.BadRequest("File is too large", nil))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open file", err))
	}
	defer file.Close()

	result, err := h.media.Upload(c.Request().Context(), file, service.UploadMetadata{
		Folder:   folder,
		Filename: fileHeader.Filename,
		OwnerID:  middleware.UID(c),
	})
	if err != nil {
		if pkgerrors.Cause(err) == storage.ErrNotImage {
			return response.Error(c, errors.BadRequest("Only JPEG, PNG, GIF, WebP or HEIC images are accepted", err))
		}
		return response.Error(c, errors.Internal("Failed to upload file", err))
	}

	return response.Created(c, result)
}
