package service

import (
	"context"
	"io"
)

type UploadMetadata struct {
	Folder   string
	Filename string
	OwnerID  string
}

type UploadResult struct {
	URL         string `json:"url"`
	ObjectName  string `json:"object_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// MediaUploadService stores images and returns a publicly reachable URL.
type MediaUploadService interface {
	Upload(ctx context.Context, file io.Reader, meta UploadMetadata) (*UploadResult, error)
	Delete(ctx context.Context, fileURL string) error
	Close() error
}
