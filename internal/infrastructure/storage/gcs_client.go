package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"petadopt/internal/domain/service"
	"petadopt/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

var segmentUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage client")
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration: %v", err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	corsConfig := storage.CORS{
		MaxAge:          time.Hour,
		Methods:         []string{"GET", "HEAD"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type"},
	}

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get bucket attributes")
	}

	if len(bucketAttrs.CORS) == 0 {
		_, err := bucket.Update(ctx, storage.BucketAttrsToUpdate{
			CORS: []storage.CORS{corsConfig},
		})
		if err != nil {
			return errors.Wrap(err, "failed to update bucket CORS")
		}
	}

	return nil
}

// Upload stores an image under folder/owner/ and returns its public URL.
// Content that does not sniff as a raster image is rejected with ErrNotImage.
func (c *CloudStorageClient) Upload(ctx context.Context, file io.Reader, meta service.UploadMetadata) (*service.UploadResult, error) {
	detected, body, err := DetectImage(file)
	if err != nil {
		return nil, err
	}

	objectName := ObjectName(meta, detected.Extension)

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = detected.ContentType
	wc.CacheControl = "public, max-age=86400" // 1 day caching
	if meta.Filename != "" {
		wc.Metadata = map[string]string{"original_name": meta.Filename}
	}

	size, err := io.Copy(wc, body)
	if err != nil {
		wc.Close()
		return nil, errors.Wrap(err, "failed to copy file to GCS")
	}

	if err := wc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close writer")
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		// buckets with uniform access reject object ACLs; they are made public at bucket level
		logger.Warn("Failed to set public ACL on %s: %v", objectName, err)
	}

	logger.Info("Uploaded %s (%d bytes, %s)", objectName, size, detected.ContentType)

	return &service.UploadResult{
		URL:         PublicURL(c.bucketName, objectName),
		ObjectName:  objectName,
		ContentType: detected.ContentType,
		Size:        size,
	}, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, fileURL string) error {
	objectName, err := ObjectFromURL(c.bucketName, fileURL)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return errors.Wrap(err, "failed to delete file")
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

func PublicURL(bucket, objectName string) string {
	return fmt.Sprintf("%s%s/%s", publicURLPrefix, bucket, objectName)
}

// ObjectFromURL extracts the object name from a public URL of bucket.
func ObjectFromURL(bucket, fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", errors.Errorf("invalid GCS URL format: %s", fileURL)
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] != bucket || parts[1] == "" {
		return "", errors.Errorf("invalid GCS URL format or bucket mismatch: %s", fileURL)
	}

	return parts[1], nil
}

func ObjectName(meta service.UploadMetadata, extension string) string {
	folder := segmentUnsafe.ReplaceAllString(strings.Trim(meta.Folder, "/"), "_")
	if folder == "" {
		folder = "uploads"
	}
	owner := segmentUnsafe.ReplaceAllString(meta.OwnerID, "_")
	if owner == "" {
		owner = "anonymous"
	}

	filename := fmt.Sprintf("%s-%s%s", uuid.New().String(), time.Now().Format("20060102150405"), extension)
	return path.Join(folder, owner, filename)
}
