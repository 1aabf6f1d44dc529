package seller

import (
	"context"
	"strings"
	"time"
)

// DocumentStorageService defines the interface for verification document
// storage. It is implemented by the infrastructure layer (S3-compatible
// object storage, or a stub for development).
type DocumentStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a document
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a document
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes a document from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if a document exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AllowedDocumentContentTypes is the whitelist of content types accepted for
// verification documents. SVG is excluded because it can carry scripts.
var AllowedDocumentContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// isAllowedDocumentContentType checks a content type against the whitelist
func isAllowedDocumentContentType(contentType string) bool {
	return AllowedDocumentContentTypes[strings.ToLower(contentType)]
}
