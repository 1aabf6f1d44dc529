package storage

import (
	"context"
	"errors"
	"time"

	sellerapp "github.com/opas/backend/internal/application/seller"
)

var _ sellerapp.DocumentStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage satisfies DocumentStorageService without a real
// backend. It hands out synthetic URLs and succeeds on every call, which
// keeps the registration flow usable in local development before an
// object store is wired up.
type StubObjectStorage struct {
	// BaseURL prefixes every generated URL.
	BaseURL string
}

// NewStubObjectStorage returns a stub with the example base URL.
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
	}
}

func (s *StubObjectStorage) presignStub(action, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/" + action + "/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// GenerateUploadURL returns a synthetic upload URL.
func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	return s.presignStub("upload", storageKey, expiresIn)
}

// GenerateDownloadURL returns a synthetic download URL.
func (s *StubObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	return s.presignStub("download", storageKey, expiresIn)
}

// DeleteObject succeeds without touching anything.
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// ObjectExists reports every key as present so upload confirmation can
// proceed against the stub.
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}
