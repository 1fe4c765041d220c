package mocks

import (
	"context"
	"time"

	"docsync/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Upload(ctx context.Context, content []byte, fileName, mimeType, ownerID string) (storage.UploadResult, error) {
	args := m.Called(ctx, content, fileName, mimeType, ownerID)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockBackend) Delete(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func (m *MockBackend) SignAccessURL(ctx context.Context, reference string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, reference, ttl)
	return args.String(0), args.Error(1)
}
