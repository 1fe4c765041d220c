package mocks

import (
	"context"

	"docsync/internal/model"
	"docsync/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) RegisterMetadata(ctx context.Context, ownerID string, files []service.FileMetadata) (*service.BatchResult, error) {
	args := m.Called(ctx, ownerID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchResult), args.Error(1)
}

func (m *MockDocumentService) Sync(ctx context.Context, ownerID string, files []service.FileMetadata, location string) (*service.BatchResult, error) {
	args := m.Called(ctx, ownerID, files, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchResult), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*service.View, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.View), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, ownerID string, metadataOnly bool) ([]service.View, error) {
	args := m.Called(ctx, ownerID, metadataOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.View), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*service.View, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.View), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, id string, patch model.Patch) (*service.View, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.View), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) RequestLocalOpen(ctx context.Context, id string) (*service.LocalOpen, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LocalOpen), args.Error(1)
}
