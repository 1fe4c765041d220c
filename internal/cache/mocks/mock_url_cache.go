package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockURLCache struct {
	mock.Mock
}

func (m *MockURLCache) Get(ctx context.Context, reference string) (string, bool) {
	args := m.Called(ctx, reference)
	return args.String(0), args.Bool(1)
}

func (m *MockURLCache) Set(ctx context.Context, reference, url string, ttl time.Duration) {
	m.Called(ctx, reference, url, ttl)
}

func (m *MockURLCache) Invalidate(ctx context.Context, reference string) {
	m.Called(ctx, reference)
}
