package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func TestRedisURLCache_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		result *redis.StringCmd
		want   string
		wantOK bool
	}{
		{name: "hit", result: redis.NewStringResult("https://signed", nil), want: "https://signed", wantOK: true},
		{name: "miss", result: redis.NewStringResult("", redis.Nil)},
		{name: "error is a miss", result: redis.NewStringResult("", errors.New("connection refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockClient)
			client.On("Get", ctx, "docsync:url:users/u1/documents/a.pdf").Return(tt.result)

			got, ok := NewRedis(client, nil).Get(ctx, "users/u1/documents/a.pdf")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			client.AssertExpectations(t)
		})
	}
}

func TestRedisURLCache_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("stores with ttl", func(t *testing.T) {
		client := new(mockClient)
		client.On("Set", ctx, "docsync:url:k", "https://signed", 55*time.Minute).
			Return(redis.NewStatusResult("OK", nil)).Once()

		NewRedis(client, nil).Set(ctx, "k", "https://signed", 55*time.Minute)
		client.AssertExpectations(t)
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		client := new(mockClient)
		client.On("Set", ctx, "docsync:url:k", "https://signed", time.Minute).
			Return(redis.NewStatusResult("", errors.New("readonly"))).Once()

		assert.NotPanics(t, func() { NewRedis(client, nil).Set(ctx, "k", "https://signed", time.Minute) })
		client.AssertExpectations(t)
	})

	t.Run("non positive ttl is skipped", func(t *testing.T) {
		client := new(mockClient)
		NewRedis(client, nil).Set(ctx, "k", "https://signed", 0)
		client.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRedisURLCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("Del", ctx, []string{"docsync:url:k"}).Return(redis.NewIntResult(1, nil)).Once()

	NewRedis(client, nil).Invalidate(ctx, "k")
	client.AssertExpectations(t)
}

func TestNoop(t *testing.T) {
	c := Noop()
	c.Set(context.Background(), "k", "u", time.Hour)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	c.Invalidate(context.Background(), "k")
}
