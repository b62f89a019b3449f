package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/samims/indexer/internal/storage"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthService(t *testing.T) {
	store := storage.NewMockRunStore(t)
	store.On("Ping", mock.Anything).Return(nil)

	svc := NewHealthService(testLogger, store)
	assert.NoError(t, svc.Liveness(context.Background()))
	assert.NoError(t, svc.Readiness(context.Background()))

	down := NewHealthService(testLogger, store, pingFunc(func(context.Context) error {
		return errors.New("redis down")
	}))
	assert.EqualError(t, down.Readiness(context.Background()), "redis down")
	assert.NoError(t, down.Liveness(context.Background()))
}
