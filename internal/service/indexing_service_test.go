package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samims/indexer/internal/credentials"
	appErr "github.com/samims/indexer/internal/errors"
	"github.com/samims/indexer/internal/lock"
	"github.com/samims/indexer/internal/model"
	"github.com/samims/indexer/internal/source"
	"github.com/samims/indexer/internal/storage"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubRunner struct {
	gotURLs     []string
	gotAccounts int
	report      model.RunReport
}

func (r *stubRunner) Run(_ context.Context, urls []string, _ credentials.Source, accountCount int) model.RunReport {
	r.gotURLs = urls
	r.gotAccounts = accountCount
	return r.report
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Start(context.Context) {}
func (p *recordingPublisher) Close(context.Context) {}
func (p *recordingPublisher) Publish(_ context.Context, ev model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type failingSource struct{}

func (failingSource) URLs(context.Context) ([]string, error) {
	return nil, appErr.NewSourceUnavailable("sheet down")
}

func sampleReport() model.RunReport {
	return model.RunReport{
		RunID:            uuid.NewString(),
		TotalURLsTried:   2,
		SuccessfulURLs:   1,
		URLsWithError429: 1,
		Accounts: []model.AccountReport{{
			Account:          1,
			TotalURLsTried:   2,
			SuccessfulURLs:   1,
			URLsWithError429: 1,
			Results: []model.Outcome{
				{URL: "https://a.example", Status: model.StatusSuccess},
				{URL: "https://b.example", Status: model.StatusRateLimited, Code: 429, Message: "Quota exceeded"},
			},
		}},
	}
}

func TestIndexingService_StartRun(t *testing.T) {
	runner := &stubRunner{report: sampleReport()}
	store := storage.NewMockRunStore(t)
	store.On("Save", mock.Anything, mock.AnythingOfType("*model.RunReport")).Return(nil).Once()
	pub := &recordingPublisher{}

	svc := NewIndexingService(
		source.Static{" https://a.example ", "", "https://b.example"},
		credentials.Static{"tok"},
		runner, store, lock.NewMemoryLocker(), pub,
		RunSettings{AccountCount: 3, LockTTL: time.Minute},
		testLogger,
	)

	report, err := svc.StartRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runner.report.RunID, report.RunID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, runner.gotURLs)
	assert.Equal(t, 3, runner.gotAccounts)

	require.Len(t, pub.events, 2)
	assert.Equal(t, model.EventURLRateLimited, pub.events[0].Type)
	assert.Equal(t, "https://b.example", pub.events[0].URL)
	assert.Equal(t, 1, pub.events[0].Account)
	assert.Equal(t, model.EventRunCompleted, pub.events[1].Type)

	// lock released, a second run is accepted
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	_, err = svc.StartRun(context.Background())
	assert.NoError(t, err, "persistence failure must not fail the run")
}

func TestIndexingService_StartRun_SourceUnavailable(t *testing.T) {
	runner := &stubRunner{}
	store := storage.NewMockRunStore(t)

	svc := NewIndexingService(failingSource{}, credentials.Static{}, runner, store,
		lock.NewMemoryLocker(), nil, RunSettings{AccountCount: 1, LockTTL: time.Minute}, testLogger)

	_, err := svc.StartRun(context.Background())
	require.Error(t, err)
	assert.True(t, appErr.IsSourceUnavailable(err))
	assert.Nil(t, runner.gotURLs)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIndexingService_StartRun_InProgress(t *testing.T) {
	locker := lock.NewMemoryLocker()
	ok, err := locker.TryAcquire(context.Background(), runLockKey, "someone-else", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	svc := NewIndexingService(source.Static{"https://a.example"}, credentials.Static{"tok"},
		&stubRunner{}, storage.NewMockRunStore(t), locker, nil,
		RunSettings{AccountCount: 1, LockTTL: time.Minute}, testLogger)

	_, err = svc.StartRun(context.Background())
	assert.True(t, appErr.IsRunInProgress(err))
}

func TestIndexingService_ListRuns(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
		storeErr  error
		wantErr   bool
	}{
		{name: "default limit", limit: 0, wantLimit: defaultRunLimit},
		{name: "explicit limit", limit: 5, wantLimit: 5},
		{name: "clamped limit", limit: 10_000, wantLimit: maxRunLimit},
		{name: "store failure", limit: 5, wantLimit: 5, storeErr: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockRunStore(t)
			store.On("FindAll", mock.Anything, tt.wantLimit).Return([]model.RunSummary{{RunID: "x"}}, tt.storeErr)

			svc := NewIndexingService(nil, nil, nil, store, lock.NewMemoryLocker(), nil, RunSettings{}, testLogger)
			runs, err := svc.ListRuns(context.Background(), tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, runs, 1)
		})
	}
}

func TestIndexingService_GetRun(t *testing.T) {
	id := uuid.NewString()

	t.Run("found", func(t *testing.T) {
		store := storage.NewMockRunStore(t)
		store.On("FindByID", mock.Anything, id).Return(model.RunReport{RunID: id}, nil)
		svc := NewIndexingService(nil, nil, nil, store, lock.NewMemoryLocker(), nil, RunSettings{}, testLogger)

		got, err := svc.GetRun(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, got.RunID)
	})

	t.Run("not found", func(t *testing.T) {
		store := storage.NewMockRunStore(t)
		store.On("FindByID", mock.Anything, id).Return(model.RunReport{}, appErr.NewNotFound("run %s", id))
		svc := NewIndexingService(nil, nil, nil, store, lock.NewMemoryLocker(), nil, RunSettings{}, testLogger)

		_, err := svc.GetRun(context.Background(), id)
		assert.True(t, appErr.IsNotFound(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := NewIndexingService(nil, nil, nil, storage.NewMockRunStore(t), lock.NewMemoryLocker(), nil, RunSettings{}, testLogger)

		_, err := svc.GetRun(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, appErr.ErrInvalidInput)
	})
}
