package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samims/indexer/internal/credentials"
	appErr "github.com/samims/indexer/internal/errors"
	"github.com/samims/indexer/internal/kafka"
	"github.com/samims/indexer/internal/lock"
	"github.com/samims/indexer/internal/metrics"
	"github.com/samims/indexer/internal/model"
	"github.com/samims/indexer/internal/source"
	"github.com/samims/indexer/internal/storage"
)

const (
	runLockKey      = "indexer:run-lock"
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// Runner executes one run over an already-cleaned URL list.
type Runner interface {
	Run(ctx context.Context, urls []string, creds credentials.Source, accountCount int) model.RunReport
}

type IndexingService interface {
	StartRun(ctx context.Context) (model.RunReport, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
	GetRun(ctx context.Context, id string) (model.RunReport, error)
}

// RunSettings are the per-run knobs that do not belong to a collaborator.
type RunSettings struct {
	AccountCount int
	LockTTL      time.Duration
}

type indexingService struct {
	source    source.Source
	creds     credentials.Source
	runner    Runner
	store     storage.RunStore
	locker    lock.Locker
	publisher kafka.EventPublisher
	settings  RunSettings
	logger    *slog.Logger
}

func NewIndexingService(
	src source.Source,
	creds credentials.Source,
	runner Runner,
	store storage.RunStore,
	locker lock.Locker,
	publisher kafka.EventPublisher,
	settings RunSettings,
	logger *slog.Logger,
) IndexingService {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &indexingService{
		source:    src,
		creds:     creds,
		runner:    runner,
		store:     store,
		locker:    locker,
		publisher: publisher,
		settings:  settings,
		logger:    logger.With("layer", "service", "component", "indexingService"),
	}
}

// StartRun fetches the URL list and runs it to completion, even if ctx is
// cancelled once the lock is held. Only one run may be in flight; a
// concurrent call fails with ErrRunInProgress.
func (s *indexingService) StartRun(ctx context.Context) (model.RunReport, error) {
	owner := uuid.NewString()
	ok, err := s.locker.TryAcquire(ctx, runLockKey, owner, s.settings.LockTTL)
	if err != nil {
		metrics.Runs.WithLabelValues("error").Inc()
		return model.RunReport{}, appErr.NewInternal("acquire run lock: %v", err)
	}
	if !ok {
		metrics.Runs.WithLabelValues("rejected").Inc()
		return model.RunReport{}, appErr.ErrRunInProgress
	}
	// a started run always completes; the caller going away must not cut
	// batches short or turn unsent URLs into errors
	ctx = context.WithoutCancel(ctx)

	defer func() {
		relCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.locker.Release(relCtx, runLockKey, owner); err != nil {
			s.logger.Warn("Failed to release run lock", slog.Any("error", err))
		}
	}()

	raw, err := s.source.URLs(ctx)
	if err != nil {
		metrics.Runs.WithLabelValues("source_unavailable").Inc()
		s.logger.Error("URL source unavailable", slog.Any("error", err))
		return model.RunReport{}, err
	}
	urls := source.Clean(raw)

	report := s.runner.Run(ctx, urls, s.creds, s.settings.AccountCount)
	metrics.Runs.WithLabelValues("completed").Inc()

	if s.store != nil {
		if err := s.store.Save(ctx, &report); err != nil {
			// history is best effort, the caller still gets the report
			s.logger.Error("Failed to persist run", slog.String("run_id", report.RunID), slog.Any("error", err))
		}
	}
	s.publishEvents(ctx, report)
	return report, nil
}

func (s *indexingService) publishEvents(ctx context.Context, report model.RunReport) {
	now := time.Now()
	for _, acc := range report.Accounts {
		for _, res := range acc.Results {
			if res.Status != model.StatusRateLimited {
				continue
			}
			ev := model.Event{
				RunID:     report.RunID,
				Type:      model.EventURLRateLimited,
				Account:   acc.Account,
				URL:       res.URL,
				Message:   res.Message,
				CreatedAt: now,
			}
			if err := s.publisher.Publish(ctx, ev); err != nil {
				s.logger.Warn("Failed to publish event", slog.String("type", ev.Type), slog.Any("error", err))
			}
		}
	}

	done := model.Event{
		RunID: report.RunID,
		Type:  model.EventRunCompleted,
		Message: fmt.Sprintf("tried=%d successful=%d rate_limited=%d other_errors=%d",
			report.TotalURLsTried, report.SuccessfulURLs, report.URLsWithError429, report.OtherErrors),
		CreatedAt: now,
	}
	if err := s.publisher.Publish(ctx, done); err != nil {
		s.logger.Warn("Failed to publish event", slog.String("type", done.Type), slog.Any("error", err))
	}
}

func (s *indexingService) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	limit = min(limit, maxRunLimit)
	runs, err := s.store.FindAll(ctx, limit)
	if err != nil {
		return nil, appErr.NewInternal("failed to list runs: %v", err)
	}
	return runs, nil
}

func (s *indexingService) GetRun(ctx context.Context, id string) (model.RunReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.RunReport{}, appErr.NewInvalidInput("run id %q is not a uuid", id)
	}
	report, err := s.store.FindByID(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return model.RunReport{}, appErr.NewNotFound("run %s not found", id)
		}
		return model.RunReport{}, appErr.NewInternal("failed to fetch run: %v", err)
	}
	return report, nil
}
