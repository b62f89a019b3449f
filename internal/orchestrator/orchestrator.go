// Package orchestrator splits a URL list across accounts and drives one
// batch per account.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samims/indexer/internal/config"
	"github.com/samims/indexer/internal/credentials"
	"github.com/samims/indexer/internal/model"
)

// BatchRunner processes one account's shard.
type BatchRunner interface {
	RunBatch(ctx context.Context, index int, token string, urls []string) model.AccountReport
}

type Orchestrator struct {
	runner             BatchRunner
	quota              int
	accountConcurrency int
	logger             *slog.Logger
	tracer             trace.Tracer
	now                func() time.Time
}

func New(runner BatchRunner, cfg config.RunConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		runner:             runner,
		quota:              cfg.QuotaPerAccount,
		accountConcurrency: max(cfg.AccountConcurrency, 1),
		logger:             logger.With("layer", "orchestrator"),
		tracer:             otel.Tracer("orchestrator"),
		now:                time.Now,
	}
}

// Run processes accountCount accounts and always returns a report. An
// account whose credential cannot be resolved gets a zero-total report
// with a diagnostic and does not affect the others.
func (o *Orchestrator) Run(ctx context.Context, urls []string, creds credentials.Source, accountCount int) model.RunReport {
	accountCount = max(accountCount, 0)
	report := model.RunReport{
		RunID:     uuid.New().String(),
		StartedAt: o.now(),
		Accounts:  make([]model.AccountReport, accountCount),
	}
	log := o.logger.With(slog.String("run_id", report.RunID))

	ctx, span := o.tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", report.RunID),
		attribute.Int("run.urls", len(urls)),
		attribute.Int("run.accounts", accountCount),
		attribute.Int("run.quota", o.quota),
	)
	log.Info("Run started",
		slog.Int("urls", len(urls)),
		slog.Int("accounts", accountCount),
		slog.Int("urls_per_account", o.quota))

	var g errgroup.Group
	g.SetLimit(o.accountConcurrency)
	for i := 0; i < accountCount; i++ {
		i := i
		g.Go(func() error {
			// each goroutine owns slot i only
			report.Accounts[i] = o.runAccount(ctx, log, creds, i, Shard(urls, i, o.quota))
			return nil
		})
	}
	_ = g.Wait()

	aggregate(&report)
	report.UnassignedURLs = len(urls) - Assignable(len(urls), accountCount, o.quota)
	report.FinishedAt = o.now()

	span.SetAttributes(
		attribute.Int("run.succeeded", report.SuccessfulURLs),
		attribute.Int("run.rate_limited", report.URLsWithError429),
		attribute.Int("run.other_errors", report.OtherErrors),
	)
	log.Info("Run finished",
		slog.Int("total_urls_tried", report.TotalURLsTried),
		slog.Int("successful_urls", report.SuccessfulURLs),
		slog.Int("urls_with_error_429", report.URLsWithError429),
		slog.Int("other_errors", report.OtherErrors),
		slog.Int("skipped_urls", report.SkippedURLs),
		slog.Int("unassigned_urls", report.UnassignedURLs),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	return report
}

func (o *Orchestrator) runAccount(ctx context.Context, log *slog.Logger, creds credentials.Source, index int, shard []string) model.AccountReport {
	log.Info("Processing URLs for account", slog.Int("account", index+1), slog.Int("urls", len(shard)))

	token, err := creds.Token(ctx, index)
	if err != nil {
		log.Error("Credential unavailable, skipping account",
			slog.Int("account", index+1),
			slog.Int("skipped_urls", len(shard)),
			slog.Any("error", err))
		return model.AccountReport{
			Index:       index,
			Account:     index + 1,
			SkippedURLs: len(shard),
			Error:       err.Error(),
			Results:     []model.Outcome{},
		}
	}

	report := o.runner.RunBatch(ctx, index, token, shard)
	// the runner owns the tally, the slot owns the index
	report.Index = index
	report.Account = index + 1
	return report
}

func aggregate(report *model.RunReport) {
	for _, a := range report.Accounts {
		report.TotalURLsTried += a.TotalURLsTried
		report.SuccessfulURLs += a.SuccessfulURLs
		report.URLsWithError429 += a.URLsWithError429
		report.OtherErrors += a.OtherErrors
		report.SkippedURLs += a.SkippedURLs
	}
}
