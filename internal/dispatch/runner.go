// Package dispatch runs one account's shard of URLs through a notifier
// session and tallies the outcomes.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samims/indexer/internal/metrics"
	"github.com/samims/indexer/internal/model"
	"github.com/samims/indexer/internal/notifier"
)

// Opener opens a notifier session bound to one bearer token.
type Opener interface {
	Open(token string) notifier.Submitter
}

type Runner struct {
	opener      Opener
	maxInFlight int
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewRunner(opener Opener, maxInFlight int, logger *slog.Logger) *Runner {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Runner{
		opener:      opener,
		maxInFlight: maxInFlight,
		logger:      logger.With("layer", "dispatch", "component", "runner"),
		tracer:      otel.Tracer("dispatch"),
	}
}

// RunBatch submits every URL of the shard concurrently, at most maxInFlight
// at a time, and returns once all of them have an outcome. A failing URL
// never cancels its siblings. Results keep the shard's order.
func (r *Runner) RunBatch(ctx context.Context, index int, token string, urls []string) model.AccountReport {
	report := model.AccountReport{
		Index:          index,
		Account:        index + 1,
		TotalURLsTried: len(urls),
		Results:        make([]model.Outcome, len(urls)),
	}
	if len(urls) == 0 {
		r.logger.Info("Empty shard, nothing to submit", slog.Int("account", report.Account))
		return report
	}

	ctx, span := r.tracer.Start(ctx, "RunBatch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("account.index", index),
		attribute.Int("batch.size", len(urls)),
	)

	start := time.Now()
	sess := r.opener.Open(token)
	defer sess.Close()

	var g errgroup.Group
	g.SetLimit(r.maxInFlight)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			began := time.Now()
			out := Classify(sess.Submit(ctx, u))
			report.Results[i] = out

			metrics.Submissions.WithLabelValues(string(out.Status)).Inc()
			metrics.SubmissionDuration.WithLabelValues(string(out.Status)).Observe(time.Since(began).Seconds())
			r.logger.Debug("URL processed",
				slog.Int("account", report.Account),
				slog.String("url", out.URL),
				slog.String("status", string(out.Status)),
				slog.Int("attempts", out.Attempts))
			return nil
		})
	}
	_ = g.Wait()

	tally(&report)
	metrics.AccountBatchDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.Int("batch.succeeded", report.SuccessfulURLs),
		attribute.Int("batch.rate_limited", report.URLsWithError429),
		attribute.Int("batch.other_errors", report.OtherErrors),
	)
	r.logger.Info("Account batch finished",
		slog.Int("account", report.Account),
		slog.Int("total_urls_tried", report.TotalURLsTried),
		slog.Int("successful_urls", report.SuccessfulURLs),
		slog.Int("urls_with_error_429", report.URLsWithError429),
		slog.Int("other_errors", report.OtherErrors),
		slog.Duration("duration", time.Since(start)))
	return report
}

func tally(report *model.AccountReport) {
	for _, out := range report.Results {
		switch {
		case out.Status == model.StatusSuccess:
			report.SuccessfulURLs++
		case out.Status == model.StatusRateLimited:
			report.URLsWithError429++
		case out.Status.IsOtherError():
			report.OtherErrors++
		}
	}
}
