package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/samims/indexer/internal/config"
	"github.com/samims/indexer/internal/credentials"
	"github.com/samims/indexer/internal/dispatch"
	"github.com/samims/indexer/internal/kafka"
	"github.com/samims/indexer/internal/lock"
	"github.com/samims/indexer/internal/logger"
	"github.com/samims/indexer/internal/notifier"
	"github.com/samims/indexer/internal/orchestrator"
	"github.com/samims/indexer/internal/service"
	"github.com/samims/indexer/internal/source"
	"github.com/samims/indexer/internal/storage"
	"github.com/samims/indexer/pkg/observability"
	"github.com/samims/indexer/pkg/tracing"
)

const historyCapacity = 100

// app is the wired object graph shared by serve and run.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	indexing service.IndexingService
	health   service.HealthService
	closers  []func()
}

type appOptions struct {
	urlFile string
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if flagLogLevel != "" {
		cfg.App.LogLevel = flagLogLevel
	}
	l := logger.NewLogger(cfg.App.LogLevel)
	slog.SetDefault(l)
	return cfg, l, nil
}

func newApp(ctx context.Context, cfg config.Config, l *slog.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: l}

	if cfg.Notifier.InsecureSkipVerify {
		l.Warn("TLS certificate verification is disabled for the indexing endpoint; set INSECURE_SKIP_VERIFY=false to enable it")
	}

	if tcfg := tracing.NewConfig(); tcfg.Enabled() {
		shutdown, err := observability.NewTracerProvider(ctx, tcfg, l)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
	}

	client := notifier.New(cfg.Notifier, l)
	runner := dispatch.NewRunner(client, cfg.Run.MaxInFlight, l)
	orch := orchestrator.New(runner, cfg.Run, l)
	creds := credentials.NewFileSource(cfg.Credentials, l)
	src := newURLSource(cfg, opts.urlFile, l)

	store, err := newRunStore(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	deps := []service.Pinger{store}

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Redis.Addr != "" {
		rl := lock.NewRedisLocker(lock.NewRedisClient(cfg.Redis))
		a.closers = append(a.closers, func() { rl.Close() })
		deps = append(deps, rl)
		locker = rl
		l.Info("Using Redis run lock", slog.String("addr", cfg.Redis.Addr))
	}

	publisher, err := newPublisher(ctx, cfg, l, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.indexing = service.NewIndexingService(src, creds, orch, store, locker, publisher,
		service.RunSettings{AccountCount: cfg.Run.AccountCount, LockTTL: cfg.Redis.LockTTL}, l)
	a.health = service.NewHealthService(l, deps...)
	return a, nil
}

func newURLSource(cfg config.Config, urlFile string, l *slog.Logger) source.Source {
	if urlFile != "" {
		return source.File{Path: urlFile}
	}
	httpClient := &http.Client{Timeout: cfg.Notifier.RequestTimeout}
	return source.NewSheet(cfg.Sheet, httpClient, l)
}

func newRunStore(ctx context.Context, cfg config.Config, a *app) (storage.RunStore, error) {
	if cfg.DB.URL == "" {
		a.logger.Info("DATABASE_URL not set, keeping run history in memory", slog.Int("capacity", historyCapacity))
		return storage.NewMemoryStorage(historyCapacity), nil
	}
	pool, err := storage.NewPostgresPool(ctx, cfg.DB.URL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)

	ps := storage.NewPostgresStorage(pool)
	if err := ps.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate run history: %w", err)
	}
	return ps, nil
}

func newPublisher(ctx context.Context, cfg config.Config, l *slog.Logger, a *app) (kafka.EventPublisher, error) {
	if !cfg.Kafka.Enabled() {
		return kafka.NopPublisher{}, nil
	}
	ap, err := kafka.NewAsyncProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	var wg sync.WaitGroup
	p := kafka.NewProducer(ap, cfg.Kafka.Topic, l, &wg, tracing.NewTracer(tracing.GetTracer("kafka")))
	p.Start(ctx)
	a.closers = append(a.closers, func() { p.Close(context.Background()) })
	return p, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
