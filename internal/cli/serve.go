package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samims/indexer/internal/handler"
	"github.com/samims/indexer/internal/metrics"
	"github.com/samims/indexer/internal/middleware"
	"github.com/samims/indexer/internal/router"
	"github.com/samims/indexer/internal/service"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the indexing trigger, run history and ops endpoints",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, l, appOptions{})
	if err != nil {
		l.Error("Failed to initialise", slog.Any("error", err))
		return err
	}
	defer a.Close()

	var validator middleware.TokenValidator
	if cfg.App.AuthSecret != "" {
		validator = service.NewJWTService(cfg.App.AuthSecret, 0)
	} else {
		l.Warn("AUTH_SECRET not set, /indexing and /runs are unauthenticated")
	}

	r := router.NewRouter(
		handler.NewRunHandler(a.indexing, l),
		handler.NewHealthHandler(a.health, l),
		validator,
	)

	server := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("Server started", "addr", cfg.App.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Error("Failed to start server", "err", err)
			return err
		}
	case <-ctx.Done():
	}

	l.Info("Shutting down server...")
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxTimeout); err != nil {
		l.Error("Shutdown failed", "err", err)
		return err
	}
	l.Info("Server exited cleanly")
	return nil
}
