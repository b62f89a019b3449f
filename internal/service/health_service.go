package service

import (
	"context"
	"log/slog"
	"time"
)

// Pinger is any dependency readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

type healthService struct {
	deps   []Pinger
	logger *slog.Logger
}

func NewHealthService(logger *slog.Logger, deps ...Pinger) HealthService {
	l := logger.With("layer", "service", "component", "healthService")
	return &healthService{deps: deps, logger: l}
}

func (s *healthService) Liveness(ctx context.Context) error {
	s.logger.Debug("Liveness check passed")
	return nil
}

func (s *healthService) Readiness(ctx context.Context) error {
	s.logger.Debug("Readiness check initiated")
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for _, d := range s.deps {
		if err := d.Ping(ctx); err != nil {
			s.logger.Error("Readiness check failed", slog.String("error", err.Error()))
			return err
		}
	}
	s.logger.Debug("Readiness check passed")
	return nil
}
