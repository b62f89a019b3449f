package storage

import (
	"context"

	"github.com/samims/indexer/internal/model"
)

// RunStore keeps the history of completed runs.
type RunStore interface {
	Ping(ctx context.Context) error
	Save(ctx context.Context, report *model.RunReport) error
	FindAll(ctx context.Context, limit int) ([]model.RunSummary, error)
	FindByID(ctx context.Context, id string) (model.RunReport, error)
}
