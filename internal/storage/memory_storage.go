package storage

import (
	"context"
	"sync"

	appErr "github.com/samims/indexer/internal/errors"
	"github.com/samims/indexer/internal/model"
)

// MemoryStorage keeps the most recent runs in process memory.
type MemoryStorage struct {
	mu       sync.RWMutex
	capacity int
	runs     []model.RunReport // oldest first
}

func NewMemoryStorage(capacity int) *MemoryStorage {
	return &MemoryStorage{capacity: max(capacity, 1)}
}

func (m *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryStorage) Save(_ context.Context, report *model.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, *report)
	if over := len(m.runs) - m.capacity; over > 0 {
		m.runs = append([]model.RunReport(nil), m.runs[over:]...)
	}
	return nil
}

// FindAll returns up to limit summaries, newest first.
func (m *MemoryStorage) FindAll(_ context.Context, limit int) ([]model.RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.RunSummary{}
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i].Summary())
	}
	return out, nil
}

func (m *MemoryStorage) FindByID(_ context.Context, id string) (model.RunReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.runs {
		if r.RunID == id {
			return r, nil
		}
	}
	return model.RunReport{}, appErr.NewNotFound("run %s", id)
}
