package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/meteo/pkg/domain/model"
)

// RunRepository keeps sync runs in process memory
type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]model.SyncResult
}

// NewRunRepository creates an empty in-memory run history
func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[string]model.SyncResult)}
}

func (r *RunRepository) PutRun(ctx context.Context, run *model.SyncResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

// ListRuns returns the most recent runs first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*model.SyncResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*model.SyncResult, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, &run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
