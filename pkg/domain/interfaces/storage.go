package interfaces

import (
	"context"

	"github.com/m-mizutani/meteo/pkg/domain/model"
)

// ReportStore keeps the raw report files
type ReportStore interface {
	// List returns the names of all stored files, sorted
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// RunRepository records the history of sync runs
type RunRepository interface {
	PutRun(ctx context.Context, run *model.SyncResult) error
	ListRuns(ctx context.Context, limit int) ([]*model.SyncResult, error)
}
