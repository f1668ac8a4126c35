package interfaces

import (
	"context"

	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/lang"
)

// WebhookUseCase defines the interface for sync hook processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// SyncUseCase downloads new reports from the station website
type SyncUseCase interface {
	Sync(ctx context.Context, opts model.SyncOptions) (*model.SyncResult, error)
	// Runs returns the latest runs, newest first
	Runs(ctx context.Context, limit int) ([]*model.SyncResult, error)
}

// CatalogUseCase gives access to the stored reports
type CatalogUseCase interface {
	// Reports returns the stored reports, newest month first
	Reports(ctx context.Context) ([]*model.StoredReport, error)
	// Report returns the report of a month formatted as YYYY-MM
	Report(ctx context.Context, month string) (*model.StoredReport, error)
	// Dashboard merges every stored report into one
	Dashboard(ctx context.Context) (*model.Report, error)
	// Manifest lists the stored reports, newest first
	Manifest(ctx context.Context) (*model.Manifest, error)
	// Query evaluates a pipeline expression over the dashboard report
	Query(ctx context.Context, expr string) (*lang.Result, error)
}
