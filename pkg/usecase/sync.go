package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/infra/memory"
	"github.com/m-mizutani/meteo/pkg/noaa"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of reports downloaded at the same time
const DefaultConcurrency = 8

type syncUseCase struct {
	site        interfaces.ReportSite
	store       interfaces.ReportStore
	runs        interfaces.RunRepository
	publisher   interfaces.Publisher
	notifier    interfaces.Notifier
	concurrency int
	now         func() time.Time

	// one run at a time: the scheduler and the hook may fire together
	mu sync.Mutex
}

// SyncOption is a functional option for the sync use case
type SyncOption func(*syncUseCase)

// WithConcurrency bounds the parallel downloads. Values below 1 are ignored.
func WithConcurrency(n int) SyncOption {
	return func(uc *syncUseCase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// WithRunRepository records every run in repo instead of process memory
func WithRunRepository(repo interfaces.RunRepository) SyncOption {
	return func(uc *syncUseCase) {
		uc.runs = repo
	}
}

// WithPublisher sets where reports are published when a run asks for it
func WithPublisher(p interfaces.Publisher) SyncOption {
	return func(uc *syncUseCase) {
		uc.publisher = p
	}
}

// WithNotifier announces finished runs
func WithNotifier(n interfaces.Notifier) SyncOption {
	return func(uc *syncUseCase) {
		uc.notifier = n
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) SyncOption {
	return func(uc *syncUseCase) {
		uc.now = now
	}
}

// NewSync creates a new instance of SyncUseCase
func NewSync(site interfaces.ReportSite, store interfaces.ReportStore, opts ...SyncOption) interfaces.SyncUseCase {
	uc := &syncUseCase{
		site:        site,
		store:       store,
		runs:        memory.NewRunRepository(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Sync downloads every report that is not stored yet plus the rolling reports, then
// regenerates the manifest. Failures of single reports are collected in the result.
func (uc *syncUseCase) Sync(ctx context.Context, opts model.SyncOptions) (*model.SyncResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	trigger := opts.Trigger
	if trigger == "" {
		trigger = model.SyncTriggerManual
	}
	result := &model.SyncResult{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: uc.now().UTC(),
	}

	logger := ctxlog.From(ctx).With("run_id", result.ID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting sync", "trigger", trigger, "concurrency", uc.concurrency)

	sources, err := uc.site.ListReports(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports on the site", goerr.V("run_id", result.ID))
	}
	result.Listed = len(sources)

	stored, err := uc.store.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stored reports", goerr.V("run_id", result.ID))
	}
	known := make(map[string]bool, len(stored))
	for _, name := range stored {
		known[name] = true
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)

	for _, src := range sources {
		name := src.FileName()
		if known[name] && !src.IsRolling() {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		eg.Go(func() error {
			err := uc.fetch(egCtx, src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Failed to fetch report", "name", src.Name, "url", src.URL, "error", err)
				result.Failed = append(result.Failed, model.FailedReport{
					Name:  src.Name,
					URL:   src.URL,
					Error: err.Error(),
				})
				return nil
			}
			result.Downloaded = append(result.Downloaded, name)
			return nil
		})
	}
	// workers never return an error, failures are kept in the result
	_ = eg.Wait()

	sort.Strings(result.Downloaded)
	sort.Strings(result.Skipped)
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Name < result.Failed[j].Name })

	if err := uc.writeManifest(ctx); err != nil {
		return nil, err
	}

	if opts.Publish {
		if uc.publisher == nil {
			return nil, goerr.New("publishing requested but no publisher is configured", goerr.V("run_id", result.ID))
		}
		published, err := uc.publisher.Publish(ctx, commitMessage(result))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to publish reports", goerr.V("run_id", result.ID))
		}
		result.Published = published
	}

	result.FinishedAt = uc.now().UTC()

	if err := uc.runs.PutRun(ctx, result); err != nil {
		logger.Error("Failed to record run", "error", err)
	}

	if uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, summary(result)); err != nil {
			logger.Warn("Failed to notify run", "error", err)
		}
	}

	logger.Info("Sync finished",
		"listed", result.Listed,
		"downloaded", len(result.Downloaded),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"published", result.Published,
	)

	return result, nil
}

// fetch downloads one report and stores it only if it parses
func (uc *syncUseCase) fetch(ctx context.Context, src model.ReportSource) error {
	logger := ctxlog.From(ctx)
	logger.Debug("Downloading report", "name", src.Name, "url", src.URL)

	body, err := uc.site.Download(ctx, src)
	if err != nil {
		return err
	}

	if _, err := noaa.Parse(body); err != nil {
		return goerr.Wrap(err, "downloaded report is not a valid summary", goerr.V("name", src.Name))
	}

	if err := uc.store.Write(ctx, src.FileName(), []byte(body)); err != nil {
		return goerr.Wrap(err, "failed to store report", goerr.V("name", src.Name))
	}

	logger.Debug("Stored report", "name", src.Name, "bytes", len(body))
	return nil
}

func (uc *syncUseCase) writeManifest(ctx context.Context) error {
	manifest, err := NewCatalog(uc.store).Manifest(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to build manifest")
	}

	data, err := toml.Marshal(manifest)
	if err != nil {
		return goerr.Wrap(err, "failed to encode manifest")
	}

	if err := uc.store.Write(ctx, ManifestFile, data); err != nil {
		return goerr.Wrap(err, "failed to write manifest")
	}
	return nil
}

// Runs returns the latest runs
func (uc *syncUseCase) Runs(ctx context.Context, limit int) ([]*model.SyncResult, error) {
	runs, err := uc.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

func commitMessage(r *model.SyncResult) string {
	return fmt.Sprintf("Update weather reports (%d downloaded)", len(r.Downloaded))
}

func summary(r *model.SyncResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "meteo sync `%s` (%s): %d listed, %d downloaded, %d skipped, %d failed",
		r.ID, r.Trigger, r.Listed, len(r.Downloaded), len(r.Skipped), len(r.Failed))
	if r.Published {
		sb.WriteString(", published")
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&sb, "\n• %s: %s", f.Name, f.Error)
	}
	return sb.String()
}
