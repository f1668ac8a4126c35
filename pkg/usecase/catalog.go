package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/lang"
	"github.com/m-mizutani/meteo/pkg/noaa"
)

// ManifestFile is the name of the catalog manifest kept next to the raw reports
const ManifestFile = "index.toml"

type catalogUseCase struct {
	store interfaces.ReportStore
}

// NewCatalog creates a new instance of CatalogUseCase
func NewCatalog(store interfaces.ReportStore) interfaces.CatalogUseCase {
	return &catalogUseCase{store: store}
}

// Reports loads every stored report, newest month first, one per month
func (uc *catalogUseCase) Reports(ctx context.Context) ([]*model.StoredReport, error) {
	logger := ctxlog.From(ctx)

	names, err := uc.store.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stored reports")
	}

	var reports []*model.StoredReport
	for _, name := range names {
		if name == ManifestFile {
			continue
		}

		data, err := uc.store.Read(ctx, name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read stored report", goerr.V("file", name))
		}

		report, err := noaa.Parse(string(data))
		if err != nil {
			logger.Warn("Skipping unparsable report", "file", name, "error", err)
			continue
		}

		reports = append(reports, &model.StoredReport{
			File:     name,
			Original: string(data),
			Report:   report,
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		di, dj := reports[i].Report.Metadata.Date, reports[j].Report.Metadata.Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return reports[i].File > reports[j].File
	})

	deduped := reports[:0]
	for _, r := range reports {
		if n := len(deduped); n > 0 && r.Report.Metadata.Date.Equal(deduped[n-1].Report.Metadata.Date) {
			logger.Debug("Ignoring duplicated month", "file", r.File, "month", r.Report.Month())
			continue
		}
		deduped = append(deduped, r)
	}

	return deduped, nil
}

// Report returns the report of month (YYYY-MM)
func (uc *catalogUseCase) Report(ctx context.Context, month string) (*model.StoredReport, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidMonth, err.Error(), goerr.V("month", month))
	}

	reports, err := uc.Reports(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		if r.Report.Month() == month {
			return r, nil
		}
	}
	return nil, goerr.Wrap(model.ErrReportNotFound, "no report for month", goerr.V("month", month))
}

// Dashboard merges all reports, starting from the newest. Reports of another station are skipped.
func (uc *catalogUseCase) Dashboard(ctx context.Context) (*model.Report, error) {
	reports, err := uc.Reports(ctx)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, goerr.Wrap(model.ErrNoReport, "cannot build dashboard")
	}

	dashboard := reports[0].Report.Clone()
	for _, r := range reports[1:] {
		if err := dashboard.Merge(r.Report); err != nil {
			if errors.Is(err, model.ErrStationMismatch) {
				ctxlog.From(ctx).Warn("Skipping report of another station",
					"file", r.File,
					"station", r.Report.Metadata.Name,
				)
				continue
			}
			return nil, goerr.Wrap(err, "failed to merge report", goerr.V("file", r.File))
		}
	}
	return dashboard, nil
}

// Manifest describes the stored reports
func (uc *catalogUseCase) Manifest(ctx context.Context) (*model.Manifest, error) {
	reports, err := uc.Reports(ctx)
	if err != nil {
		return nil, err
	}

	manifest := &model.Manifest{
		Reports: make([]model.ManifestEntry, 0, len(reports)),
	}
	for _, r := range reports {
		if manifest.Station == "" {
			manifest.Station = r.Report.Metadata.Name
		}
		if last := r.Report.LastDate(); last.After(manifest.LastDay) {
			manifest.LastDay = last
		}
		manifest.Reports = append(manifest.Reports, model.ManifestEntry{
			Label: r.Report.Label(),
			File:  r.File,
			Month: r.Report.Month(),
			Days:  len(r.Report.Days),
		})
	}
	return manifest, nil
}

// Query evaluates expr with `data` bound to the days of the dashboard
func (uc *catalogUseCase) Query(ctx context.Context, expr string) (*lang.Result, error) {
	dashboard, err := uc.Dashboard(ctx)
	if err != nil {
		return nil, err
	}

	result, err := lang.Eval(expr, dashboard)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate query", goerr.V("expr", expr))
	}

	ctxlog.From(ctx).Debug("Evaluated query", "expr", expr, "series", len(result.Drawn))
	return result, nil
}
