package interfaces

import (
	"context"

	"github.com/m-mizutani/meteo/pkg/domain/model"
)

// ReportSite is the station website publishing the monthly reports
type ReportSite interface {
	// ListReports returns every report offered by the site
	ListReports(ctx context.Context) ([]model.ReportSource, error)

	// Download returns the report text decoded to UTF-8 with LF line endings
	Download(ctx context.Context, src model.ReportSource) (string, error)
}
