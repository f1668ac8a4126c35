package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/infra/storage"
	"github.com/urfave/cli/v3"
)

const (
	StorageFS  = "fs"
	StorageGCS = "gcs"
)

// Storage holds the report store configuration
type Storage struct {
	Backend string
	Dir     string
	Bucket  string
	Prefix  string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage",
			Usage:       "Report store backend (fs, gcs)",
			Value:       StorageFS,
			Destination: &c.Backend,
			Sources:     cli.EnvVars("METEO_STORAGE"),
		},
		&cli.StringFlag{
			Name:        "storage-dir",
			Usage:       "Directory of the raw reports for the fs backend",
			Value:       storage.DefaultDir,
			Destination: &c.Dir,
			Sources:     cli.EnvVars("METEO_STORAGE_DIR"),
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for the gcs backend",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("METEO_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object prefix of the reports in the bucket",
			Value:       "reports/raw/",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("METEO_GCS_PREFIX"),
		},
	}
}

// NewStore creates the report store of the configured backend
func (c *Storage) NewStore(ctx context.Context) (interfaces.ReportStore, error) {
	switch c.Backend {
	case StorageFS:
		if c.Dir == "" {
			return nil, goerr.New("storage directory is required")
		}
		return storage.NewFS(c.Dir), nil
	case StorageGCS:
		if c.Bucket == "" {
			return nil, goerr.New("gcs-bucket is required for the gcs backend")
		}
		return storage.NewGCS(ctx, c.Bucket, c.Prefix)
	}
	return nil, goerr.New("unknown storage backend", goerr.V("storage", c.Backend))
}
