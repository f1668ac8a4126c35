package config

import (
	"context"

	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/infra/firestore"
	"github.com/m-mizutani/meteo/pkg/infra/memory"
	"github.com/urfave/cli/v3"
)

// Firestore holds the run history configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the run history, kept in memory when empty",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("METEO_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database of the run history",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("METEO_FIRESTORE_DATABASE_ID"),
		},
	}
}

// NewRunRepository falls back to an in-memory history without a project
func (c *Firestore) NewRunRepository(ctx context.Context) (interfaces.RunRepository, error) {
	if c.ProjectID == "" {
		return memory.NewRunRepository(), nil
	}
	return firestore.NewRunRepository(ctx, c.ProjectID, c.DatabaseID)
}
