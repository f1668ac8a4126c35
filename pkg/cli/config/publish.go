package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/urfave/cli/v3"
)

const (
	PublishGit    = "git"
	PublishGitHub = "github"
)

// Publish selects how the stored reports are published after a run
type Publish struct {
	Mode   string
	Git    Git
	GitHub GitHub
}

// Flags returns CLI flags for publish configuration, including those of both publishers
func (c *Publish) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "publish",
			Usage:       "Publish the reports after the run (git, github), disabled when empty",
			Destination: &c.Mode,
			Sources:     cli.EnvVars("METEO_PUBLISH"),
		},
	}
	flags = append(flags, c.Git.Flags()...)
	return append(flags, c.GitHub.Flags()...)
}

// Enabled reports whether a publisher is selected
func (c *Publish) Enabled() bool {
	return c.Mode != ""
}

// NewPublisher creates the selected publisher, or nil when disabled. The git publisher
// commits the storage directory, so it needs the fs backend.
func (c *Publish) NewPublisher(ctx context.Context, storage *Storage, store interfaces.ReportStore) (interfaces.Publisher, error) {
	switch c.Mode {
	case "":
		return nil, nil
	case PublishGit:
		if storage.Backend != StorageFS {
			return nil, goerr.New("git publisher requires the fs storage backend", goerr.V("storage", storage.Backend))
		}
		return c.Git.NewPublisher(storage.Dir), nil
	case PublishGitHub:
		return c.GitHub.NewPublisher(ctx, store)
	}
	return nil, goerr.New("unknown publish mode", goerr.V("publish", c.Mode))
}
