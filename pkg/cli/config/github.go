package config

import (
	"context"

	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/infra/github"
	"github.com/m-mizutani/meteo/pkg/infra/storage"
	"github.com/urfave/cli/v3"
)

// GitHub holds configuration of the GitHub API publisher
type GitHub struct {
	Token  string `masq:"secret"`
	Owner  string
	Repo   string
	Branch string
	Dir    string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token with contents write permission",
			Destination: &c.Token,
			Sources:     cli.EnvVars("METEO_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "Owner of the repository the reports are published to",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("METEO_GITHUB_OWNER"),
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Name of the repository the reports are published to",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("METEO_GITHUB_REPO"),
		},
		&cli.StringFlag{
			Name:        "github-branch",
			Usage:       "Branch to commit to, the default branch when empty",
			Destination: &c.Branch,
			Sources:     cli.EnvVars("METEO_GITHUB_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "github-dir",
			Usage:       "Directory of the raw reports in the repository",
			Value:       storage.DefaultDir,
			Destination: &c.Dir,
			Sources:     cli.EnvVars("METEO_GITHUB_DIR"),
		},
	}
}

// NewPublisher creates a publisher pushing the files of store through the GitHub API
func (c *GitHub) NewPublisher(ctx context.Context, store interfaces.ReportStore) (interfaces.Publisher, error) {
	return github.NewPublisher(ctx, c.Token, github.Repository{
		Owner:  c.Owner,
		Name:   c.Repo,
		Branch: c.Branch,
		Dir:    c.Dir,
	}, store)
}
