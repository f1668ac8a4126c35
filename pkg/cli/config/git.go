package config

import (
	"github.com/m-mizutani/meteo/pkg/infra/git"
	"github.com/urfave/cli/v3"
)

// Git holds configuration of the git publisher
type Git struct {
	RepoDir     string
	Remote      string
	Branch      string
	AuthorName  string
	AuthorEmail string
}

// Flags returns CLI flags for git configuration
func (c *Git) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "git-repo-dir",
			Usage:       "Working tree the reports are committed in",
			Value:       ".",
			Destination: &c.RepoDir,
			Sources:     cli.EnvVars("METEO_GIT_REPO_DIR"),
		},
		&cli.StringFlag{
			Name:        "git-remote",
			Usage:       "Remote to push to",
			Value:       "origin",
			Destination: &c.Remote,
			Sources:     cli.EnvVars("METEO_GIT_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "git-branch",
			Usage:       "Branch to push to, the upstream of the current branch when empty",
			Destination: &c.Branch,
			Sources:     cli.EnvVars("METEO_GIT_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "git-author-name",
			Usage:       "Commit author name",
			Value:       "github-actions[bot]",
			Destination: &c.AuthorName,
			Sources:     cli.EnvVars("METEO_GIT_AUTHOR_NAME"),
		},
		&cli.StringFlag{
			Name:        "git-author-email",
			Usage:       "Commit author email",
			Value:       "41898282+github-actions[bot]@users.noreply.github.com",
			Destination: &c.AuthorEmail,
			Sources:     cli.EnvVars("METEO_GIT_AUTHOR_EMAIL"),
		},
	}
}

// NewPublisher creates a publisher committing path, relative to the working tree
func (c *Git) NewPublisher(path string) *git.Publisher {
	opts := []git.Option{
		git.WithRemote(c.Remote),
		git.WithAuthor(c.AuthorName, c.AuthorEmail),
	}
	if c.Branch != "" {
		opts = append(opts, git.WithBranch(c.Branch))
	}
	return git.NewPublisher(c.RepoDir, path, opts...)
}
