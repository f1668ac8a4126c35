package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Publisher commits the report directory of a working tree and pushes it
type Publisher struct {
	repoDir     string
	path        string
	remote      string
	branch      string
	authorName  string
	authorEmail string
}

// Option configures the publisher
type Option func(*Publisher)

// WithRemote sets the remote to push to, "origin" by default
func WithRemote(remote string) Option {
	return func(p *Publisher) {
		p.remote = remote
	}
}

// WithBranch pushes HEAD to the given branch instead of the upstream of the current one
func WithBranch(branch string) Option {
	return func(p *Publisher) {
		p.branch = branch
	}
}

// WithAuthor sets the commit identity
func WithAuthor(name, email string) Option {
	return func(p *Publisher) {
		p.authorName = name
		p.authorEmail = email
	}
}

// NewPublisher creates a publisher for path, relative to the working tree at repoDir
func NewPublisher(repoDir, path string, opts ...Option) *Publisher {
	p := &Publisher{
		repoDir:     repoDir,
		path:        path,
		remote:      "origin",
		authorName:  "github-actions[bot]",
		authorEmail: "41898282+github-actions[bot]@users.noreply.github.com",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish stages the report directory and, when it changed, commits and pushes it
func (p *Publisher) Publish(ctx context.Context, message string) (bool, error) {
	logger := ctxlog.From(ctx)

	if _, err := p.git(ctx, "add", "--", p.path); err != nil {
		return false, err
	}

	changed, err := p.hasStagedChanges(ctx)
	if err != nil {
		return false, err
	}
	if !changed {
		logger.Info("No report change to publish", "path", p.path)
		return false, nil
	}

	if _, err := p.git(ctx,
		"-c", "user.name="+p.authorName,
		"-c", "user.email="+p.authorEmail,
		"commit", "-m", message, "--", p.path,
	); err != nil {
		return false, err
	}

	ref := "HEAD"
	if p.branch != "" {
		ref = "HEAD:refs/heads/" + p.branch
	}
	if _, err := p.git(ctx, "push", p.remote, ref); err != nil {
		return false, err
	}

	logger.Info("Published reports", "path", p.path, "remote", p.remote, "ref", ref)
	return true, nil
}

func (p *Publisher) hasStagedChanges(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", p.repoDir, "diff", "--cached", "--quiet", "--", p.path)
	err := cmd.Run()
	if err == nil {
		return false, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, goerr.Wrap(err, "failed to check staged changes", goerr.V("path", p.path))
}

func (p *Publisher) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", p.repoDir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", goerr.Wrap(err, "git command failed",
			goerr.V("args", strings.Join(args, " ")),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
		)
	}
	return string(out), nil
}
