package github

import (
	"context"
	"crypto/sha1" // #nosec G505 git object IDs are SHA-1
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"golang.org/x/oauth2"
)

// Repository identifies where the reports are published
type Repository struct {
	Owner  string
	Name   string
	Branch string // empty means the default branch
	Dir    string // directory of the reports in the repository
}

type publisher struct {
	client *github.Client
	repo   Repository
	store  interfaces.ReportStore
}

type options struct {
	baseURL string
}

// Option configures the publisher
type Option func(*options)

// WithBaseURL points the client to another API endpoint, such as GitHub Enterprise or a test server
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// NewPublisher creates a publisher pushing the files of store through the Contents API
func NewPublisher(ctx context.Context, token string, repo Repository, store interfaces.ReportStore, opts ...Option) (interfaces.Publisher, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, goerr.New("GitHub repository owner and name are required",
			goerr.V("owner", repo.Owner),
			goerr.V("repo", repo.Name),
		)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := http.DefaultClient
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	client := github.NewClient(httpClient)

	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("base_url", o.baseURL))
		}
		client.BaseURL = u
	}

	return &publisher{
		client: client,
		repo:   repo,
		store:  store,
	}, nil
}

// Publish uploads every stored file whose content differs from the repository
func (p *publisher) Publish(ctx context.Context, message string) (bool, error) {
	logger := ctxlog.From(ctx)

	names, err := p.store.List(ctx)
	if err != nil {
		return false, goerr.Wrap(err, "failed to list reports to publish")
	}

	published := false
	for _, name := range names {
		data, err := p.store.Read(ctx, name)
		if err != nil {
			return published, goerr.Wrap(err, "failed to read report to publish", goerr.V("name", name))
		}

		updated, err := p.putFile(ctx, path.Join(p.repo.Dir, name), data, message)
		if err != nil {
			return published, err
		}
		if updated {
			logger.Info("Published report", "name", name, "repo", p.repo.Owner+"/"+p.repo.Name)
			published = true
		}
	}

	return published, nil
}

func (p *publisher) putFile(ctx context.Context, filePath string, data []byte, message string) (bool, error) {
	getOpts := &github.RepositoryContentGetOptions{Ref: p.repo.Branch}
	current, _, resp, err := p.client.Repositories.GetContents(ctx, p.repo.Owner, p.repo.Name, filePath, getOpts)
	if err != nil && (resp == nil || resp.StatusCode != http.StatusNotFound) {
		return false, goerr.Wrap(err, "failed to get file from GitHub", goerr.V("path", filePath))
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: data,
	}
	if p.repo.Branch != "" {
		opts.Branch = github.Ptr(p.repo.Branch)
	}

	if current == nil {
		if _, _, err := p.client.Repositories.CreateFile(ctx, p.repo.Owner, p.repo.Name, filePath, opts); err != nil {
			return false, goerr.Wrap(err, "failed to create file on GitHub", goerr.V("path", filePath))
		}
		return true, nil
	}

	if current.GetSHA() == BlobSHA(data) {
		return false, nil
	}

	opts.SHA = current.SHA
	if _, _, err := p.client.Repositories.UpdateFile(ctx, p.repo.Owner, p.repo.Name, filePath, opts); err != nil {
		return false, goerr.Wrap(err, "failed to update file on GitHub", goerr.V("path", filePath))
	}
	return true, nil
}

// BlobSHA returns the git object ID of a blob holding data
func BlobSHA(data []byte) string {
	h := sha1.New() // #nosec G401
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
