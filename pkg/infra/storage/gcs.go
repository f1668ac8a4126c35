package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcsStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCS creates a store keeping reports as objects under prefix in bucket
func NewGCS(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (interfaces.ReportStore, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &gcsStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *gcsStore) object(name string) *gcs.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + name)
}

func (s *gcsStore) List(ctx context.Context) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: s.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list report objects",
				goerr.V("bucket", s.bucket),
				goerr.V("prefix", s.prefix),
			)
		}

		name := strings.TrimPrefix(attrs.Name, s.prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

func (s *gcsStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	r, err := s.object(name).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open report object", goerr.V("name", name))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report object", goerr.V("name", name))
	}
	return data, nil
}

func (s *gcsStore) Write(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	w := s.object(name).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write report object", goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize report object", goerr.V("name", name))
	}
	return nil
}
