package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
)

type fsStore struct {
	dir string
}

// NewFS creates a store keeping one file per report under dir
func NewFS(dir string) interfaces.ReportStore {
	return &fsStore{dir: dir}
}

func (s *fsStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read report directory", goerr.V("dir", s.dir))
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *fsStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report", goerr.V("name", name))
	}
	return data, nil
}

// Write replaces the file atomically so a concurrent reader never sees a partial report
func (s *fsStore) Write(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create report directory", goerr.V("dir", s.dir))
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", s.dir))
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write report", goerr.V("name", name))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close report", goerr.V("name", name))
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return goerr.Wrap(err, "failed to set report permissions", goerr.V("name", name))
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return goerr.Wrap(err, "failed to move report in place", goerr.V("name", name))
	}

	return nil
}
