package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/meteo/pkg/domain/model"
)

func readTestReport(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "noaa", "testdata", name))
	gt.NoError(t, err)
	return string(data)
}

// MockReportSite is a mock implementation of ReportSite
type MockReportSite struct {
	listReportsFunc func(ctx context.Context) ([]model.ReportSource, error)
	downloadFunc    func(ctx context.Context, src model.ReportSource) (string, error)

	mu        sync.Mutex
	downloads []string
}

func (m *MockReportSite) ListReports(ctx context.Context) ([]model.ReportSource, error) {
	if m.listReportsFunc != nil {
		return m.listReportsFunc(ctx)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockReportSite) Download(ctx context.Context, src model.ReportSource) (string, error) {
	m.mu.Lock()
	m.downloads = append(m.downloads, src.Name)
	m.mu.Unlock()

	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, src)
	}
	return "", errors.New("mock not configured")
}

func (m *MockReportSite) Downloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.downloads...)
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	publishFunc func(ctx context.Context, message string) (bool, error)
	messages    []string
}

func (m *MockPublisher) Publish(ctx context.Context, message string) (bool, error) {
	m.messages = append(m.messages, message)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, message)
	}
	return true, nil
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	texts []string
}

func (m *MockNotifier) Notify(ctx context.Context, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

// MockSyncUseCase is a mock implementation of SyncUseCase
type MockSyncUseCase struct {
	syncFunc func(ctx context.Context, opts model.SyncOptions) (*model.SyncResult, error)
}

func (m *MockSyncUseCase) Sync(ctx context.Context, opts model.SyncOptions) (*model.SyncResult, error) {
	if m.syncFunc != nil {
		return m.syncFunc(ctx, opts)
	}
	return &model.SyncResult{}, nil
}

func (m *MockSyncUseCase) Runs(ctx context.Context, limit int) ([]*model.SyncResult, error) {
	return nil, nil
}
