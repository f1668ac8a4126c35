package http_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/meteo/pkg/controller/http"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/infra/storage"
	"github.com/m-mizutani/meteo/pkg/usecase"
)

const testSecret = "test-secret"

// mockSyncUseCase records the runs it is asked for
type mockSyncUseCase struct {
	mu    sync.Mutex
	calls []model.SyncOptions
	runs  []*model.SyncResult
}

func (m *mockSyncUseCase) Sync(ctx context.Context, opts model.SyncOptions) (*model.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, opts)
	return &model.SyncResult{ID: "run"}, nil
}

func (m *mockSyncUseCase) Runs(ctx context.Context, limit int) ([]*model.SyncResult, error) {
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockSyncUseCase) Calls() []model.SyncOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.SyncOptions{}, m.calls...)
}

// mockWebhookUseCase records events without starting anything
type mockWebhookUseCase struct {
	events []*model.WebhookEvent
}

func (m *mockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	m.events = append(m.events, event)
	return nil
}

// newTestServer serves the March and April test reports
func newTestServer(t *testing.T, syncUC *mockSyncUseCase, webhookUC interfaces.WebhookUseCase) *controller.Server {
	t.Helper()
	ctx := context.Background()

	store := storage.NewFS(t.TempDir())
	for file, testdata := range map[string]string{
		"2023-03": "2023-03.txt",
		"2023-04": "2023-04.txt",
	} {
		data, err := os.ReadFile(filepath.Join("..", "..", "noaa", "testdata", testdata))
		gt.NoError(t, err)
		gt.NoError(t, store.Write(ctx, file, data))
	}

	server, err := controller.NewServer(
		ctx,
		usecase.NewCatalog(store),
		syncUC,
		webhookUC,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret(testSecret),
	)
	gt.NoError(t, err)
	return server
}
