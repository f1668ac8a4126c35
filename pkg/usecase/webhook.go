package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/utils/async"
)

type webhookUseCase struct {
	syncUC interfaces.SyncUseCase
	// dispatch runs handler outside of the request; replaced in tests
	dispatch func(ctx context.Context, handler func(ctx context.Context) error)
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(syncUC interfaces.SyncUseCase) *webhookUseCase {
	return &webhookUseCase{
		syncUC:   syncUC,
		dispatch: async.Dispatch,
	}
}

// ProcessEvent starts a sync in the background for dispatch events.
// Other events are only logged.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"sender", event.Sender,
		"publish", event.Publish,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		if event.Type != model.EventTypePing {
			logger.Warn("Unsupported event received", "type", event.Type)
		}
		return nil
	}

	opts := model.SyncOptions{
		Trigger: model.SyncTriggerWebhook,
		Publish: event.Publish,
	}
	uc.dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.syncUC.Sync(ctx, opts)
		return err
	})

	return nil
}
