package usecase

import "context"

// SetDispatch replaces the background runner of a webhook use case
func SetDispatch(uc *webhookUseCase, dispatch func(ctx context.Context, handler func(ctx context.Context) error)) {
	uc.dispatch = dispatch
}
