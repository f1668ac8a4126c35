package interfaces

import "context"

// Publisher makes the stored reports available upstream, typically by committing them
type Publisher interface {
	// Publish returns false when there was nothing to publish
	Publish(ctx context.Context, message string) (bool, error)
}

// Notifier announces the outcome of a run
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
