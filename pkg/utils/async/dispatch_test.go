package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/meteo/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func newLoggerContext(buf *safeBuffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelError}))
	return ctxlog.With(context.Background(), logger)
}

func waitAll(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	gt.NoError(t, async.Wait(ctx))
}

func TestDispatch(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		var mu sync.Mutex
		executed := false

		async.Dispatch(context.Background(), func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			executed = true
			return nil
		})

		waitAll(t)
		mu.Lock()
		defer mu.Unlock()
		gt.True(t, executed)
	})

	t.Run("logs returned error", func(t *testing.T) {
		buf := &safeBuffer{}
		async.Dispatch(newLoggerContext(buf), func(ctx context.Context) error {
			return errors.New("site unreachable")
		})

		waitAll(t)
		gt.String(t, buf.String()).Contains("error in async handler")
		gt.String(t, buf.String()).Contains("site unreachable")
	})

	t.Run("recovers from panic with stack trace", func(t *testing.T) {
		buf := &safeBuffer{}
		async.Dispatch(newLoggerContext(buf), func(ctx context.Context) error {
			panic("test panic with stack")
		})

		waitAll(t)
		gt.String(t, buf.String()).Contains("panic in async handler")
		gt.String(t, buf.String()).Contains("test panic with stack")
		gt.String(t, buf.String()).Contains("dispatch_test.go")
	})

	t.Run("outlives the original context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)

		async.Dispatch(ctx, func(newCtx context.Context) error {
			cancel()
			errCh <- newCtx.Err()
			return nil
		})

		waitAll(t)
		gt.NoError(t, <-errCh)
	})
}

func TestWait_Timeout(t *testing.T) {
	release := make(chan struct{})
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	gt.Error(t, async.Wait(ctx))

	close(release)
	waitAll(t)
}
