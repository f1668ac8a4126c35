package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/cli/config"
	controller "github.com/m-mizutani/meteo/pkg/controller/http"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/usecase"
	"github.com/m-mizutani/meteo/pkg/utils/async"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		scheduleCfg config.Schedule
		prep        preparation
	)

	flags := append(serverCfg.Flags(), scheduleCfg.Flags()...)
	flags = append(flags, prep.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server and the periodic sync",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting meteo server",
				slog.String("addr", serverCfg.Addr),
				slog.String("schedule", scheduleCfg.Spec),
				slog.Any("server", serverCfg),
			)

			if err := scheduleCfg.Validate(&prep.publish); err != nil {
				return err
			}

			// Create use cases
			syncUC, store, err := prep.build(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure sync")
			}
			catalogUC := usecase.NewCatalog(store)
			webhookUC := usecase.NewWebhook(syncUC)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				catalogUC,
				syncUC,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(serverCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			scheduler, err := startScheduler(ctx, &scheduleCfg, syncUC)
			if err != nil {
				return err
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()

			if scheduler != nil {
				<-scheduler.Stop().Done()
			}

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			if err := async.Wait(shutdownCtx); err != nil {
				logger.Warn("Background sync still running at shutdown", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// startScheduler runs a sync on every tick of the schedule, in UTC. It returns nil when
// the schedule is disabled.
func startScheduler(ctx context.Context, cfg *config.Schedule, syncUC interfaces.SyncUseCase) (*cron.Cron, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	scheduler := cron.New(cron.WithLocation(time.UTC))
	opts := model.SyncOptions{
		Trigger: model.SyncTriggerSchedule,
		Publish: cfg.Publish,
	}
	if _, err := scheduler.AddFunc(cfg.Spec, func() {
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := syncUC.Sync(ctx, opts)
			return err
		})
	}); err != nil {
		return nil, goerr.Wrap(err, "invalid schedule", goerr.V("schedule", cfg.Spec))
	}

	scheduler.Start()
	ctxlog.From(ctx).Info("Periodic sync scheduled", slog.String("schedule", cfg.Spec))
	return scheduler, nil
}
