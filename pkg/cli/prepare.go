package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/cli/config"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// preparation is the set of configurations needed to run a sync
type preparation struct {
	site      config.Site
	storage   config.Storage
	publish   config.Publish
	slack     config.Slack
	firestore config.Firestore

	concurrency int
}

func (p *preparation) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum number of reports downloaded at once",
			Value:       usecase.DefaultConcurrency,
			Destination: &p.concurrency,
			Sources:     cli.EnvVars("METEO_CONCURRENCY"),
		},
	}
	flags = append(flags, p.site.Flags()...)
	flags = append(flags, p.storage.Flags()...)
	flags = append(flags, p.publish.Flags()...)
	flags = append(flags, p.slack.Flags()...)
	return append(flags, p.firestore.Flags()...)
}

// build wires the sync use case. The store is returned as well for the read side.
func (p *preparation) build(ctx context.Context) (interfaces.SyncUseCase, interfaces.ReportStore, error) {
	ctxlog.From(ctx).Debug("Preparation config",
		slog.Any("site", p.site),
		slog.Any("storage", p.storage),
		slog.Any("publish", p.publish),
		slog.Any("slack", p.slack),
		slog.Any("firestore", p.firestore),
	)

	site, err := p.site.NewClient()
	if err != nil {
		return nil, nil, err
	}

	store, err := p.storage.NewStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	runs, err := p.firestore.NewRunRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []usecase.SyncOption{
		usecase.WithConcurrency(p.concurrency),
		usecase.WithRunRepository(runs),
	}

	publisher, err := p.publish.NewPublisher(ctx, &p.storage, store)
	if err != nil {
		return nil, nil, err
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	if notifier := p.slack.NewNotifier(); notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	return usecase.NewSync(site, store, opts...), store, nil
}

func cmdPrepare() *cli.Command {
	var (
		prep         preparation
		allowPartial bool
	)

	flags := append(prep.Flags(), &cli.BoolFlag{
		Name:        "allow-partial",
		Usage:       "Succeed even if some reports could not be downloaded",
		Destination: &allowPartial,
		Sources:     cli.EnvVars("METEO_ALLOW_PARTIAL"),
	})

	return &cli.Command{
		Name:    "prepare",
		Aliases: []string{"prepare-data"},
		Usage:   "Download new reports from the station website and regenerate the catalog",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			syncUC, _, err := prep.build(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure sync")
			}

			result, err := syncUC.Sync(ctx, model.SyncOptions{
				Trigger: model.SyncTriggerManual,
				Publish: prep.publish.Enabled(),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to prepare data")
			}

			logger.Info("Data prepared",
				slog.String("run_id", result.ID),
				slog.Int("listed", result.Listed),
				slog.Int("downloaded", len(result.Downloaded)),
				slog.Int("skipped", len(result.Skipped)),
				slog.Int("failed", len(result.Failed)),
				slog.Bool("published", result.Published),
			)

			if len(result.Failed) > 0 && !allowPartial {
				return goerr.New("some reports could not be prepared",
					goerr.V("run_id", result.ID),
					goerr.V("failed", len(result.Failed)),
				)
			}
			return nil
		},
	}
}
