package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/meteo/pkg/cli/config"
	"github.com/m-mizutani/meteo/pkg/infra/memory"
)

func TestStorage_NewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("fs", func(t *testing.T) {
		cfg := &config.Storage{Backend: config.StorageFS, Dir: t.TempDir()}
		store, err := cfg.NewStore(ctx)
		gt.NoError(t, err)
		gt.NoError(t, store.Write(ctx, "2023-03", []byte("report")))

		names, err := store.List(ctx)
		gt.NoError(t, err)
		gt.Equal(t, names, []string{"2023-03"})
	})

	t.Run("gcs without bucket", func(t *testing.T) {
		cfg := &config.Storage{Backend: config.StorageGCS}
		_, err := cfg.NewStore(ctx)
		gt.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Storage{Backend: "s3"}
		_, err := cfg.NewStore(ctx)
		gt.Error(t, err)
	})
}

func TestPublish_NewPublisher(t *testing.T) {
	ctx := context.Background()
	fsStorage := &config.Storage{Backend: config.StorageFS, Dir: "assets/reports/raw"}

	t.Run("disabled", func(t *testing.T) {
		cfg := &config.Publish{}
		gt.False(t, cfg.Enabled())
		p, err := cfg.NewPublisher(ctx, fsStorage, nil)
		gt.NoError(t, err)
		gt.V(t, p).Nil()
	})

	t.Run("git", func(t *testing.T) {
		cfg := &config.Publish{Mode: config.PublishGit, Git: config.Git{RepoDir: ".", Remote: "origin"}}
		p, err := cfg.NewPublisher(ctx, fsStorage, nil)
		gt.NoError(t, err)
		gt.V(t, p).NotNil()
	})

	t.Run("git needs fs backend", func(t *testing.T) {
		cfg := &config.Publish{Mode: config.PublishGit}
		_, err := cfg.NewPublisher(ctx, &config.Storage{Backend: config.StorageGCS}, nil)
		gt.Error(t, err)
	})

	t.Run("github needs a repository", func(t *testing.T) {
		cfg := &config.Publish{Mode: config.PublishGitHub}
		_, err := cfg.NewPublisher(ctx, fsStorage, nil)
		gt.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := &config.Publish{Mode: "ftp"}
		_, err := cfg.NewPublisher(ctx, fsStorage, nil)
		gt.Error(t, err)
	})
}

func TestSchedule_Validate(t *testing.T) {
	noPublish := &config.Publish{}
	gt.NoError(t, (&config.Schedule{Spec: config.DefaultSchedule}).Validate(noPublish))
	gt.NoError(t, (&config.Schedule{}).Validate(noPublish))
	gt.False(t, (&config.Schedule{}).Enabled())
	gt.Error(t, (&config.Schedule{Spec: "every night"}).Validate(noPublish))

	t.Run("scheduled publish needs a publisher", func(t *testing.T) {
		cfg := &config.Schedule{Spec: config.DefaultSchedule, Publish: true}
		err := cfg.Validate(noPublish)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("--publish")

		gt.NoError(t, cfg.Validate(&config.Publish{Mode: config.PublishGitHub}))
	})

	t.Run("publish flag is ignored without schedule", func(t *testing.T) {
		gt.NoError(t, (&config.Schedule{Publish: true}).Validate(noPublish))
	})
}

func TestFirestore_DefaultsToMemory(t *testing.T) {
	repo, err := (&config.Firestore{}).NewRunRepository(context.Background())
	gt.NoError(t, err)
	_, ok := repo.(*memory.RunRepository)
	gt.True(t, ok)
}

func TestSlack_NewNotifier(t *testing.T) {
	gt.V(t, (&config.Slack{}).NewNotifier()).Nil()
	gt.V(t, (&config.Slack{WebhookURL: "https://hooks.slack.com/services/x"}).NewNotifier()).NotNil()
}

func TestSentry_ConfigureWithoutDSN(t *testing.T) {
	enabled, err := (&config.Sentry{}).Configure()
	gt.NoError(t, err)
	gt.False(t, enabled)
}
