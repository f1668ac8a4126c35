package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const collectionRuns = "sync_runs"

type runRepository struct {
	client *firestore.Client
}

// NewRunRepository stores sync runs in the given Firestore database
func NewRunRepository(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (interfaces.RunRepository, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}
	return &runRepository{client: client}, nil
}

func (r *runRepository) PutRun(ctx context.Context, run *model.SyncResult) error {
	if _, err := r.client.Collection(collectionRuns).Doc(run.ID).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to save sync run", goerr.V("id", run.ID))
	}
	return nil
}

func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]*model.SyncResult, error) {
	iter := r.client.Collection(collectionRuns).
		OrderBy("started_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var runs []*model.SyncResult
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list sync runs")
		}

		var run model.SyncResult
		if err := doc.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode sync run", goerr.V("id", doc.Ref.ID))
		}
		runs = append(runs, &run)
	}

	return runs, nil
}
