package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// ManualJobRepository persists manual-job definitions.
type ManualJobRepository struct {
	coll *mongo.Collection
}

// ManualJobs returns the manual-job repository bound to this store.
func (s *Store) ManualJobs() *ManualJobRepository {
	return &ManualJobRepository{coll: s.db.Collection(collManualJobs)}
}

// Insert creates a manual-job definition.
func (r *ManualJobRepository) Insert(ctx context.Context, j models.ManualJob) (models.ManualJob, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, j); err != nil {
		return models.ManualJob{}, fmt.Errorf("insert manual job: %w", err)
	}
	return j, nil
}

// FindAll returns every manual job owned by the tenant.
func (r *ManualJobRepository) FindAll(ctx context.Context, tenantID string) ([]models.ManualJob, error) {
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID))
	if err != nil {
		return nil, fmt.Errorf("find manual jobs: %w", err)
	}
	return decodeAll[models.ManualJob](ctx, cursor)
}

// FindByID returns one manual job, or models.ErrNotFound.
func (r *ManualJobRepository) FindByID(ctx context.Context, tenantID, id string) (models.ManualJob, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	var j models.ManualJob
	if err := r.coll.FindOne(ctx, filter).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ManualJob{}, models.ErrNotFound
		}
		return models.ManualJob{}, fmt.Errorf("find manual job %s: %w", id, err)
	}
	return j, nil
}

// ManualJobRunFilter narrows manual-job run queries.
type ManualJobRunFilter struct {
	ManualJobID string
	From        time.Time
	To          time.Time
}

// ManualJobRunRepository persists manual-job run records.
type ManualJobRunRepository struct {
	coll *mongo.Collection
}

// ManualJobRuns returns the manual-job run repository bound to this store.
func (s *Store) ManualJobRuns() *ManualJobRunRepository {
	return &ManualJobRunRepository{coll: s.db.Collection(collManualJobRuns)}
}

// Insert creates one manual-job run record.
func (r *ManualJobRunRepository) Insert(ctx context.Context, run models.ManualJobProduction) (models.ManualJobProduction, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, run); err != nil {
		return models.ManualJobProduction{}, fmt.Errorf("insert manual job run: %w", err)
	}
	return run, nil
}

// Find returns tenant-owned manual-job runs matching the filter, oldest first.
func (r *ManualJobRunRepository) Find(ctx context.Context, tenantID string, f ManualJobRunFilter) ([]models.ManualJobProduction, error) {
	filter := tenantFilter(tenantID)
	if f.ManualJobID != "" {
		filter["manualJobId"] = f.ManualJobID
	}
	applyDateRange(filter, f.From, f.To)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find manual job runs: %w", err)
	}
	return decodeAll[models.ManualJobProduction](ctx, cursor)
}
