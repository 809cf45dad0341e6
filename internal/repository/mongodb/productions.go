package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// ProductionFilter narrows machine-run queries. Zero values mean "no filter".
type ProductionFilter struct {
	MachineID string
	From      time.Time
	To        time.Time
}

// ProductionRepository persists immutable machine-run records.
type ProductionRepository struct {
	coll *mongo.Collection
}

// Productions returns the machine-run repository bound to this store.
func (s *Store) Productions() *ProductionRepository {
	return &ProductionRepository{coll: s.db.Collection(collProductions)}
}

// Insert creates one run record. There is deliberately no update method;
// production records are immutable after creation.
func (r *ProductionRepository) Insert(ctx context.Context, p models.Production) (models.Production, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return models.Production{}, fmt.Errorf("insert production: %w", err)
	}
	return p, nil
}

// Find returns tenant-owned run records matching the filter, oldest first so
// time-bucket aggregation reads in order.
func (r *ProductionRepository) Find(ctx context.Context, tenantID string, f ProductionFilter) ([]models.Production, error) {
	filter := tenantFilter(tenantID)
	if f.MachineID != "" {
		filter["machineId"] = f.MachineID
	}
	applyDateRange(filter, f.From, f.To)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find productions: %w", err)
	}
	return decodeAll[models.Production](ctx, cursor)
}

// applyDateRange adds an inclusive date window to a filter when bounds are set.
func applyDateRange(filter bson.M, from, to time.Time) {
	dateCond := bson.M{}
	if !from.IsZero() {
		dateCond["$gte"] = from
	}
	if !to.IsZero() {
		dateCond["$lte"] = to
	}
	if len(dateCond) > 0 {
		filter["date"] = dateCond
	}
}
