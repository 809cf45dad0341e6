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

// ProductProductionFilter narrows product-run queries.
type ProductProductionFilter struct {
	ProductID        string
	From             time.Time
	To               time.Time
	MinScrapUnits    float64
	MinUnitsProduced float64
	HasMaterialUsage bool
	HasScrap         bool
}

// ProductProductionRepository persists product-run records.
type ProductProductionRepository struct {
	coll *mongo.Collection
}

// ProductProductions returns the product-run repository bound to this store.
func (s *Store) ProductProductions() *ProductProductionRepository {
	return &ProductProductionRepository{coll: s.db.Collection(collProductProductions)}
}

// Insert creates one product-run record. The unique tenant+idempotencyKey index
// turns a retried submission into models.ErrDuplicateSubmission instead of a
// second stock deduction. Pass a session context to join a transaction.
func (r *ProductProductionRepository) Insert(ctx context.Context, p models.ProductProduction) (models.ProductProduction, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ProductProduction{}, models.ErrDuplicateSubmission
		}
		return models.ProductProduction{}, fmt.Errorf("insert product production: %w", err)
	}
	return p, nil
}

// FindByIdempotencyKey returns the run already recorded for a key, or ErrNotFound.
func (r *ProductProductionRepository) FindByIdempotencyKey(ctx context.Context, tenantID, key string) (models.ProductProduction, error) {
	filter := tenantFilter(tenantID)
	filter["idempotencyKey"] = key

	var p models.ProductProduction
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ProductProduction{}, models.ErrNotFound
		}
		return models.ProductProduction{}, fmt.Errorf("find by idempotency key: %w", err)
	}
	return p, nil
}

// Find returns tenant-owned product runs matching the filter, oldest first.
func (r *ProductProductionRepository) Find(ctx context.Context, tenantID string, f ProductProductionFilter) ([]models.ProductProduction, error) {
	filter := tenantFilter(tenantID)
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	applyDateRange(filter, f.From, f.To)
	if f.MinScrapUnits > 0 {
		filter["scrapUnits"] = bson.M{"$gte": f.MinScrapUnits}
	}
	if f.MinUnitsProduced > 0 {
		filter["totalUnitsProduced"] = bson.M{"$gte": f.MinUnitsProduced}
	}
	if f.HasMaterialUsage {
		filter["actualMaterialUsage.0"] = bson.M{"$exists": true}
	}
	if f.HasScrap {
		// minScrapUnits wins when both are supplied
		if _, ok := filter["scrapUnits"]; !ok {
			filter["scrapUnits"] = bson.M{"$gt": 0}
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find product productions: %w", err)
	}
	return decodeAll[models.ProductProduction](ctx, cursor)
}
