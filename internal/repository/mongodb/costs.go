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

// FixedCostRepository persists latest-wins fixed-cost snapshots.
type FixedCostRepository struct {
	coll *mongo.Collection
}

// FixedCosts returns the fixed-cost repository bound to this store.
func (s *Store) FixedCosts() *FixedCostRepository {
	return &FixedCostRepository{coll: s.db.Collection(collFixedCosts)}
}

// Upsert replaces the tenant's snapshot for the month; fixed costs are
// latest-wins per month key.
func (r *FixedCostRepository) Upsert(ctx context.Context, c models.FixedCost) (models.FixedCost, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	filter := tenantFilter(c.CreatedBy)
	filter["monthKey"] = c.MonthKey

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, c, opts); err != nil {
		return models.FixedCost{}, fmt.Errorf("upsert fixed cost: %w", err)
	}
	return c, nil
}

// FindLatest returns the most recent snapshot at or before monthKey, falling
// back to the newest available one. Month keys sort lexicographically.
func (r *FixedCostRepository) FindLatest(ctx context.Context, tenantID, monthKey string) (models.FixedCost, error) {
	filter := tenantFilter(tenantID)
	filter["monthKey"] = bson.M{"$lte": monthKey}

	opts := options.FindOne().SetSort(bson.D{{Key: "monthKey", Value: -1}})

	var c models.FixedCost
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.FixedCost{}, models.ErrNotFound
		}
		return models.FixedCost{}, fmt.Errorf("find latest fixed cost: %w", err)
	}
	return c, nil
}

// FindAll returns every fixed-cost snapshot owned by the tenant.
func (r *FixedCostRepository) FindAll(ctx context.Context, tenantID string) ([]models.FixedCost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "monthKey", Value: -1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find fixed costs: %w", err)
	}
	return decodeAll[models.FixedCost](ctx, cursor)
}

// VariableCostRepository persists monthly variable-cost snapshots.
type VariableCostRepository struct {
	coll *mongo.Collection
}

// VariableCosts returns the variable-cost repository bound to this store.
func (s *Store) VariableCosts() *VariableCostRepository {
	return &VariableCostRepository{coll: s.db.Collection(collVariableCosts)}
}

// Upsert replaces the tenant's variable-cost snapshot for the month.
func (r *VariableCostRepository) Upsert(ctx context.Context, c models.VariableCost) (models.VariableCost, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	filter := tenantFilter(c.CreatedBy)
	filter["monthKey"] = c.MonthKey

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, c, opts); err != nil {
		return models.VariableCost{}, fmt.Errorf("upsert variable cost: %w", err)
	}
	return c, nil
}

// FindByMonth returns the snapshot for one month key, or models.ErrNotFound.
func (r *VariableCostRepository) FindByMonth(ctx context.Context, tenantID, monthKey string) (models.VariableCost, error) {
	filter := tenantFilter(tenantID)
	filter["monthKey"] = monthKey

	var c models.VariableCost
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.VariableCost{}, models.ErrNotFound
		}
		return models.VariableCost{}, fmt.Errorf("find variable cost for %s: %w", monthKey, err)
	}
	return c, nil
}

// FindAll returns every variable-cost snapshot owned by the tenant.
func (r *VariableCostRepository) FindAll(ctx context.Context, tenantID string) ([]models.VariableCost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "monthKey", Value: -1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find variable costs: %w", err)
	}
	return decodeAll[models.VariableCost](ctx, cursor)
}
