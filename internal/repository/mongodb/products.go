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

// ProductRepository persists finished-goods catalog entries.
type ProductRepository struct {
	coll *mongo.Collection
}

// Products returns the finished-goods repository bound to this store.
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{coll: s.db.Collection(collProducts)}
}

// Insert creates a catalog entry.
func (r *ProductRepository) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// FindAll returns every product owned by the tenant.
func (r *ProductRepository) FindAll(ctx context.Context, tenantID string) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return decodeAll[models.Product](ctx, cursor)
}

// FindByID returns one product, or models.ErrNotFound.
func (r *ProductRepository) FindByID(ctx context.Context, tenantID, id string) (models.Product, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	var p models.Product
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, models.ErrNotFound
		}
		return models.Product{}, fmt.Errorf("find product %s: %w", id, err)
	}
	return p, nil
}

// AdjustStock applies delta to the product's stock as one atomic increment.
func (r *ProductRepository) AdjustStock(ctx context.Context, tenantID, id string, delta float64) error {
	return adjustStock(ctx, r.coll, tenantID, id, delta)
}

// SemiFinishedRepository persists semi-finished catalog entries.
type SemiFinishedRepository struct {
	coll *mongo.Collection
}

// SemiFinished returns the semi-finished repository bound to this store.
func (s *Store) SemiFinished() *SemiFinishedRepository {
	return &SemiFinishedRepository{coll: s.db.Collection(collSemiFinished)}
}

// Insert creates a semi-finished catalog entry.
func (r *SemiFinishedRepository) Insert(ctx context.Context, p models.SemiFinishedProduct) (models.SemiFinishedProduct, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return models.SemiFinishedProduct{}, fmt.Errorf("insert semi-finished product: %w", err)
	}
	return p, nil
}

// FindAll returns every semi-finished product owned by the tenant.
func (r *SemiFinishedRepository) FindAll(ctx context.Context, tenantID string) ([]models.SemiFinishedProduct, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find semi-finished products: %w", err)
	}
	return decodeAll[models.SemiFinishedProduct](ctx, cursor)
}

// FindByID returns one semi-finished product, or models.ErrNotFound.
func (r *SemiFinishedRepository) FindByID(ctx context.Context, tenantID, id string) (models.SemiFinishedProduct, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	var p models.SemiFinishedProduct
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SemiFinishedProduct{}, models.ErrNotFound
		}
		return models.SemiFinishedProduct{}, fmt.Errorf("find semi-finished product %s: %w", id, err)
	}
	return p, nil
}

// AdjustStock applies delta to the component's stock as one atomic increment.
func (r *SemiFinishedRepository) AdjustStock(ctx context.Context, tenantID, id string, delta float64) error {
	return adjustStock(ctx, r.coll, tenantID, id, delta)
}

// adjustStock performs a single conditional $inc. For deductions the filter
// requires sufficient stock, so two concurrent submissions serialize at the
// store and can never drive the level negative.
func adjustStock(ctx context.Context, coll *mongo.Collection, tenantID, id string, delta float64) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id
	if delta < 0 {
		filter["currentStock"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"currentStock": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res := coll.FindOneAndUpdate(ctx, filter, update)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if delta < 0 {
				return models.ErrInsufficientStock
			}
			return models.ErrNotFound
		}
		return fmt.Errorf("adjust stock for %s: %w", id, err)
	}
	return nil
}
