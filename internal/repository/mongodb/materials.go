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

// RawMaterialRepository persists raw-material stock records.
type RawMaterialRepository struct {
	coll *mongo.Collection
}

// RawMaterials returns the raw-material repository bound to this store.
func (s *Store) RawMaterials() *RawMaterialRepository {
	return &RawMaterialRepository{coll: s.db.Collection(collRawMaterials)}
}

// Insert creates a raw-material record.
func (r *RawMaterialRepository) Insert(ctx context.Context, m models.RawMaterial) (models.RawMaterial, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return models.RawMaterial{}, fmt.Errorf("insert raw material: %w", err)
	}
	return m, nil
}

// FindAll returns every raw material owned by the tenant.
func (r *RawMaterialRepository) FindAll(ctx context.Context, tenantID string) ([]models.RawMaterial, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find raw materials: %w", err)
	}
	return decodeAll[models.RawMaterial](ctx, cursor)
}

// FindByID returns one raw material, or models.ErrNotFound.
func (r *RawMaterialRepository) FindByID(ctx context.Context, tenantID, id string) (models.RawMaterial, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	var m models.RawMaterial
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RawMaterial{}, models.ErrNotFound
		}
		return models.RawMaterial{}, fmt.Errorf("find raw material %s: %w", id, err)
	}
	return m, nil
}

// FindByCode resolves a material by its short code, or models.ErrNotFound.
func (r *RawMaterialRepository) FindByCode(ctx context.Context, tenantID, code string) (models.RawMaterial, error) {
	filter := tenantFilter(tenantID)
	filter["code"] = code

	var m models.RawMaterial
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RawMaterial{}, models.ErrNotFound
		}
		return models.RawMaterial{}, fmt.Errorf("find raw material by code %s: %w", code, err)
	}
	return m, nil
}

// AdjustStock applies delta to the material's stock as one atomic increment.
// Deductions require sufficient stock; see adjustStock.
func (r *RawMaterialRepository) AdjustStock(ctx context.Context, tenantID, id string, delta float64) error {
	return adjustStock(ctx, r.coll, tenantID, id, delta)
}

// FindLowStock returns materials at or below their reorder point.
func (r *RawMaterialRepository) FindLowStock(ctx context.Context, tenantID string) ([]models.RawMaterial, error) {
	filter := tenantFilter(tenantID)
	filter["$expr"] = bson.M{"$lte": bson.A{"$currentStock", "$reorderPoint"}}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find low stock materials: %w", err)
	}
	return decodeAll[models.RawMaterial](ctx, cursor)
}
