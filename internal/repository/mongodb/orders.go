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

// OrderRepository persists commercial orders.
type OrderRepository struct {
	coll *mongo.Collection
}

// Orders returns the order repository bound to this store.
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{coll: s.db.Collection(collOrders)}
}

// Insert creates an order record.
func (r *OrderRepository) Insert(ctx context.Context, o models.Order) (models.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// FindAll returns every order owned by the tenant, newest first.
func (r *OrderRepository) FindAll(ctx context.Context, tenantID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return decodeAll[models.Order](ctx, cursor)
}

// FindByID returns one order, or models.ErrNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, id string) (models.Order, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	var o models.Order
	if err := r.coll.FindOne(ctx, filter).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, models.ErrNotFound
		}
		return models.Order{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return o, nil
}

// ApplyDelivery accumulates one delivery onto the order as a single
// conditional update: the filter requires the order to be in progress with at
// least qty remaining, so an excess or late delivery never matches.
func (r *OrderRepository) ApplyDelivery(ctx context.Context, tenantID, id string, qty float64) (models.Order, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id
	filter["status"] = models.OrderInProgress
	filter["remainingQuantity"] = bson.M{"$gte": qty}

	update := bson.M{
		"$inc": bson.M{
			"quantityDelivered": qty,
			"remainingQuantity": -qty,
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, fmt.Errorf("%w: order not deliverable for quantity %v", models.ErrValidation, qty)
		}
		return models.Order{}, fmt.Errorf("apply delivery: %w", err)
	}

	if o.RemainingQuantity == 0 {
		if err := r.SetStatus(ctx, tenantID, id, models.OrderCompleted); err != nil {
			return models.Order{}, err
		}
		o.Status = models.OrderCompleted
	}
	return o, nil
}

// AppendPayment pushes one payment entry onto the order.
func (r *OrderRepository) AppendPayment(ctx context.Context, tenantID, id string, p models.Payment) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	update := bson.M{
		"$push": bson.M{"payments": p},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("append payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetStatus transitions the order's lifecycle state.
func (r *OrderRepository) SetStatus(ctx context.Context, tenantID, id string, status models.OrderStatus) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetSalesLedger links the order to its sales ledger.
func (r *OrderRepository) SetSalesLedger(ctx context.Context, tenantID, id, ledgerID string) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"salesLedgerId": ledgerID, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set sales ledger: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
