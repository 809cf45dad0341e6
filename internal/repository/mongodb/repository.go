// Package mongodb implements the tenant-scoped persistence layer. Every query
// and write is filtered by the owning tenant id; no method exposes a way to
// read another tenant's records.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Collection names.
const (
	collMachines            = "machines"
	collProductions         = "productions"
	collProductProductions  = "product_productions"
	collManualJobs          = "manual_jobs"
	collManualJobRuns       = "manual_job_productions"
	collProducts            = "products"
	collSemiFinished        = "semi_finished_products"
	collRawMaterials        = "raw_materials"
	collOrders              = "orders"
	collFixedCosts          = "fixed_costs"
	collVariableCosts       = "variable_costs"
	collInvoices            = "invoices"
	collSalesLedgers        = "sales_ledgers"
	collPurchaseLedgers     = "purchase_ledgers"
	collKPISnapshots        = "kpi_snapshots"
)

// Store owns the MongoDB client and hands collections to the typed repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and verifies the connection with a ping.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the aggregation and idempotency paths rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	byTenantDate := mongo.IndexModel{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "date", Value: -1}}}

	for _, name := range []string{collProductions, collProductProductions, collManualJobRuns} {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, byTenantDate); err != nil {
			return fmt.Errorf("create index on %s: %w", name, err)
		}
	}

	// Unique idempotency key per tenant backs the duplicate-submission guard.
	idempotency := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdBy", Value: 1}, {Key: "idempotencyKey", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	if _, err := s.db.Collection(collProductProductions).Indexes().CreateOne(ctx, idempotency); err != nil {
		return fmt.Errorf("create idempotency index: %w", err)
	}

	return nil
}

// WithTransaction runs fn inside a single MongoDB transaction so that the
// multi-record writes of one production submission commit or abort together.
// The context handed to fn carries the session; repository calls made with it
// join the transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// tenantFilter is the base filter applied to every repository operation.
func tenantFilter(tenantID string) bson.M {
	return bson.M{"createdBy": tenantID}
}

// decodeAll drains a cursor into out, closing it afterwards.
func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)

	var out []T
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return out, nil
}
