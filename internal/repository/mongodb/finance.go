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

// InvoiceRepository persists delivery invoices.
type InvoiceRepository struct {
	coll *mongo.Collection
}

// Invoices returns the invoice repository bound to this store.
func (s *Store) Invoices() *InvoiceRepository {
	return &InvoiceRepository{coll: s.db.Collection(collInvoices)}
}

// Insert creates one invoice record.
func (r *InvoiceRepository) Insert(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		return models.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	return inv, nil
}

// FindByOrder returns every invoice issued for one order, oldest first.
func (r *InvoiceRepository) FindByOrder(ctx context.Context, tenantID, orderID string) ([]models.Invoice, error) {
	filter := tenantFilter(tenantID)
	filter["orderId"] = orderID

	opts := options.Find().SetSort(bson.D{{Key: "issuedAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find invoices for order %s: %w", orderID, err)
	}
	return decodeAll[models.Invoice](ctx, cursor)
}

// SalesLedgerRepository persists order-linked sales ledgers.
type SalesLedgerRepository struct {
	coll *mongo.Collection
}

// SalesLedgers returns the sales-ledger repository bound to this store.
func (s *Store) SalesLedgers() *SalesLedgerRepository {
	return &SalesLedgerRepository{coll: s.db.Collection(collSalesLedgers)}
}

// Insert creates a sales ledger.
func (r *SalesLedgerRepository) Insert(ctx context.Context, l models.SalesLedger) (models.SalesLedger, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		return models.SalesLedger{}, fmt.Errorf("insert sales ledger: %w", err)
	}
	return l, nil
}

// FindByOrder returns the ledger linked to an order, or models.ErrNotFound.
func (r *SalesLedgerRepository) FindByOrder(ctx context.Context, tenantID, orderID string) (models.SalesLedger, error) {
	filter := tenantFilter(tenantID)
	filter["orderId"] = orderID

	var l models.SalesLedger
	if err := r.coll.FindOne(ctx, filter).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SalesLedger{}, models.ErrNotFound
		}
		return models.SalesLedger{}, fmt.Errorf("find sales ledger for order %s: %w", orderID, err)
	}
	return l, nil
}

// AccumulateBilled adds one billed amount to the ledger total.
func (r *SalesLedgerRepository) AccumulateBilled(ctx context.Context, tenantID, id string, amount float64) error {
	return r.accumulate(ctx, tenantID, id, bson.M{"$inc": bson.M{"totalBilled": amount}})
}

// AppendPayment records a received payment against the ledger.
func (r *SalesLedgerRepository) AppendPayment(ctx context.Context, tenantID, id string, entry models.LedgerEntry) error {
	return r.accumulate(ctx, tenantID, id, bson.M{
		"$inc":  bson.M{"totalPaid": entry.Amount},
		"$push": bson.M{"entries": entry},
	})
}

func (r *SalesLedgerRepository) accumulate(ctx context.Context, tenantID, id string, update bson.M) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now().UTC()
	update["$set"] = set

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update sales ledger: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PurchaseLedgerRepository persists supplier payables from stock intake.
type PurchaseLedgerRepository struct {
	coll *mongo.Collection
}

// PurchaseLedgers returns the purchase-ledger repository bound to this store.
func (s *Store) PurchaseLedgers() *PurchaseLedgerRepository {
	return &PurchaseLedgerRepository{coll: s.db.Collection(collPurchaseLedgers)}
}

// Upsert accumulates one intake onto the supplier's ledger, creating it on
// first use.
func (r *PurchaseLedgerRepository) Upsert(ctx context.Context, tenantID, companyID, supplierName string, entry models.LedgerEntry) error {
	filter := tenantFilter(tenantID)
	filter["supplierName"] = supplierName

	now := time.Now().UTC()
	update := bson.M{
		"$inc":  bson.M{"totalBilled": entry.Amount},
		"$push": bson.M{"entries": entry},
		"$set":  bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"createdBy": tenantID,
			"companyId": companyID,
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert purchase ledger: %w", err)
	}
	return nil
}

// FindAll returns every purchase ledger owned by the tenant.
func (r *PurchaseLedgerRepository) FindAll(ctx context.Context, tenantID string) ([]models.PurchaseLedger, error) {
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID))
	if err != nil {
		return nil, fmt.Errorf("find purchase ledgers: %w", err)
	}
	return decodeAll[models.PurchaseLedger](ctx, cursor)
}

// KPISnapshotRepository persists the nightly dashboard snapshots.
type KPISnapshotRepository struct {
	coll *mongo.Collection
}

// KPISnapshots returns the snapshot repository bound to this store.
func (s *Store) KPISnapshots() *KPISnapshotRepository {
	return &KPISnapshotRepository{coll: s.db.Collection(collKPISnapshots)}
}

// Insert stores one snapshot.
func (r *KPISnapshotRepository) Insert(ctx context.Context, snap models.KPISnapshot) (models.KPISnapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, snap); err != nil {
		return models.KPISnapshot{}, fmt.Errorf("insert kpi snapshot: %w", err)
	}
	return snap, nil
}

// FindRecent returns the tenant's newest snapshots, most recent first.
func (r *KPISnapshotRepository) FindRecent(ctx context.Context, tenantID string, limit int) ([]models.KPISnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find kpi snapshots: %w", err)
	}
	return decodeAll[models.KPISnapshot](ctx, cursor)
}
