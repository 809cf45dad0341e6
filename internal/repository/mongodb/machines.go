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

// MachineRepository persists Machine records.
type MachineRepository struct {
	coll *mongo.Collection
}

// Machines returns the machine repository bound to this store.
func (s *Store) Machines() *MachineRepository {
	return &MachineRepository{coll: s.db.Collection(collMachines)}
}

// Insert creates a machine record, assigning an id and timestamps.
func (r *MachineRepository) Insert(ctx context.Context, m models.Machine) (models.Machine, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return models.Machine{}, fmt.Errorf("insert machine: %w", err)
	}
	return m, nil
}

// FindAll returns every machine owned by the tenant, newest first.
func (r *MachineRepository) FindAll(ctx context.Context, tenantID string) ([]models.Machine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, tenantFilter(tenantID), opts)
	if err != nil {
		return nil, fmt.Errorf("find machines: %w", err)
	}
	return decodeAll[models.Machine](ctx, cursor)
}

// FindByID returns one machine, or models.ErrNotFound.
func (r *MachineRepository) FindByID(ctx context.Context, tenantID, id string) (models.Machine, error) {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	var m models.Machine
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Machine{}, models.ErrNotFound
		}
		return models.Machine{}, fmt.Errorf("find machine %s: %w", id, err)
	}
	return m, nil
}

// RecordMaintenance updates the maintenance dates and accumulates repair counters.
func (r *MachineRepository) RecordMaintenance(ctx context.Context, tenantID, id string, repairTime float64, nextDue time.Time) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	update := bson.M{
		"$set": bson.M{
			"lastMaintenanceDate": time.Now().UTC(),
			"nextMaintenanceDate": nextDue,
			"updatedAt":           time.Now().UTC(),
		},
		"$inc": bson.M{
			"totalRepairTime": repairTime,
			"repairCount":     1,
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("record maintenance: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AccumulateRunStats folds one production interval into the machine's lifetime
// counters. unplanned should be true when the downtime was not scheduled.
func (r *MachineRepository) AccumulateRunStats(ctx context.Context, tenantID, id string, runTime, downtime float64, breakdown bool) error {
	filter := tenantFilter(tenantID)
	filter["_id"] = id

	inc := bson.M{
		"totalRunTime":  runTime,
		"totalDowntime": downtime,
	}
	if breakdown {
		inc["unplannedDowntime"] = downtime
		inc["breakdownCount"] = 1
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("accumulate run stats: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
