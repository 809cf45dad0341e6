package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// fakeStock is an in-memory stock store with the same conditional-decrement
// semantics as the mongo repository.
type fakeStock struct {
	mu     sync.Mutex
	levels map[string]float64
}

func newFakeStock(levels map[string]float64) *fakeStock {
	return &fakeStock{levels: levels}
}

func (f *fakeStock) AdjustStock(_ context.Context, _, id string, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	level, ok := f.levels[id]
	if !ok {
		if delta < 0 {
			return models.ErrInsufficientStock
		}
		return models.ErrNotFound
	}
	if delta < 0 && level < -delta {
		return models.ErrInsufficientStock
	}
	f.levels[id] = level + delta
	return nil
}

func (f *fakeStock) FindByID(_ context.Context, _, id string) (models.RawMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	level, ok := f.levels[id]
	if !ok {
		return models.RawMaterial{}, models.ErrNotFound
	}
	return models.RawMaterial{ID: id, CurrentStock: level}, nil
}

func (f *fakeStock) FindLowStock(_ context.Context, _ string) ([]models.RawMaterial, error) {
	return nil, nil
}

func (f *fakeStock) level(id string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[id]
}

type fakeRuns struct {
	mu     sync.Mutex
	byKey  map[string]models.ProductProduction
	stored []models.ProductProduction
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{byKey: map[string]models.ProductProduction{}}
}

func (f *fakeRuns) Insert(_ context.Context, p models.ProductProduction) (models.ProductProduction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.byKey[p.IdempotencyKey]; dup {
		return models.ProductProduction{}, models.ErrDuplicateSubmission
	}
	p.ID = "run-" + p.IdempotencyKey
	f.byKey[p.IdempotencyKey] = p
	f.stored = append(f.stored, p)
	return p, nil
}

func (f *fakeRuns) FindByIdempotencyKey(_ context.Context, _, key string) (models.ProductProduction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byKey[key]; ok {
		return p, nil
	}
	return models.ProductProduction{}, models.ErrNotFound
}

// passTx executes the callback directly; the atomicity contract is exercised
// against a real store in integration environments.
type passTx struct{}

func (passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// abortTx refuses to start, leaving everything enqueued in the callback unrun.
type abortTx struct{ err error }

func (a abortTx) WithTransaction(context.Context, func(ctx context.Context) error) error {
	return a.err
}

type noopPayables struct{}

func (noopPayables) Upsert(context.Context, string, string, string, models.LedgerEntry) error {
	return nil
}

type failPayables struct{ err error }

func (f failPayables) Upsert(context.Context, string, string, string, models.LedgerEntry) error {
	return f.err
}

func validRun(key string) models.ProductProduction {
	return models.ProductProduction{
		CreatedBy:          "tenant-1",
		ProductType:        models.ProductTypeFinished,
		ProductID:          "widget",
		TotalUnitsProduced: 10,
		GoodUnitsProduced:  9,
		ScrapUnits:         1,
		IdempotencyKey:     key,
		ActualMaterialUsage: []models.MaterialUsage{
			{MaterialType: "raw_material", MaterialID: "steel", Quantity: 5},
		},
	}
}

func newTestService(materials *fakeStock, products, semi *fakeStock, runs *fakeRuns) *Service {
	return NewService(passTx{}, runs, materials, products, semi, noopPayables{}, nil)
}

func TestRecordProductionMovesStock(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 100})
	products := newFakeStock(map[string]float64{"widget": 0})
	semi := newFakeStock(map[string]float64{})
	runs := newFakeRuns()

	svc := newTestService(materials, products, semi, runs)
	_, err := svc.RecordProduction(context.Background(), validRun("k1"))
	if err != nil {
		t.Fatalf("RecordProduction: %v", err)
	}

	if got := materials.level("steel"); got != 95 {
		t.Errorf("steel stock = %v, want 95", got)
	}
	if got := products.level("widget"); got != 9 {
		t.Errorf("widget stock = %v, want 9 (good units)", got)
	}
}

func TestRecordProductionConcurrentSubmissionsLoseNoUpdates(t *testing.T) {
	const submissions = 20
	const perRun = 3.0

	materials := newFakeStock(map[string]float64{"steel": 100})
	products := newFakeStock(map[string]float64{"widget": 0})
	runs := newFakeRuns()
	svc := newTestService(materials, products, newFakeStock(map[string]float64{}), runs)

	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run := validRun(string(rune('a' + i)))
			run.ActualMaterialUsage[0].Quantity = perRun
			if _, err := svc.RecordProduction(context.Background(), run); err != nil {
				t.Errorf("submission %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	want := 100 - submissions*perRun
	if got := materials.level("steel"); got != want {
		t.Errorf("steel stock = %v, want %v (no lost updates)", got, want)
	}
}

func TestRecordProductionIdempotentReplay(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 100})
	products := newFakeStock(map[string]float64{"widget": 0})
	runs := newFakeRuns()
	svc := newTestService(materials, products, newFakeStock(map[string]float64{}), runs)

	first, err := svc.RecordProduction(context.Background(), validRun("replay"))
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}

	second, err := svc.RecordProduction(context.Background(), validRun("replay"))
	if err != nil {
		t.Fatalf("replayed submission: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("replay returned a different run: %s vs %s", first.ID, second.ID)
	}
	if got := materials.level("steel"); got != 95 {
		t.Errorf("steel stock = %v, want 95 (replay must not deduct twice)", got)
	}
}

func TestRecordProductionInsufficientStock(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 2})
	products := newFakeStock(map[string]float64{"widget": 0})
	svc := newTestService(materials, products, newFakeStock(map[string]float64{}), newFakeRuns())

	_, err := svc.RecordProduction(context.Background(), validRun("k2"))
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestRecordProductionSemiFinishedOutput(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 100})
	products := newFakeStock(map[string]float64{})
	semi := newFakeStock(map[string]float64{"frame": 10})
	svc := newTestService(materials, products, semi, newFakeRuns())

	run := validRun("k3")
	run.ProductType = models.ProductTypeSemiFinished
	run.ProductID = "frame"

	if _, err := svc.RecordProduction(context.Background(), run); err != nil {
		t.Fatalf("RecordProduction: %v", err)
	}
	if got := semi.level("frame"); got != 19 {
		t.Errorf("frame stock = %v, want 19", got)
	}
}

func TestRecordProductionValidation(t *testing.T) {
	svc := newTestService(newFakeStock(nil), newFakeStock(nil), newFakeStock(nil), newFakeRuns())

	cases := []struct {
		name   string
		mutate func(*models.ProductProduction)
	}{
		{"missing tenant", func(r *models.ProductProduction) { r.CreatedBy = "" }},
		{"missing product", func(r *models.ProductProduction) { r.ProductID = "" }},
		{"unknown product type", func(r *models.ProductProduction) { r.ProductType = "widgetish" }},
		{"negative units", func(r *models.ProductProduction) { r.ScrapUnits = -1 }},
		{"good exceeds total", func(r *models.ProductProduction) { r.GoodUnitsProduced = 11 }},
		{"non-positive usage", func(r *models.ProductProduction) { r.ActualMaterialUsage[0].Quantity = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			run := validRun("v-" + tc.name)
			tc.mutate(&run)
			if _, err := svc.RecordProduction(context.Background(), run); !errors.Is(err, models.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRecordIntake(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 10})
	svc := newTestService(materials, newFakeStock(nil), newFakeStock(nil), newFakeRuns())

	if err := svc.RecordIntake(context.Background(), "tenant-1", "co-1", "steel", "Acme Metals", 40, 2.5); err != nil {
		t.Fatalf("RecordIntake: %v", err)
	}
	if got := materials.level("steel"); got != 50 {
		t.Errorf("steel stock = %v, want 50", got)
	}

	if err := svc.RecordIntake(context.Background(), "tenant-1", "co-1", "steel", "", 0, 1); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation for zero quantity, got %v", err)
	}
}

func TestRecordIntakeRunsInsideTransaction(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 10})
	txErr := errors.New("transaction aborted")
	svc := NewService(abortTx{err: txErr}, newFakeRuns(), materials, newFakeStock(nil), newFakeStock(nil), noopPayables{}, nil)

	err := svc.RecordIntake(context.Background(), "tenant-1", "co-1", "steel", "Acme Metals", 40, 2.5)
	if !errors.Is(err, txErr) {
		t.Fatalf("err = %v, want the transaction failure", err)
	}
	if got := materials.level("steel"); got != 10 {
		t.Errorf("aborted intake must leave stock untouched, got %v", got)
	}
}

func TestRecordIntakePayableFailureSurfaces(t *testing.T) {
	materials := newFakeStock(map[string]float64{"steel": 10})
	ledgerErr := errors.New("duplicate key")
	svc := NewService(passTx{}, newFakeRuns(), materials, newFakeStock(nil), newFakeStock(nil), failPayables{err: ledgerErr}, nil)

	if err := svc.RecordIntake(context.Background(), "tenant-1", "co-1", "steel", "Acme Metals", 40, 2.5); !errors.Is(err, ledgerErr) {
		t.Errorf("err = %v, want the ledger failure", err)
	}
}
