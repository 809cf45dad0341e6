package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamoudk/plantops/internal/domain/models"
)

type fakeMachines struct {
	byID       map[string]models.Machine
	runStats   []struct{ runTime, downtime float64 }
	breakdowns int
}

func newFakeMachines() *fakeMachines {
	return &fakeMachines{byID: map[string]models.Machine{}}
}

func (f *fakeMachines) Insert(_ context.Context, m models.Machine) (models.Machine, error) {
	m.ID = "machine-1"
	f.byID[m.ID] = m
	return m, nil
}

func (f *fakeMachines) FindAll(_ context.Context, _ string) ([]models.Machine, error) {
	var out []models.Machine
	for _, m := range f.byID {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMachines) FindByID(_ context.Context, tenantID, id string) (models.Machine, error) {
	m, ok := f.byID[id]
	if !ok || m.CreatedBy != tenantID {
		return models.Machine{}, models.ErrNotFound
	}
	return m, nil
}

func (f *fakeMachines) RecordMaintenance(_ context.Context, tenantID, id string, repairTime float64, nextDue time.Time) error {
	m, ok := f.byID[id]
	if !ok || m.CreatedBy != tenantID {
		return models.ErrNotFound
	}
	m.RepairCount++
	m.TotalRepairTime += repairTime
	m.NextMaintenanceDate = nextDue
	f.byID[id] = m
	return nil
}

func (f *fakeMachines) AccumulateRunStats(_ context.Context, tenantID, id string, runTime, downtime float64, breakdown bool) error {
	m, ok := f.byID[id]
	if !ok || m.CreatedBy != tenantID {
		return models.ErrNotFound
	}
	f.runStats = append(f.runStats, struct{ runTime, downtime float64 }{runTime, downtime})
	if breakdown {
		f.breakdowns++
	}
	return nil
}

type fakeRuns struct {
	inserted []models.Production
}

func (f *fakeRuns) Insert(_ context.Context, p models.Production) (models.Production, error) {
	p.ID = "run-1"
	f.inserted = append(f.inserted, p)
	return p, nil
}

type fakeJobs struct {
	byID map[string]models.ManualJob
}

func (f *fakeJobs) Insert(_ context.Context, j models.ManualJob) (models.ManualJob, error) {
	j.ID = "job-1"
	f.byID[j.ID] = j
	return j, nil
}

func (f *fakeJobs) FindAll(_ context.Context, _ string) ([]models.ManualJob, error) { return nil, nil }

func (f *fakeJobs) FindByID(_ context.Context, tenantID, id string) (models.ManualJob, error) {
	j, ok := f.byID[id]
	if !ok || j.CreatedBy != tenantID {
		return models.ManualJob{}, models.ErrNotFound
	}
	return j, nil
}

type fakeJobRuns struct {
	inserted []models.ManualJobProduction
}

func (f *fakeJobRuns) Insert(_ context.Context, run models.ManualJobProduction) (models.ManualJobProduction, error) {
	run.ID = "jobrun-1"
	f.inserted = append(f.inserted, run)
	return run, nil
}

type fakeFixedCosts struct {
	byMonth map[string]models.FixedCost
}

func (f *fakeFixedCosts) Upsert(_ context.Context, c models.FixedCost) (models.FixedCost, error) {
	f.byMonth[c.MonthKey] = c
	return c, nil
}

func (f *fakeFixedCosts) FindLatest(_ context.Context, _, monthKey string) (models.FixedCost, error) {
	c, ok := f.byMonth[monthKey]
	if !ok {
		return models.FixedCost{}, models.ErrNotFound
	}
	return c, nil
}

func (f *fakeFixedCosts) FindAll(_ context.Context, _ string) ([]models.FixedCost, error) {
	var out []models.FixedCost
	for _, c := range f.byMonth {
		out = append(out, c)
	}
	return out, nil
}

func newTestService() (*Service, *fakeMachines, *fakeRuns, *fakeJobs, *fakeJobRuns, *fakeFixedCosts) {
	machines := newFakeMachines()
	runs := &fakeRuns{}
	jobs := &fakeJobs{byID: map[string]models.ManualJob{}}
	jobRuns := &fakeJobRuns{}
	fixed := &fakeFixedCosts{byMonth: map[string]models.FixedCost{}}
	svc := NewService(machines, nil, nil, nil, jobs, runs, jobRuns, fixed, nil, nil)
	return svc, machines, runs, jobs, jobRuns, fixed
}

func TestCreateMachineValidation(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateMachine(ctx, models.Machine{CreatedBy: "t", Name: "Press"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("zero cycle time err = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateMachine(ctx, models.Machine{CreatedBy: "t", Name: "Press", IdealCycleTime: 0.5}); err != nil {
		t.Errorf("valid machine err = %v", err)
	}
}

func TestRecordMachineRunAccumulatesStats(t *testing.T) {
	svc, machines, runs, _, _, _ := newTestService()
	ctx := context.Background()

	m, err := svc.CreateMachine(ctx, models.Machine{CreatedBy: "tenant-1", Name: "Press", IdealCycleTime: 0.5})
	if err != nil {
		t.Fatalf("CreateMachine: %v", err)
	}

	run := models.Production{
		CreatedBy:            "tenant-1",
		MachineID:            m.ID,
		TotalUnitsProduced:   200,
		GoodUnitsProduced:    190,
		ScrapUnits:           10,
		ActualMachineRunTime: 400,
		TotalDowntime:        30,
		Breakdown:            true,
	}

	saved, err := svc.RecordMachineRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordMachineRun: %v", err)
	}
	if saved.ID == "" {
		t.Error("no record id assigned")
	}
	if saved.Date.IsZero() {
		t.Error("date not defaulted")
	}
	if len(runs.inserted) != 1 {
		t.Fatalf("inserted runs = %d, want 1", len(runs.inserted))
	}
	if len(machines.runStats) != 1 || machines.runStats[0].runTime != 400 || machines.runStats[0].downtime != 30 {
		t.Errorf("run stats = %+v", machines.runStats)
	}
	if machines.breakdowns != 1 {
		t.Errorf("breakdowns = %d, want 1", machines.breakdowns)
	}
}

func TestRecordMachineRunValidation(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	ctx := context.Background()

	m, _ := svc.CreateMachine(ctx, models.Machine{CreatedBy: "tenant-1", Name: "Press", IdealCycleTime: 0.5})

	cases := []struct {
		name string
		run  models.Production
	}{
		{"missing machine", models.Production{CreatedBy: "tenant-1"}},
		{"scrap exceeds units", models.Production{CreatedBy: "tenant-1", MachineID: m.ID, TotalUnitsProduced: 5, ScrapUnits: 6}},
		{"negative downtime", models.Production{CreatedBy: "tenant-1", MachineID: m.ID, TotalDowntime: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordMachineRun(ctx, tc.run); !errors.Is(err, models.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	t.Run("unknown machine", func(t *testing.T) {
		run := models.Production{CreatedBy: "tenant-1", MachineID: "ghost", TotalUnitsProduced: 1}
		if _, err := svc.RecordMachineRun(ctx, run); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRecordMaintenance(t *testing.T) {
	svc, machines, _, _, _, _ := newTestService()
	ctx := context.Background()

	m, _ := svc.CreateMachine(ctx, models.Machine{CreatedBy: "tenant-1", Name: "Press", IdealCycleTime: 0.5})

	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.RecordMaintenance(ctx, "tenant-1", m.ID, 3.5, due); err != nil {
		t.Fatalf("RecordMaintenance: %v", err)
	}

	got := machines.byID[m.ID]
	if got.RepairCount != 1 || got.TotalRepairTime != 3.5 || !got.NextMaintenanceDate.Equal(due) {
		t.Errorf("machine after maintenance = %+v", got)
	}

	if err := svc.RecordMaintenance(ctx, "tenant-1", m.ID, -1, due); !errors.Is(err, models.ErrValidation) {
		t.Errorf("negative repair time err = %v, want ErrValidation", err)
	}
}

func TestRecordManualJobRun(t *testing.T) {
	svc, _, _, _, jobRuns, _ := newTestService()
	ctx := context.Background()

	job, err := svc.CreateManualJob(ctx, models.ManualJob{
		CreatedBy: "tenant-1",
		Name:      "Deburring",
		CostModel: models.ManualJobHourly,
		Rate:      30,
	})
	if err != nil {
		t.Fatalf("CreateManualJob: %v", err)
	}

	run := models.ManualJobProduction{
		CreatedBy:       "tenant-1",
		ManualJobID:     job.ID,
		OutputQuantity:  50,
		ActualTimeTaken: 120,
	}
	saved, err := svc.RecordManualJobRun(ctx, run)
	if err != nil {
		t.Fatalf("RecordManualJobRun: %v", err)
	}
	if saved.Date.IsZero() {
		t.Error("date not defaulted")
	}
	if len(jobRuns.inserted) != 1 {
		t.Errorf("inserted runs = %d, want 1", len(jobRuns.inserted))
	}

	if _, err := svc.RecordManualJobRun(ctx, models.ManualJobProduction{CreatedBy: "tenant-1", ManualJobID: "ghost"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown job err = %v, want ErrNotFound", err)
	}
}

func TestCreateManualJobRejectsUnknownCostModel(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.CreateManualJob(context.Background(), models.ManualJob{
		CreatedBy: "tenant-1",
		Name:      "Deburring",
		CostModel: "per_kilo",
		Rate:      30,
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestUpsertFixedCostMonthKey(t *testing.T) {
	svc, _, _, _, _, fixed := newTestService()
	ctx := context.Background()

	if _, err := svc.UpsertFixedCost(ctx, models.FixedCost{CreatedBy: "t", MonthKey: "2026/03"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("bad month key err = %v, want ErrValidation", err)
	}

	c := models.FixedCost{CreatedBy: "t", MonthKey: "2026-03", Rent: 1000}
	if _, err := svc.UpsertFixedCost(ctx, c); err != nil {
		t.Fatalf("UpsertFixedCost: %v", err)
	}

	c.Rent = 1200
	if _, err := svc.UpsertFixedCost(ctx, c); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if got := fixed.byMonth["2026-03"]; got.Rent != 1200 {
		t.Errorf("rent after replace = %v, want 1200", got.Rent)
	}
	if len(fixed.byMonth) != 1 {
		t.Errorf("snapshots = %d, want 1 per month", len(fixed.byMonth))
	}
}
