package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/mamoudk/plantops/internal/domain/models"
)

type fakeCatalog struct {
	products     map[string]models.Product
	semiFinished map[string]models.SemiFinishedProduct
	rawMaterials map[string]models.RawMaterial
	machines     map[string]models.Machine
	manualJobs   map[string]models.ManualJob
}

func (f *fakeCatalog) Product(_ context.Context, _, id string) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) SemiFinished(_ context.Context, _, id string) (models.SemiFinishedProduct, error) {
	p, ok := f.semiFinished[id]
	if !ok {
		return models.SemiFinishedProduct{}, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) RawMaterial(_ context.Context, _, id string) (models.RawMaterial, error) {
	m, ok := f.rawMaterials[id]
	if !ok {
		return models.RawMaterial{}, models.ErrNotFound
	}
	return m, nil
}

func (f *fakeCatalog) Machine(_ context.Context, _, id string) (models.Machine, error) {
	m, ok := f.machines[id]
	if !ok {
		return models.Machine{}, models.ErrNotFound
	}
	return m, nil
}

func (f *fakeCatalog) ManualJob(_ context.Context, _, id string) (models.ManualJob, error) {
	j, ok := f.manualJobs[id]
	if !ok {
		return models.ManualJob{}, models.ErrNotFound
	}
	return j, nil
}

func twoLevelCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]models.Product{
			"chair": {
				ID:   "chair",
				Name: "Chair",
				BOM: models.BillOfMaterials{
					RawMaterials: []models.BOMRawMaterial{{RawMaterialID: "screws", Quantity: 12}},
					SemiFinished: []models.BOMSemiFinished{{SemiFinishedID: "frame", Quantity: 1}},
					Machines:     []models.BOMMachine{{MachineID: "press", CycleTime: 2.5}},
					ManualJobs:   []models.BOMManualJob{{ManualJobID: "assembly", TimePerUnit: 15}},
				},
			},
		},
		semiFinished: map[string]models.SemiFinishedProduct{
			"frame": {
				ID:   "frame",
				Name: "Frame",
				BOM: models.BillOfMaterials{
					RawMaterials: []models.BOMRawMaterial{{RawMaterialID: "steel", Quantity: 3}},
				},
			},
		},
		rawMaterials: map[string]models.RawMaterial{
			"screws": {ID: "screws", Name: "Screws"},
			"steel":  {ID: "steel", Name: "Steel Tube"},
		},
		machines:   map[string]models.Machine{"press": {ID: "press", Name: "Press"}},
		manualJobs: map[string]models.ManualJob{"assembly": {ID: "assembly", Name: "Assembly"}},
	}
}

// collectLeaves walks the tree and returns every node without components.
func collectLeaves(n Node) []Node {
	if len(n.Components) == 0 {
		return []Node{n}
	}
	var leaves []Node
	for _, c := range n.Components {
		leaves = append(leaves, collectLeaves(c)...)
	}
	return leaves
}

func TestResolveTerminatesWithResolvedLeaves(t *testing.T) {
	r := NewResolver(twoLevelCatalog(), nil)

	tree, err := r.Resolve(context.Background(), "tenant-1", models.ProductTypeFinished, "chair")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for _, leaf := range collectLeaves(tree) {
		switch leaf.Kind {
		case NodeRawMaterial, NodeMachine, NodeManualJob:
		default:
			t.Errorf("unresolved leaf of kind %q (id %s)", leaf.Kind, leaf.ID)
		}
	}
}

func TestResolveMultipliesQuantities(t *testing.T) {
	catalog := twoLevelCatalog()
	// Two frames per chair: steel requirement should double.
	p := catalog.products["chair"]
	p.BOM.SemiFinished[0].Quantity = 2
	catalog.products["chair"] = p

	r := NewResolver(catalog, nil)
	tree, err := r.Resolve(context.Background(), "tenant-1", models.ProductTypeFinished, "chair")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var steelQty float64
	for _, leaf := range collectLeaves(tree) {
		if leaf.ID == "steel" {
			steelQty = leaf.Quantity
		}
	}
	if steelQty != 6 {
		t.Errorf("steel quantity = %v, want 6 (3 per frame x 2 frames)", steelQty)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	catalog := twoLevelCatalog()
	catalog.semiFinished["frame"] = models.SemiFinishedProduct{
		ID:   "frame",
		Name: "Frame",
		BOM: models.BillOfMaterials{
			SemiFinished: []models.BOMSemiFinished{{SemiFinishedID: "frame", Quantity: 1}},
		},
	}

	r := NewResolver(catalog, nil)
	_, err := r.Resolve(context.Background(), "tenant-1", models.ProductTypeFinished, "chair")
	if !errors.Is(err, ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestResolveEnforcesMaxDepth(t *testing.T) {
	catalog := &fakeCatalog{
		semiFinished: map[string]models.SemiFinishedProduct{},
	}
	// Chain sf-0 -> sf-1 -> ... deeper than the bound, no cycles.
	for i := 0; i < DefaultMaxDepth+2; i++ {
		sf := models.SemiFinishedProduct{ID: sfID(i), Name: sfID(i)}
		if i < DefaultMaxDepth+1 {
			sf.BOM.SemiFinished = []models.BOMSemiFinished{{SemiFinishedID: sfID(i + 1), Quantity: 1}}
		}
		catalog.semiFinished[sf.ID] = sf
	}

	r := NewResolver(catalog, nil)
	_, err := r.Resolve(context.Background(), "tenant-1", models.ProductTypeSemiFinished, sfID(0))
	if !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth, got %v", err)
	}
}

func TestResolveRejectsUnknownProductType(t *testing.T) {
	r := NewResolver(twoLevelCatalog(), nil)
	_, err := r.Resolve(context.Background(), "tenant-1", models.ProductType("widget"), "chair")
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func sfID(i int) string {
	return "sf-" + string(rune('a'+i))
}
