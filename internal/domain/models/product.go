package models

import "time"

// CostComponents holds the embedded per-unit cost breakdown of a catalog item.
type CostComponents struct {
	MaterialCost float64            `bson:"materialCost" json:"materialCost"`
	LaborCost    float64            `bson:"laborCost" json:"laborCost"`
	MachineCost  float64            `bson:"machineCost" json:"machineCost"`
	OverheadCost float64            `bson:"overheadCost" json:"overheadCost"`
	CustomCosts  map[string]float64 `bson:"customCosts,omitempty" json:"customCosts,omitempty"`
}

// BOMRawMaterial is one raw-material line of a bill of materials.
type BOMRawMaterial struct {
	RawMaterialID string  `bson:"rawMaterialId" json:"rawMaterialId"`
	Quantity      float64 `bson:"quantity" json:"quantity"`
}

// BOMSemiFinished is one semi-finished component line of a bill of materials.
// The referenced component carries its own BOM, making the structure recursive.
type BOMSemiFinished struct {
	SemiFinishedID string  `bson:"semiFinishedId" json:"semiFinishedId"`
	Quantity       float64 `bson:"quantity" json:"quantity"`
}

// BOMMachine associates a machine cycle with a catalog item.
type BOMMachine struct {
	MachineID string  `bson:"machineId" json:"machineId"`
	CycleTime float64 `bson:"cycleTime" json:"cycleTime"` // minutes per unit
}

// BOMManualJob associates a manual job with a catalog item.
type BOMManualJob struct {
	ManualJobID string  `bson:"manualJobId" json:"manualJobId"`
	TimePerUnit float64 `bson:"timePerUnit" json:"timePerUnit"` // minutes
}

// BillOfMaterials is the embedded composition of a product or semi-finished product.
type BillOfMaterials struct {
	RawMaterials  []BOMRawMaterial  `bson:"rawMaterials,omitempty" json:"rawMaterials,omitempty"`
	SemiFinished  []BOMSemiFinished `bson:"semiFinished,omitempty" json:"semiFinished,omitempty"`
	Machines      []BOMMachine      `bson:"machines,omitempty" json:"machines,omitempty"`
	ManualJobs    []BOMManualJob    `bson:"manualJobs,omitempty" json:"manualJobs,omitempty"`
}

// Product is a finished-goods catalog entry.
type Product struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	Name         string  `bson:"name" json:"name"`
	Code         string  `bson:"code" json:"code"`
	Unit         string  `bson:"unit" json:"unit"`
	SellingPrice float64 `bson:"sellingPrice" json:"sellingPrice"`
	CurrentStock float64 `bson:"currentStock" json:"currentStock"`

	Costs CostComponents  `bson:"costs" json:"costs"`
	BOM   BillOfMaterials `bson:"bom" json:"bom"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SemiFinishedProduct is an intermediate catalog entry, itself composable.
type SemiFinishedProduct struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	Name         string  `bson:"name" json:"name"`
	Code         string  `bson:"code" json:"code"`
	Unit         string  `bson:"unit" json:"unit"`
	CurrentStock float64 `bson:"currentStock" json:"currentStock"`

	Costs CostComponents  `bson:"costs" json:"costs"`
	BOM   BillOfMaterials `bson:"bom" json:"bom"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ManualJobCostModel selects how a manual job is priced.
type ManualJobCostModel string

const (
	ManualJobHourly      ManualJobCostModel = "hourly"
	ManualJobPerUnit     ManualJobCostModel = "per_unit"
	ManualJobFixedPerDay ManualJobCostModel = "fixed_per_day"
)

// ManualJob describes a manual production step and its cost model.
type ManualJob struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	Name      string             `bson:"name" json:"name"`
	CostModel ManualJobCostModel `bson:"costModel" json:"costModel"`
	Rate      float64            `bson:"rate" json:"rate"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
