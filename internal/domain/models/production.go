package models

import "time"

// Production is one machine-run record per reporting interval. Records are
// immutable after creation; corrections are new records.
type Production struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	MachineID string    `bson:"machineId" json:"machineId"`
	Date      time.Time `bson:"date" json:"date"`
	Shift     string    `bson:"shift,omitempty" json:"shift,omitempty"`

	PlannedProductionTime float64 `bson:"plannedProductionTime" json:"plannedProductionTime"` // minutes
	ActualProductionTime  float64 `bson:"actualProductionTime" json:"actualProductionTime"`
	ActualMachineRunTime  float64 `bson:"actualMachineRunTime" json:"actualMachineRunTime"`
	AvailableMachineTime  float64 `bson:"availableMachineTime" json:"availableMachineTime"`
	TotalDowntime         float64 `bson:"totalDowntime" json:"totalDowntime"`
	ChangeoverTime        float64 `bson:"changeoverTime" json:"changeoverTime"`
	IdealCycleTime        float64 `bson:"idealCycleTime" json:"idealCycleTime"`

	TotalUnitsProduced      float64 `bson:"totalUnitsProduced" json:"totalUnitsProduced"`
	GoodUnitsProduced       float64 `bson:"goodUnitsProduced" json:"goodUnitsProduced"`
	GoodUnitsWithoutRework  float64 `bson:"goodUnitsWithoutRework" json:"goodUnitsWithoutRework"`
	ScrapUnits              float64 `bson:"scrapUnits" json:"scrapUnits"`
	EnergyConsumedKWh       float64 `bson:"energyConsumedKwh" json:"energyConsumedKwh"`

	// Breakdown marks the downtime of this run as an unplanned stoppage.
	Breakdown bool `bson:"breakdown,omitempty" json:"breakdown,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ProductType discriminates which catalog a product reference resolves against.
type ProductType string

const (
	ProductTypeFinished     ProductType = "product"
	ProductTypeSemiFinished ProductType = "semi_finished"
)

// MaterialUsage maps one consumed input to a quantity for a production run.
type MaterialUsage struct {
	MaterialType string  `bson:"materialType" json:"materialType"` // "raw_material" or "semi_finished"
	MaterialID   string  `bson:"materialId" json:"materialId"`
	Quantity     float64 `bson:"quantity" json:"quantity"`
}

// ProductProduction is one product-run record. Creating one deducts consumed
// material stock and increments the produced item's stock atomically.
type ProductProduction struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	ProductType ProductType `bson:"productType" json:"productType"`
	ProductID   string      `bson:"productId" json:"productId"`
	Date        time.Time   `bson:"date" json:"date"`

	TotalUnitsProduced     float64 `bson:"totalUnitsProduced" json:"totalUnitsProduced"`
	GoodUnitsProduced      float64 `bson:"goodUnitsProduced" json:"goodUnitsProduced"`
	GoodUnitsWithoutRework float64 `bson:"goodUnitsWithoutRework" json:"goodUnitsWithoutRework"`
	ScrapUnits             float64 `bson:"scrapUnits" json:"scrapUnits"`

	ActualMaterialUsage    []MaterialUsage `bson:"actualMaterialUsage" json:"actualMaterialUsage"`
	EstimatedMaterialUsage []MaterialUsage `bson:"estimatedMaterialUsage" json:"estimatedMaterialUsage"`

	// IdempotencyKey guards against double stock deduction when a submission
	// is retried.
	IdempotencyKey string `bson:"idempotencyKey" json:"idempotencyKey"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ManualJobProduction is one run record for a manual (non-machine) job.
type ManualJobProduction struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	ManualJobID string    `bson:"manualJobId" json:"manualJobId"`
	ProductID   string    `bson:"productId" json:"productId"`
	Date        time.Time `bson:"date" json:"date"`

	OutputQuantity  float64 `bson:"outputQuantity" json:"outputQuantity"`
	ScrapQuantity   float64 `bson:"scrapQuantity" json:"scrapQuantity"`
	ReworkQuantity  float64 `bson:"reworkQuantity" json:"reworkQuantity"`
	ActualTimeTaken float64 `bson:"actualTimeTaken" json:"actualTimeTaken"` // minutes

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
