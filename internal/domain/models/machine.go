package models

import "time"

// Machine is a nameplate record for one piece of production equipment.
// Counters accumulate over the machine's life; machines are never hard-deleted.
type Machine struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	Name           string  `bson:"name" json:"name"`
	MachineType    string  `bson:"machineType" json:"machineType"`
	Capacity       float64 `bson:"capacity" json:"capacity"`
	IdealCycleTime float64 `bson:"idealCycleTime" json:"idealCycleTime"` // minutes per unit
	EnergyRateKW   float64 `bson:"energyRateKw" json:"energyRateKw"`

	PurchaseDate        time.Time `bson:"purchaseDate,omitempty" json:"purchaseDate,omitempty"`
	LastMaintenanceDate time.Time `bson:"lastMaintenanceDate,omitempty" json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate time.Time `bson:"nextMaintenanceDate,omitempty" json:"nextMaintenanceDate,omitempty"`

	TotalDowntime     float64 `bson:"totalDowntime" json:"totalDowntime"` // minutes, cumulative
	UnplannedDowntime float64 `bson:"unplannedDowntime" json:"unplannedDowntime"`
	TotalRepairTime   float64 `bson:"totalRepairTime" json:"totalRepairTime"`
	RepairCount       int     `bson:"repairCount" json:"repairCount"`
	BreakdownCount    int     `bson:"breakdownCount" json:"breakdownCount"`
	TotalRunTime      float64 `bson:"totalRunTime" json:"totalRunTime"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
