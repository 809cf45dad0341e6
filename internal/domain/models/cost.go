package models

import "time"

// FixedCost is a latest-wins snapshot of monthly fixed cost categories.
// MonthKey is formatted YYYY-MM.
type FixedCost struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	MonthKey string `bson:"monthKey" json:"monthKey"`

	Rent           float64 `bson:"rent" json:"rent"`
	Salaries       float64 `bson:"salaries" json:"salaries"`
	Insurance      float64 `bson:"insurance" json:"insurance"`
	Depreciation   float64 `bson:"depreciation" json:"depreciation"`
	Utilities      float64 `bson:"utilities" json:"utilities"`
	Maintenance    float64 `bson:"maintenance" json:"maintenance"`
	Administrative float64 `bson:"administrative" json:"administrative"`
	Other          float64 `bson:"other" json:"other"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Total sums every fixed cost category.
func (f FixedCost) Total() float64 {
	return f.Rent + f.Salaries + f.Insurance + f.Depreciation +
		f.Utilities + f.Maintenance + f.Administrative + f.Other
}

// VariableCost is a monthly snapshot of per-period variable cost categories.
type VariableCost struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	MonthKey string `bson:"monthKey" json:"monthKey"`

	RawMaterials   float64 `bson:"rawMaterials" json:"rawMaterials"`
	DirectLabor    float64 `bson:"directLabor" json:"directLabor"`
	Energy         float64 `bson:"energy" json:"energy"`
	Packaging      float64 `bson:"packaging" json:"packaging"`
	Transport      float64 `bson:"transport" json:"transport"`
	Consumables    float64 `bson:"consumables" json:"consumables"`
	Subcontracting float64 `bson:"subcontracting" json:"subcontracting"`
	Other          float64 `bson:"other" json:"other"`

	// UnitsProduced in the month, used to derive variable cost per unit.
	UnitsProduced float64 `bson:"unitsProduced" json:"unitsProduced"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Total sums every variable cost category.
func (v VariableCost) Total() float64 {
	return v.RawMaterials + v.DirectLabor + v.Energy + v.Packaging +
		v.Transport + v.Consumables + v.Subcontracting + v.Other
}

// PerUnit returns the variable cost per produced unit, 0 when no units were produced.
func (v VariableCost) PerUnit() float64 {
	if v.UnitsProduced <= 0 {
		return 0
	}
	return v.Total() / v.UnitsProduced
}
