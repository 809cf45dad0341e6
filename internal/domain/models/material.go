package models

import "time"

// RawMaterial is a stock-ledger entry for one purchased input. CurrentStock is
// only ever mutated through atomic increments at the repository layer.
type RawMaterial struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	Name string `bson:"name" json:"name"`
	Code string `bson:"code" json:"code"`
	Unit string `bson:"unit" json:"unit"`

	CurrentStock float64 `bson:"currentStock" json:"currentStock"`
	SafetyStock  float64 `bson:"safetyStock" json:"safetyStock"`
	ReorderPoint float64 `bson:"reorderPoint" json:"reorderPoint"`
	LeadTimeDays int     `bson:"leadTimeDays" json:"leadTimeDays"`
	UnitPrice    float64 `bson:"unitPrice" json:"unitPrice"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
