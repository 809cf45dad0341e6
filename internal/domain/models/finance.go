package models

import "time"

// TaxRate is the fixed invoice tax rate applied to every delivery invoice.
const TaxRate = 0.18

// Invoice is generated per delivery event (partial or final). Amounts are
// computed with decimal arithmetic and stored rounded to 2 places.
type Invoice struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	// Number is formatted INV-<YYYYMMDD>-<6-char-random>.
	Number  string `bson:"number" json:"number"`
	OrderID string `bson:"orderId" json:"orderId"`

	QuantityDelivered float64 `bson:"quantityDelivered" json:"quantityDelivered"`
	UnitPrice         float64 `bson:"unitPrice" json:"unitPrice"`
	Subtotal          float64 `bson:"subtotal" json:"subtotal"`
	Tax               float64 `bson:"tax" json:"tax"`
	Total             float64 `bson:"total" json:"total"`

	IssuedAt time.Time `bson:"issuedAt" json:"issuedAt"`
}

// LedgerEntry is one accumulated payment line in a ledger.
type LedgerEntry struct {
	Amount    float64   `bson:"amount" json:"amount"`
	Date      time.Time `bson:"date" json:"date"`
	Reference string    `bson:"reference,omitempty" json:"reference,omitempty"`
}

// SalesLedger accumulates receivables and payments for one order.
type SalesLedger struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	OrderID      string        `bson:"orderId" json:"orderId"`
	CustomerName string        `bson:"customerName" json:"customerName"`
	TotalBilled  float64       `bson:"totalBilled" json:"totalBilled"`
	TotalPaid    float64       `bson:"totalPaid" json:"totalPaid"`
	Entries      []LedgerEntry `bson:"entries,omitempty" json:"entries,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PurchaseLedger accumulates payables for raw-material intake.
type PurchaseLedger struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	SupplierName string        `bson:"supplierName" json:"supplierName"`
	TotalBilled  float64       `bson:"totalBilled" json:"totalBilled"`
	TotalPaid    float64       `bson:"totalPaid" json:"totalPaid"`
	Entries      []LedgerEntry `bson:"entries,omitempty" json:"entries,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// KPISnapshot is the persisted output of the scheduled nightly dashboard run.
type KPISnapshot struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	Date      time.Time `bson:"date" json:"date"`

	AverageOEE       float64 `bson:"averageOee" json:"averageOee"`
	TotalUnits       float64 `bson:"totalUnits" json:"totalUnits"`
	TotalScrap       float64 `bson:"totalScrap" json:"totalScrap"`
	Revenue          float64 `bson:"revenue" json:"revenue"`
	NetMargin        float64 `bson:"netMargin" json:"netMargin"`
	InsightCount     int     `bson:"insightCount" json:"insightCount"`
	GeneratedAt      time.Time `bson:"generatedAt" json:"generatedAt"`
}
