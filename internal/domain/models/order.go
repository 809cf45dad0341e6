package models

import "time"

// OrderStatus is the commercial lifecycle state of an order.
type OrderStatus string

const (
	OrderInProgress         OrderStatus = "In Progress"
	OrderCompleted          OrderStatus = "Completed"
	OrderPartiallyCancelled OrderStatus = "Partially Cancelled"
	OrderFullyCancelled     OrderStatus = "Fully Cancelled"
)

// Payment is one payment entry appended to an order.
type Payment struct {
	Amount float64   `bson:"amount" json:"amount"`
	Date   time.Time `bson:"date" json:"date"`
	Method string    `bson:"method,omitempty" json:"method,omitempty"`
	Note   string    `bson:"note,omitempty" json:"note,omitempty"`
}

// Order is a commercial sales record. Delivery and payment updates are
// append/accumulate operations, never retroactive corrections.
type Order struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	CompanyID string `bson:"companyId" json:"companyId"`

	ProductID    string `bson:"productId" json:"productId"`
	CustomerName string `bson:"customerName" json:"customerName"`

	QuantityOrdered   float64 `bson:"quantityOrdered" json:"quantityOrdered"`
	QuantityDelivered float64 `bson:"quantityDelivered" json:"quantityDelivered"`
	RemainingQuantity float64 `bson:"remainingQuantity" json:"remainingQuantity"`
	SellingPrice      float64 `bson:"sellingPrice" json:"sellingPrice"`

	DeliveryDate time.Time   `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	Status       OrderStatus `bson:"status" json:"status"`
	Payments     []Payment   `bson:"payments,omitempty" json:"payments,omitempty"`

	SalesLedgerID string `bson:"salesLedgerId,omitempty" json:"salesLedgerId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
