// Package orders implements the commercial order lifecycle: delivery
// accumulation, per-delivery invoicing at the fixed tax rate, payment
// bookkeeping, and cancellation.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// OrderStore is the persistence surface the service drives.
type OrderStore interface {
	Insert(ctx context.Context, o models.Order) (models.Order, error)
	FindAll(ctx context.Context, tenantID string) ([]models.Order, error)
	FindByID(ctx context.Context, tenantID, id string) (models.Order, error)
	ApplyDelivery(ctx context.Context, tenantID, id string, qty float64) (models.Order, error)
	AppendPayment(ctx context.Context, tenantID, id string, p models.Payment) error
	SetStatus(ctx context.Context, tenantID, id string, status models.OrderStatus) error
	SetSalesLedger(ctx context.Context, tenantID, id, ledgerID string) error
}

// InvoiceWriter persists generated invoices.
type InvoiceWriter interface {
	Insert(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	FindByOrder(ctx context.Context, tenantID, orderID string) ([]models.Invoice, error)
}

// LedgerStore persists order-linked sales ledgers.
type LedgerStore interface {
	Insert(ctx context.Context, l models.SalesLedger) (models.SalesLedger, error)
	FindByOrder(ctx context.Context, tenantID, orderID string) (models.SalesLedger, error)
	AccumulateBilled(ctx context.Context, tenantID, id string, amount float64) error
	AppendPayment(ctx context.Context, tenantID, id string, entry models.LedgerEntry) error
}

// Service drives the order state machine.
type Service struct {
	orders   OrderStore
	invoices InvoiceWriter
	ledgers  LedgerStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the order service.
func NewService(orders OrderStore, invoices InvoiceWriter, ledgers LedgerStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, invoices: invoices, ledgers: ledgers, logger: logger, now: time.Now}
}

// Create opens an order in progress with its full quantity remaining and a
// fresh sales ledger linked to it.
func (s *Service) Create(ctx context.Context, o models.Order) (models.Order, error) {
	switch {
	case o.CreatedBy == "":
		return models.Order{}, fmt.Errorf("%w: missing tenant id", models.ErrValidation)
	case o.ProductID == "":
		return models.Order{}, fmt.Errorf("%w: missing product id", models.ErrValidation)
	case o.QuantityOrdered <= 0:
		return models.Order{}, fmt.Errorf("%w: quantity ordered must be positive", models.ErrValidation)
	case o.SellingPrice <= 0:
		return models.Order{}, fmt.Errorf("%w: selling price must be positive", models.ErrValidation)
	}

	o.Status = models.OrderInProgress
	o.QuantityDelivered = 0
	o.RemainingQuantity = o.QuantityOrdered
	o.Payments = nil

	created, err := s.orders.Insert(ctx, o)
	if err != nil {
		return models.Order{}, err
	}

	ledger, err := s.ledgers.Insert(ctx, models.SalesLedger{
		CreatedBy:    created.CreatedBy,
		CompanyID:    created.CompanyID,
		OrderID:      created.ID,
		CustomerName: created.CustomerName,
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("create sales ledger: %w", err)
	}

	if err := s.orders.SetSalesLedger(ctx, created.CreatedBy, created.ID, ledger.ID); err != nil {
		return models.Order{}, err
	}
	created.SalesLedgerID = ledger.ID

	return created, nil
}

// List returns the tenant's orders.
func (s *Service) List(ctx context.Context, tenantID string) ([]models.Order, error) {
	return s.orders.FindAll(ctx, tenantID)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, tenantID, id string) (models.Order, error) {
	return s.orders.FindByID(ctx, tenantID, id)
}

// Deliver accumulates one delivery onto the order and issues the delivery
// invoice. The order completes exactly when its remaining quantity reaches
// zero; a delivery exceeding the remainder is rejected outright.
func (s *Service) Deliver(ctx context.Context, tenantID, orderID string, qty float64) (models.Order, models.Invoice, error) {
	if qty <= 0 {
		return models.Order{}, models.Invoice{}, fmt.Errorf("%w: delivery quantity must be positive", models.ErrValidation)
	}

	updated, err := s.orders.ApplyDelivery(ctx, tenantID, orderID, qty)
	if err != nil {
		return models.Order{}, models.Invoice{}, err
	}

	invoice, err := s.issueInvoice(ctx, updated, qty)
	if err != nil {
		return models.Order{}, models.Invoice{}, err
	}

	s.logger.Info("delivery recorded",
		zap.String("tenant_id", tenantID),
		zap.String("order_id", orderID),
		zap.Float64("quantity", qty),
		zap.String("invoice", invoice.Number),
		zap.String("status", string(updated.Status)))

	return updated, invoice, nil
}

// issueInvoice bills one delivery event at the fixed tax rate and accumulates
// the total onto the order's sales ledger.
func (s *Service) issueInvoice(ctx context.Context, o models.Order, qty float64) (models.Invoice, error) {
	subtotal := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(o.SellingPrice))
	tax := subtotal.Mul(decimal.NewFromFloat(models.TaxRate))
	total := subtotal.Add(tax)

	issuedAt := s.now().UTC()
	inv := models.Invoice{
		CreatedBy:         o.CreatedBy,
		CompanyID:         o.CompanyID,
		Number:            invoiceNumber(issuedAt),
		OrderID:           o.ID,
		QuantityDelivered: qty,
		UnitPrice:         o.SellingPrice,
		Subtotal:          round2(subtotal),
		Tax:               round2(tax),
		Total:             round2(total),
		IssuedAt:          issuedAt,
	}

	saved, err := s.invoices.Insert(ctx, inv)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("issue invoice: %w", err)
	}

	if o.SalesLedgerID != "" {
		if err := s.ledgers.AccumulateBilled(ctx, o.CreatedBy, o.SalesLedgerID, saved.Total); err != nil {
			return models.Invoice{}, fmt.Errorf("bill sales ledger: %w", err)
		}
	}

	return saved, nil
}

// RecordPayment appends a payment to the order and its sales ledger.
func (s *Service) RecordPayment(ctx context.Context, tenantID, orderID string, p models.Payment) error {
	if p.Amount <= 0 {
		return fmt.Errorf("%w: payment amount must be positive", models.ErrValidation)
	}
	if p.Date.IsZero() {
		p.Date = s.now().UTC()
	}

	order, err := s.orders.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	if err := s.orders.AppendPayment(ctx, tenantID, orderID, p); err != nil {
		return err
	}

	if order.SalesLedgerID != "" {
		entry := models.LedgerEntry{Amount: p.Amount, Date: p.Date, Reference: orderID}
		if err := s.ledgers.AppendPayment(ctx, tenantID, order.SalesLedgerID, entry); err != nil {
			return fmt.Errorf("ledger payment: %w", err)
		}
	}
	return nil
}

// Cancel stops an order. An untouched order cancels fully; one with
// deliveries already made becomes partially cancelled. Finished orders
// cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, tenantID, orderID string) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if order.Status != models.OrderInProgress {
		return models.Order{}, fmt.Errorf("%w: order is %s", models.ErrValidation, order.Status)
	}

	status := models.OrderFullyCancelled
	if order.QuantityDelivered > 0 {
		status = models.OrderPartiallyCancelled
	}

	if err := s.orders.SetStatus(ctx, tenantID, orderID, status); err != nil {
		return models.Order{}, err
	}
	order.Status = status

	s.logger.Info("order cancelled",
		zap.String("tenant_id", tenantID),
		zap.String("order_id", orderID),
		zap.String("status", string(status)))

	return order, nil
}

// Invoices lists the invoices issued for one order.
func (s *Service) Invoices(ctx context.Context, tenantID, orderID string) ([]models.Invoice, error) {
	return s.invoices.FindByOrder(ctx, tenantID, orderID)
}

// Ledger returns the sales ledger linked to an order.
func (s *Service) Ledger(ctx context.Context, tenantID, orderID string) (models.SalesLedger, error) {
	return s.ledgers.FindByOrder(ctx, tenantID, orderID)
}

// invoiceNumber builds INV-<YYYYMMDD>-<6-char-random>.
func invoiceNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("INV-%s-%s", t.Format("20060102"), suffix)
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
