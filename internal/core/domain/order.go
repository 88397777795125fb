package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderReserved         OrderStatus = "reserved"
	OrderAwaitingShipment OrderStatus = "awaiting_shipment"
	OrderShipped          OrderStatus = "shipped"
	OrderCancelled        OrderStatus = "cancelled"
)

// validOrderTransitions defines the allowed state machine transitions.
var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderReserved:         {OrderAwaitingShipment, OrderCancelled},
	OrderAwaitingShipment: {OrderAwaitingShipment, OrderShipped, OrderCancelled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open reports whether the order still holds reserved stock.
func (s OrderStatus) Open() bool {
	return s == OrderReserved || s == OrderAwaitingShipment
}

// ShippingInfo is the delivery address attached to an order.
type ShippingInfo struct {
	RecipientName string `json:"recipientName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Phone         string `json:"phone"`
}

// OrderLine is a cart line frozen at reservation time together with its unit price.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order is created from a cart once its stock has been reserved.
type Order struct {
	ID        string          `json:"id"`
	OwnerID   int64           `json:"ownerId"`
	Status    OrderStatus     `json:"status"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Shipping  *ShippingInfo   `json:"shipping"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ComputeTotal returns the sum of unit price times quantity over all lines.
func ComputeTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
