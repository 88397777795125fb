package domain

import "time"

// Event topics published by the gateway.
const (
	EventCartLineSet           = "cart.line_set"
	EventCartDeleted           = "cart.deleted"
	EventOrderReserved         = "order.reserved"
	EventOrderShippingAttached = "order.shipping_attached"
	EventOrderShipped          = "order.shipped"
	EventOrderCancelled        = "order.cancelled"
)

// Event is a domain fact emitted after a state change. Key identifies the
// aggregate; events sharing a key are delivered in order.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}
