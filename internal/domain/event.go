package domain

import "time"

// CheckoutEventType определяет тип события checkout.
type CheckoutEventType string

const (
	EventOrderCreated     CheckoutEventType = "order.created"
	EventCaptureSucceeded CheckoutEventType = "capture.succeeded"
	EventCaptureFailed    CheckoutEventType = "capture.failed"
	EventDeeplinkBounced  CheckoutEventType = "deeplink.bounced"
)

// CheckoutEvent - диагностическое событие по одному Order Reference.
type CheckoutEvent struct {
	Type      CheckoutEventType `json:"event_type"`
	OrderID   string            `json:"order_id"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// NewCheckoutEvent создаёт событие с текущим временем.
func NewCheckoutEvent(eventType CheckoutEventType, orderID string, metadata map[string]any) CheckoutEvent {
	return CheckoutEvent{
		Type:      eventType,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}
