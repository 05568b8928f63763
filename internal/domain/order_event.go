package domain

import "time"

// Routing keys of the events published on the order exchange.
const (
	EventOrderCreated       = "order.created"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusUpdated = "order.status_updated"
	EventPaymentCompleted   = "payment.completed"
	EventPaymentFailed      = "payment.failed"
)

type OrderEvent struct {
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	UserID        string        `json:"userId"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Total         float64       `json:"total"`
	OccurredAt    time.Time     `json:"occurredAt"`
}

func NewOrderEvent(o *Order) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentInfo.Status,
		Total:         o.Total,
		OccurredAt:    time.Now(),
	}
}
