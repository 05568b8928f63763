package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CancellableStatuses are the states a customer may cancel from.
var CancellableStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusProcessing}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an admin may move an order from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "stripe"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCashOnDelivery
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderItem is a snapshot of the product taken at purchase time.
type OrderItem struct {
	ProductID string  `json:"product" bson:"product"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Image     string  `json:"image" bson:"image"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
}

type ShippingAddress struct {
	FirstName string `json:"firstName" bson:"firstName" gorm:"size:100"`
	LastName  string `json:"lastName" bson:"lastName" gorm:"size:100"`
	Phone     string `json:"phone" bson:"phone" gorm:"size:40"`
	Street    string `json:"street" bson:"street" gorm:"size:255"`
	City      string `json:"city" bson:"city" gorm:"size:120"`
	ZipCode   string `json:"zipCode" bson:"zipCode" gorm:"size:20"`
	Country   string `json:"country" bson:"country" gorm:"size:80"`
}

// MissingFields lists the required address fields that are blank, in the
// order the client form presents them.
func (a ShippingAddress) MissingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type PaymentInfo struct {
	Method                PaymentMethod `json:"method" bson:"method" gorm:"size:30;index"`
	Status                PaymentStatus `json:"status" bson:"status" gorm:"size:20"`
	StripePaymentIntentID string        `json:"stripePaymentIntentId,omitempty" bson:"stripePaymentIntentId,omitempty" gorm:"size:120;index"`
	PaidAt                *time.Time    `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

type TrackingUpdate struct {
	Status            string     `json:"status" bson:"status"`
	Location          string     `json:"location" bson:"location"`
	Description       string     `json:"description" bson:"description"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty" bson:"estimatedDelivery,omitempty"`
	Timestamp         time.Time  `json:"timestamp" bson:"timestamp"`
}

type Order struct {
	ID              string           `json:"_id" bson:"_id" gorm:"primaryKey;size:36"`
	OrderNumber     string           `json:"orderNumber" bson:"orderNumber" gorm:"size:32;uniqueIndex"`
	UserID          string           `json:"user" bson:"user" gorm:"size:36;index"`
	Items           []OrderItem      `json:"items" bson:"items" gorm:"type:text;serializer:json"`
	Subtotal        float64          `json:"subtotal" bson:"subtotal" gorm:"type:decimal(12,2)"`
	Tax             float64          `json:"tax" bson:"tax" gorm:"type:decimal(12,2)"`
	ShippingCost    float64          `json:"shippingCost" bson:"shippingCost" gorm:"type:decimal(12,2)"`
	Total           float64          `json:"total" bson:"total" gorm:"type:decimal(12,2)"`
	ShippingAddress ShippingAddress  `json:"shippingAddress" bson:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentInfo     PaymentInfo      `json:"paymentInfo" bson:"paymentInfo" gorm:"embedded;embeddedPrefix:payment_"`
	Status          OrderStatus      `json:"status" bson:"status" gorm:"size:20;index"`
	TrackingUpdates []TrackingUpdate `json:"trackingUpdates" bson:"trackingUpdates" gorm:"type:text;serializer:json"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updatedAt"`
}

func (o *Order) OwnedBy(userID string) bool { return o.UserID == userID }

// OrderNumber formats the human readable order number, e.g. ORD-2026-000042.
func OrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%d-%06d", year, seq)
}

// OrderSequenceName is the counter that numbers the orders of one year.
func OrderSequenceName(year int) string {
	return fmt.Sprintf("order-%d", year)
}
