package services

import (
	"time"

	"greenmart/internal/domain"
)

const (
	testUserID    = "user-1"
	testAdminID   = "admin-1"
	testProductID = "prod-1"
	testOrderID   = "order-1"
	testIntentID  = "pi_123"
)

func newTestProduct(id, name string, price float64, qty int) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Slug:     domain.Slugify(name),
		Price:    price,
		Quantity: qty,
		Status:   domain.ProductActive,
		Images:   []domain.Image{{URL: "https://img/" + id + ".jpg", PublicID: id, IsPrimary: true}},
	}
}

func newTestCart(userID string, items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{ID: "cart-" + userID, UserID: userID, Items: items}
}

func newTestOrder(id string, status domain.OrderStatus, method domain.PaymentMethod) *domain.Order {
	o := &domain.Order{
		ID:          id,
		OrderNumber: "ORD-2026-000001",
		UserID:      testUserID,
		Items: []domain.OrderItem{
			{ProductID: testProductID, Name: "Apples", Price: 250, Quantity: 2, Subtotal: 500},
		},
		Subtotal:        500,
		Total:           500,
		ShippingAddress: testAddress(),
		PaymentInfo:     domain.PaymentInfo{Method: method, Status: domain.PaymentPending},
		Status:          status,
		TrackingUpdates: []domain.TrackingUpdate{},
		CreatedAt:       time.Now(),
	}
	if method == domain.PaymentCard {
		o.PaymentInfo.StripePaymentIntentID = testIntentID
	}
	return o
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName: "Nimal",
		LastName:  "Perera",
		Phone:     "0771234567",
		Street:    "12 Galle Rd",
		City:      "Colombo",
		ZipCode:   "00300",
		Country:   "Sri Lanka",
	}
}

func testUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Email: id + "@greenmart.test", Role: role, IsActive: true}
}
