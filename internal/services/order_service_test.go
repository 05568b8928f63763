package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"greenmart/internal/domain"
	"greenmart/internal/infra"
	"greenmart/internal/mocks"
)

type orderMocks struct {
	orders    *mocks.MockOrderRepository
	products  *mocks.MockProductRepository
	carts     *mocks.MockCartRepository
	sequences *mocks.MockSequenceRepository
	payments  *mocks.MockPaymentGateway
	publisher *mocks.MockPublisher
}

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newOrderMocks() *orderMocks {
	m := &orderMocks{
		orders:    new(mocks.MockOrderRepository),
		products:  new(mocks.MockProductRepository),
		carts:     new(mocks.MockCartRepository),
		sequences: new(mocks.MockSequenceRepository),
		payments:  new(mocks.MockPaymentGateway),
		publisher: new(mocks.MockPublisher),
	}
	m.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func (m *orderMocks) service() *OrderService {
	svc := NewOrderService(m.orders, m.products, m.carts, m.sequences, m.payments, m.publisher)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (m *orderMocks) assertExpectations(t *testing.T) {
	m.orders.AssertExpectations(t)
	m.products.AssertExpectations(t)
	m.carts.AssertExpectations(t)
	m.sequences.AssertExpectations(t)
	m.payments.AssertExpectations(t)
}

func TestOrderService_CreateOrder(t *testing.T) {
	address := testAddress()
	partial := testAddress()
	partial.Phone = ""

	apples := newTestProduct("p1", "Apples", 250, 10)
	milk := newTestProduct("p2", "Milk", 120.5, 1)
	cartItems := []domain.CartItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

	tests := []struct {
		name          string
		input         CreateOrderInput
		setupMocks    func(*orderMocks)
		expectedError string
		expectedKind  error
		check         func(*testing.T, *CreateOrderResult)
	}{
		{
			name:          "missing shipping address",
			input:         CreateOrderInput{PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks:    func(m *orderMocks) {},
			expectedError: "Please provide shipping address",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:          "incomplete shipping address",
			input:         CreateOrderInput{ShippingAddress: &partial, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks:    func(m *orderMocks) {},
			expectedError: "Missing required fields: phone",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:          "unknown payment method",
			input:         CreateOrderInput{ShippingAddress: &address, PaymentMethod: "paypal"},
			setupMocks:    func(m *orderMocks) {},
			expectedError: "Please provide a valid payment method",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:  "no cart yet",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(nil, nil)
			},
			expectedError: "Cart is empty",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:  "every product was removed",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, domain.CartItem{ProductID: "gone", Quantity: 1}), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"gone"}).Return([]domain.Product{}, nil)
			},
			expectedError: "No valid items in cart. Some products may have been removed.",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:  "inactive product",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				inactive := *apples
				inactive.Status = domain.ProductInactive
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems[0]), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1"}).Return([]domain.Product{inactive}, nil)
			},
			expectedError: "Product Apples is not available",
			expectedKind:  domain.ErrConflict,
		},
		{
			name:  "not enough stock",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, domain.CartItem{ProductID: "p2", Quantity: 3}), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p2"}).Return([]domain.Product{*milk}, nil)
			},
			expectedError: "Insufficient stock for Milk",
			expectedKind:  domain.ErrConflict,
		},
		{
			name:  "stock taken by a concurrent order releases the reservation",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems...), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1", "p2"}).Return([]domain.Product{*apples, *milk}, nil)
				m.products.On("ReserveStock", mock.Anything, "p1", 2).Return(true, nil).Once()
				m.products.On("ReserveStock", mock.Anything, "p2", 1).Return(false, nil).Once()
				m.products.On("AdjustStock", mock.Anything, "p1", 2).Return(true, nil).Once()
			},
			expectedError: "Insufficient stock for Milk",
			expectedKind:  domain.ErrConflict,
		},
		{
			name:  "product deactivated after the cart was read is not sold",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems[0]), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1"}).Return([]domain.Product{*apples}, nil)
				m.products.On("ReserveStock", mock.Anything, "p1", 2).Return(false, nil).Once()
			},
			expectedError: "Insufficient stock for Apples",
			expectedKind:  domain.ErrConflict,
		},
		{
			name:  "payment intent failure gives stock back",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCard},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems[0]), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1"}).Return([]domain.Product{*apples}, nil)
				m.products.On("ReserveStock", mock.Anything, "p1", 2).Return(true, nil).Once()
				m.sequences.On("Next", mock.Anything, "order-2026").Return(int64(7), nil)
				m.payments.On("CreatePaymentIntent", mock.Anything, 500.0, mock.Anything).Return(nil, errors.New("card network down"))
				m.products.On("AdjustStock", mock.Anything, "p1", 2).Return(true, nil).Once()
			},
			expectedError: "card network down",
		},
		{
			name:  "failed insert cancels the payment intent",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCard},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems[0]), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1"}).Return([]domain.Product{*apples}, nil)
				m.products.On("ReserveStock", mock.Anything, "p1", 2).Return(true, nil).Once()
				m.sequences.On("Next", mock.Anything, "order-2026").Return(int64(7), nil)
				m.payments.On("CreatePaymentIntent", mock.Anything, 500.0, mock.Anything).Return(&infra.PaymentIntent{ID: testIntentID, ClientSecret: "secret"}, nil)
				m.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(errors.New("database error"))
				m.products.On("AdjustStock", mock.Anything, "p1", 2).Return(true, nil).Once()
				m.payments.On("CancelPaymentIntent", mock.Anything, testIntentID).Return(nil)
			},
			expectedError: "database error",
		},
		{
			name:  "cash on delivery order",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCashOnDelivery},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems...), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1", "p2"}).Return([]domain.Product{*apples, *milk}, nil)
				m.products.On("ReserveStock", mock.Anything, "p1", 2).Return(true, nil)
				m.products.On("ReserveStock", mock.Anything, "p2", 1).Return(true, nil)
				m.sequences.On("Next", mock.Anything, "order-2026").Return(int64(42), nil)
				m.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				m.carts.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
					return len(c.Items) == 0
				})).Return(nil)
			},
			check: func(t *testing.T, res *CreateOrderResult) {
				assert.Nil(t, res.ClientSecret)
				o := res.Order
				assert.Equal(t, "ORD-2026-000042", o.OrderNumber)
				assert.Equal(t, testUserID, o.UserID)
				assert.Equal(t, domain.StatusPending, o.Status)
				assert.Equal(t, domain.PaymentPending, o.PaymentInfo.Status)
				assert.Empty(t, o.PaymentInfo.StripePaymentIntentID)
				assert.Len(t, o.Items, 2)
				assert.Equal(t, 500.0, o.Items[0].Subtotal)
				assert.Equal(t, "https://img/p1.jpg", o.Items[0].Image)
				assert.Equal(t, 620.5, o.Subtotal)
				assert.Equal(t, 620.5, o.Total)
				assert.NotNil(t, o.TrackingUpdates)
			},
		},
		{
			name:  "card order drops removed products and returns the client secret",
			input: CreateOrderInput{ShippingAddress: &address, PaymentMethod: domain.PaymentCard},
			setupMocks: func(m *orderMocks) {
				m.carts.On("FindByUser", mock.Anything, testUserID).Return(newTestCart(testUserID, cartItems[0], domain.CartItem{ProductID: "gone", Quantity: 1}), nil)
				m.products.On("FindByIDs", mock.Anything, []string{"p1", "gone"}).Return([]domain.Product{*apples}, nil)
				m.carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil).Twice()
				m.products.On("ReserveStock", mock.Anything, "p1", 2).Return(true, nil)
				m.sequences.On("Next", mock.Anything, "order-2026").Return(int64(1), nil)
				m.payments.On("CreatePaymentIntent", mock.Anything, 500.0, map[string]string{
					"orderNumber": "ORD-2026-000001",
					"userId":      testUserID,
				}).Return(&infra.PaymentIntent{ID: testIntentID, ClientSecret: "pi_123_secret"}, nil)
				m.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
			},
			check: func(t *testing.T, res *CreateOrderResult) {
				if assert.NotNil(t, res.ClientSecret) {
					assert.Equal(t, "pi_123_secret", *res.ClientSecret)
				}
				assert.Equal(t, testIntentID, res.Order.PaymentInfo.StripePaymentIntentID)
				assert.Equal(t, domain.PaymentCard, res.Order.PaymentInfo.Method)
				assert.Len(t, res.Order.Items, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newOrderMocks()
			tt.setupMocks(m)

			result, err := m.service().CreateOrder(context.Background(), testUserID, tt.input)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				if tt.expectedKind != nil {
					assert.ErrorIs(t, err, tt.expectedKind)
				}
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				if assert.NotNil(t, result) {
					tt.check(t, result)
				}
			}

			m.assertExpectations(t)
		})
	}
}

func TestOrderService_Get(t *testing.T) {
	order := newTestOrder(testOrderID, domain.StatusPending, domain.PaymentCashOnDelivery)

	tests := []struct {
		name         string
		user         *domain.User
		found        *domain.Order
		expectedKind error
	}{
		{"owner sees the order", testUser(testUserID, domain.RoleCustomer), order, nil},
		{"admin sees any order", testUser(testAdminID, domain.RoleAdmin), order, nil},
		{"other customer is refused", testUser("user-2", domain.RoleCustomer), order, domain.ErrForbidden},
		{"unknown order", testUser(testUserID, domain.RoleCustomer), nil, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newOrderMocks()
			if tt.found != nil {
				m.orders.On("FindByID", mock.Anything, testOrderID).Return(tt.found, nil)
			} else {
				m.orders.On("FindByID", mock.Anything, testOrderID).Return(nil, nil)
			}

			result, err := m.service().Get(context.Background(), tt.user, testOrderID)

			if tt.expectedKind != nil {
				assert.ErrorIs(t, err, tt.expectedKind)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, testOrderID, result.ID)
			}
		})
	}
}

func TestOrderService_ListAll(t *testing.T) {
	m := newOrderMocks()
	orders := []domain.Order{*newTestOrder(testOrderID, domain.StatusPending, domain.PaymentCard)}
	m.orders.On("List", mock.Anything, 1, 100).Return(orders, int64(250), nil)

	page, err := m.service().ListAll(context.Background(), 0, 500)

	assert.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, int64(250), page.Total)
	assert.Equal(t, 3, page.Pages())
	m.assertExpectations(t)
}

func TestOrderService_Cancel(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		order         *domain.Order
		setupMocks    func(*orderMocks)
		expectedError string
		expectedKind  error
	}{
		{
			name:          "other customer's order",
			userID:        "user-2",
			order:         newTestOrder(testOrderID, domain.StatusPending, domain.PaymentCashOnDelivery),
			setupMocks:    func(m *orderMocks) {},
			expectedError: "Not authorized to cancel this order",
			expectedKind:  domain.ErrForbidden,
		},
		{
			name:          "delivered order",
			userID:        testUserID,
			order:         newTestOrder(testOrderID, domain.StatusDelivered, domain.PaymentCashOnDelivery),
			setupMocks:    func(m *orderMocks) {},
			expectedError: "Cannot cancel this order",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:   "concurrent cancel already won",
			userID: testUserID,
			order:  newTestOrder(testOrderID, domain.StatusPending, domain.PaymentCashOnDelivery),
			setupMocks: func(m *orderMocks) {
				m.orders.On("TransitionStatus", mock.Anything, testOrderID, domain.CancellableStatuses, domain.StatusCancelled).Return(false, nil)
			},
			expectedError: "Cannot cancel this order",
			expectedKind:  domain.ErrValidation,
		},
		{
			name:   "cash order restores stock",
			userID: testUserID,
			order:  newTestOrder(testOrderID, domain.StatusConfirmed, domain.PaymentCashOnDelivery),
			setupMocks: func(m *orderMocks) {
				m.orders.On("TransitionStatus", mock.Anything, testOrderID, domain.CancellableStatuses, domain.StatusCancelled).Return(true, nil)
				m.products.On("AdjustStock", mock.Anything, testProductID, 2).Return(true, nil)
			},
		},
		{
			name:   "pending card order also cancels the intent",
			userID: testUserID,
			order:  newTestOrder(testOrderID, domain.StatusPending, domain.PaymentCard),
			setupMocks: func(m *orderMocks) {
				m.orders.On("TransitionStatus", mock.Anything, testOrderID, domain.CancellableStatuses, domain.StatusCancelled).Return(true, nil)
				m.products.On("AdjustStock", mock.Anything, testProductID, 2).Return(true, nil)
				m.payments.On("CancelPaymentIntent", mock.Anything, testIntentID).Return(errors.New("already canceled"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newOrderMocks()
			m.orders.On("FindByID", mock.Anything, testOrderID).Return(tt.order, nil)
			tt.setupMocks(m)

			result, err := m.service().Cancel(context.Background(), tt.userID, testOrderID)

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.ErrorIs(t, err, tt.expectedKind)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.StatusCancelled, result.Status)
			}

			m.assertExpectations(t)
		})
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name          string
		current       domain.OrderStatus
		target        domain.OrderStatus
		setupMocks    func(*orderMocks)
		expectedError string
	}{
		{
			name:          "status is required",
			current:       domain.StatusPending,
			target:        "",
			expectedError: "Please provide status",
		},
		{
			name:          "unknown status",
			current:       domain.StatusPending,
			target:        "shipped",
			expectedError: "Invalid order status shipped",
		},
		{
			name:          "skipping ahead is refused",
			current:       domain.StatusPending,
			target:        domain.StatusDelivered,
			expectedError: "Cannot change order status from pending to delivered",
		},
		{
			name:          "terminal order is frozen",
			current:       domain.StatusCancelled,
			target:        domain.StatusConfirmed,
			expectedError: "Cannot change order status from cancelled to confirmed",
		},
		{
			name:    "same status is a no-op",
			current: domain.StatusProcessing,
			target:  domain.StatusProcessing,
		},
		{
			name:    "forward transition",
			current: domain.StatusConfirmed,
			target:  domain.StatusProcessing,
			setupMocks: func(m *orderMocks) {
				m.orders.On("TransitionStatus", mock.Anything, testOrderID, []domain.OrderStatus{domain.StatusConfirmed}, domain.StatusProcessing).Return(true, nil)
			},
		},
		{
			name:    "admin cancellation restores stock",
			current: domain.StatusProcessing,
			target:  domain.StatusCancelled,
			setupMocks: func(m *orderMocks) {
				m.orders.On("TransitionStatus", mock.Anything, testOrderID, []domain.OrderStatus{domain.StatusProcessing}, domain.StatusCancelled).Return(true, nil)
				m.products.On("AdjustStock", mock.Anything, testProductID, 2).Return(true, nil)
			},
		},
		{
			name:    "status changed underneath",
			current: domain.StatusConfirmed,
			target:  domain.StatusProcessing,
			setupMocks: func(m *orderMocks) {
				m.orders.On("TransitionStatus", mock.Anything, testOrderID, []domain.OrderStatus{domain.StatusConfirmed}, domain.StatusProcessing).Return(false, nil)
			},
			expectedError: "Order status was changed by someone else, please retry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newOrderMocks()
			m.orders.On("FindByID", mock.Anything, testOrderID).Return(newTestOrder(testOrderID, tt.current, domain.PaymentCashOnDelivery), nil).Maybe()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			result, err := m.service().UpdateStatus(context.Background(), testOrderID, tt.target)

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.target, result.Status)
			}

			m.assertExpectations(t)
		})
	}
}

func TestOrderService_AddTracking(t *testing.T) {
	t.Run("status is required", func(t *testing.T) {
		m := newOrderMocks()
		_, err := m.service().AddTracking(context.Background(), testOrderID, TrackingInput{Location: "Colombo"})
		assert.EqualError(t, err, "Please provide tracking status")
	})

	t.Run("appends an update and returns the fresh order", func(t *testing.T) {
		m := newOrderMocks()
		tracked := newTestOrder(testOrderID, domain.StatusProcessing, domain.PaymentCashOnDelivery)
		tracked.TrackingUpdates = []domain.TrackingUpdate{{Status: "Dispatched", Timestamp: fixedNow}}

		m.orders.On("FindByID", mock.Anything, testOrderID).Return(newTestOrder(testOrderID, domain.StatusProcessing, domain.PaymentCashOnDelivery), nil).Once()
		m.orders.On("AddTrackingUpdate", mock.Anything, testOrderID, domain.TrackingUpdate{
			Status:      "Dispatched",
			Location:    "Colombo hub",
			Description: "Left the warehouse",
			Timestamp:   fixedNow,
		}).Return(nil)
		m.orders.On("FindByID", mock.Anything, testOrderID).Return(tracked, nil).Once()

		result, err := m.service().AddTracking(context.Background(), testOrderID, TrackingInput{
			Status:      " Dispatched ",
			Location:    "Colombo hub",
			Description: "Left the warehouse",
		})

		assert.NoError(t, err)
		assert.Len(t, result.TrackingUpdates, 1)
		m.assertExpectations(t)
	})

	t.Run("unknown order", func(t *testing.T) {
		m := newOrderMocks()
		m.orders.On("FindByID", mock.Anything, testOrderID).Return(nil, nil)
		_, err := m.service().AddTracking(context.Background(), testOrderID, TrackingInput{Status: "Dispatched"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
