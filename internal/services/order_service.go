package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"greenmart/internal/domain"
	"greenmart/internal/infra"
	rabbit "greenmart/internal/infra/rabbitmq"
	"greenmart/internal/repository"
)

const (
	defaultOrderLimit = 20
	maxOrderLimit     = 100
)

type CreateOrderInput struct {
	ShippingAddress *domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
}

type CreateOrderResult struct {
	Order        *domain.Order `json:"order"`
	ClientSecret *string       `json:"clientSecret"`
}

type TrackingInput struct {
	Status            string
	Location          string
	Description       string
	EstimatedDelivery *time.Time
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	sequences repository.SequenceRepository
	payments  infra.PaymentGatewayInterface
	publisher rabbit.PublisherInterface
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	sequences repository.SequenceRepository,
	payments infra.PaymentGatewayInterface,
	pub rabbit.PublisherInterface,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		carts:     carts,
		sequences: sequences,
		payments:  payments,
		publisher: pub,
		now:       time.Now,
	}
}

// CreateOrder turns the user's cart into an order. Every cart line is
// validated before anything is written; stock is then reserved with
// conditional decrements and every later failure gives the reservations
// back and cancels a created payment intent.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*CreateOrderResult, error) {
	if in.ShippingAddress == nil {
		return nil, domain.Validation("Please provide shipping address")
	}
	if missing := in.ShippingAddress.MissingFields(); len(missing) > 0 {
		return nil, domain.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if !in.PaymentMethod.Valid() {
		return nil, domain.Validation("Please provide a valid payment method")
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, domain.Validation("Cart is empty")
	}

	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	valid := make([]domain.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		if _, ok := byID[it.ProductID]; ok {
			valid = append(valid, it)
		}
	}
	if len(valid) == 0 {
		return nil, domain.Validation("No valid items in cart. Some products may have been removed.")
	}
	if len(valid) != len(cart.Items) {
		cart.Items = valid
		cart.UpdatedAt = s.now()
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	subtotal := decimal.Zero
	for _, it := range cart.Items {
		p := byID[it.ProductID]
		if p.Status != domain.ProductActive {
			return nil, domain.Conflict("Product %s is not available", p.Name)
		}
		if p.Quantity < it.Quantity {
			return nil, domain.Conflict("Insufficient stock for %s", p.Name)
		}
		line := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Image:     p.PrimaryImage(),
			Subtotal:  line.InexactFloat64(),
		})
		subtotal = subtotal.Add(line)
	}
	tax, shipping := decimal.Zero, decimal.Zero
	total := subtotal.Add(tax).Add(shipping)

	reserved, err := s.reserve(ctx, items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	seq, err := s.sequences.Next(ctx, domain.OrderSequenceName(now.Year()))
	if err != nil {
		s.rollback(ctx, reserved, "")
		return nil, fmt.Errorf("next order number: %w", err)
	}
	orderNumber := domain.OrderNumber(now.Year(), seq)

	payment := domain.PaymentInfo{Method: in.PaymentMethod, Status: domain.PaymentPending}
	var clientSecret *string
	if in.PaymentMethod == domain.PaymentCard {
		intent, err := s.payments.CreatePaymentIntent(ctx, total.InexactFloat64(), map[string]string{
			"orderNumber": orderNumber,
			"userId":      userID,
		})
		if err != nil {
			s.rollback(ctx, reserved, "")
			return nil, fmt.Errorf("create payment intent: %w", err)
		}
		payment.StripePaymentIntentID = intent.ID
		clientSecret = &intent.ClientSecret
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     orderNumber,
		UserID:          userID,
		Items:           items,
		Subtotal:        subtotal.InexactFloat64(),
		Tax:             tax.InexactFloat64(),
		ShippingCost:    shipping.InexactFloat64(),
		Total:           total.InexactFloat64(),
		ShippingAddress: *in.ShippingAddress,
		PaymentInfo:     payment,
		Status:          domain.StatusPending,
		TrackingUpdates: []domain.TrackingUpdate{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.rollback(ctx, reserved, payment.StripePaymentIntentID)
		return nil, fmt.Errorf("create order: %w", err)
	}

	cart.Items = []domain.CartItem{}
	cart.UpdatedAt = now
	if err := s.carts.Save(ctx, cart); err != nil {
		zlog.Warn().Err(err).Str("order", order.OrderNumber).Msg("order placed but cart not cleared")
	}

	go publishOrderEvent(s.publisher, domain.EventOrderCreated, order)

	return &CreateOrderResult{Order: order, ClientSecret: clientSecret}, nil
}

// reserve takes stock item by item. A reservation that finds too little
// stock, or a product deactivated since it was read, fails and everything
// reserved so far is released.
func (s *OrderService) reserve(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	reserved := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		ok, err := s.products.ReserveStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			s.rollback(ctx, reserved, "")
			return nil, fmt.Errorf("reserve stock for %s: %w", it.Name, err)
		}
		if !ok {
			s.rollback(ctx, reserved, "")
			return nil, domain.Conflict("Insufficient stock for %s", it.Name)
		}
		reserved = append(reserved, it)
	}
	return reserved, nil
}

func (s *OrderService) rollback(ctx context.Context, reserved []domain.OrderItem, intentID string) {
	ctx = context.WithoutCancel(ctx)
	restoreStock(ctx, s.products, reserved, "unplaced order")
	if intentID != "" {
		if err := s.payments.CancelPaymentIntent(ctx, intentID); err != nil {
			zlog.Error().Err(err).Str("payment_intent", intentID).Msg("failed to cancel payment intent")
		}
	}
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context, page, limit int) (*Page[domain.Order], error) {
	page, limit = normalizePage(page, limit, defaultOrderLimit, maxOrderLimit)
	orders, total, err := s.orders.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &Page[domain.Order]{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

// Get returns the order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, user *domain.User, id string) (*domain.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(user.ID) && !user.IsAdmin() {
		return nil, domain.Forbidden("Not authorized to view this order")
	}
	return o, nil
}

// Cancel lets the owner cancel a pending, confirmed or processing order.
// The status change is conditional so two concurrent cancels restore the
// stock once.
func (s *OrderService) Cancel(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(userID) {
		return nil, domain.Forbidden("Not authorized to cancel this order")
	}
	if o.Status.Terminal() {
		return nil, domain.Validation("Cannot cancel this order")
	}

	ok, err := s.orders.TransitionStatus(ctx, id, domain.CancellableStatuses, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Validation("Cannot cancel this order")
	}
	o.Status = domain.StatusCancelled
	o.UpdatedAt = s.now()

	s.afterCancel(ctx, o)
	go publishOrderEvent(s.publisher, domain.EventOrderCancelled, o)
	return o, nil
}

// UpdateStatus is the admin status change, restricted to the forward
// transitions and cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if status == "" {
		return nil, domain.Validation("Please provide status")
	}
	if !status.Valid() {
		return nil, domain.Validation("Invalid order status %s", status)
	}
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return o, nil
	}
	if !domain.CanTransition(o.Status, status) {
		return nil, domain.Validation("Cannot change order status from %s to %s", o.Status, status)
	}

	ok, err := s.orders.TransitionStatus(ctx, id, []domain.OrderStatus{o.Status}, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Conflict("Order status was changed by someone else, please retry")
	}
	o.Status = status
	o.UpdatedAt = s.now()

	key := domain.EventOrderStatusUpdated
	if status == domain.StatusCancelled {
		s.afterCancel(ctx, o)
		key = domain.EventOrderCancelled
	}
	go publishOrderEvent(s.publisher, key, o)
	return o, nil
}

func (s *OrderService) AddTracking(ctx context.Context, id string, in TrackingInput) (*domain.Order, error) {
	if strings.TrimSpace(in.Status) == "" {
		return nil, domain.Validation("Please provide tracking status")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	update := domain.TrackingUpdate{
		Status:            strings.TrimSpace(in.Status),
		Location:          strings.TrimSpace(in.Location),
		Description:       strings.TrimSpace(in.Description),
		EstimatedDelivery: in.EstimatedDelivery,
		Timestamp:         s.now(),
	}
	if err := s.orders.AddTrackingUpdate(ctx, id, update); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// afterCancel gives the stock back and drops a card payment nobody will
// complete any more.
func (s *OrderService) afterCancel(ctx context.Context, o *domain.Order) {
	restoreStock(ctx, s.products, o.Items, o.OrderNumber)

	p := o.PaymentInfo
	if p.Method == domain.PaymentCard && p.Status == domain.PaymentPending && p.StripePaymentIntentID != "" {
		if err := s.payments.CancelPaymentIntent(ctx, p.StripePaymentIntentID); err != nil {
			zlog.Warn().Err(err).Str("order", o.OrderNumber).Msg("failed to cancel payment intent")
		}
	}
}

func (s *OrderService) find(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("Order not found")
	}
	return o, nil
}
