package services

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"

	"greenmart/internal/domain"
	"greenmart/internal/infra"
	rabbit "greenmart/internal/infra/rabbitmq"
	"greenmart/internal/repository"
)

const webhookDedupeTTL = 24 * time.Hour

// SignatureError is returned when a webhook payload cannot be verified.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string { return e.Reason }

type PaymentService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	payments  infra.PaymentGatewayInterface
	cache     infra.CacheInterface
	publisher rabbit.PublisherInterface
	now       func() time.Time
}

func NewPaymentService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	payments infra.PaymentGatewayInterface,
	cache infra.CacheInterface,
	pub rabbit.PublisherInterface,
) *PaymentService {
	return &PaymentService{
		orders:    orders,
		products:  products,
		payments:  payments,
		cache:     cache,
		publisher: pub,
		now:       time.Now,
	}
}

// CreateIntent creates a standalone payment intent for the given amount.
func (s *PaymentService) CreateIntent(ctx context.Context, amount float64, metadata map[string]string) (*infra.PaymentIntent, error) {
	if amount <= 0 {
		return nil, domain.Validation("Invalid amount")
	}
	intent, err := s.payments.CreatePaymentIntent(ctx, amount, metadata)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return intent, nil
}

// HandleWebhook verifies and applies a payment provider event. Deliveries
// already handled are acknowledged without touching the order again.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return &SignatureError{Reason: err.Error()}
	}

	key := "webhook:" + evt.ID
	if evt.ID != "" {
		fresh, err := s.cache.SetNX(ctx, key, webhookDedupeTTL)
		if err != nil {
			zlog.Warn().Err(err).Str("event", evt.ID).Msg("webhook dedupe unavailable")
		} else if !fresh {
			zlog.Info().Str("event", evt.ID).Msg("duplicate webhook delivery ignored")
			return nil
		}
	}

	switch evt.Type {
	case infra.EventPaymentIntentSucceeded:
		err = s.paymentSucceeded(ctx, evt.PaymentIntentID)
	case infra.EventPaymentIntentFailed:
		err = s.paymentFailed(ctx, evt.PaymentIntentID)
	default:
		zlog.Debug().Str("type", evt.Type).Msg("unhandled webhook event")
	}

	if err != nil && evt.ID != "" {
		if derr := s.cache.Delete(context.WithoutCancel(ctx), key); derr != nil {
			zlog.Warn().Err(derr).Str("event", evt.ID).Msg("failed to release webhook dedupe key")
		}
	}
	return err
}

func (s *PaymentService) paymentSucceeded(ctx context.Context, intentID string) error {
	o, err := s.orderForIntent(ctx, intentID)
	if err != nil || o == nil {
		return err
	}

	if _, err := s.orders.TransitionStatus(ctx, o.ID, []domain.OrderStatus{domain.StatusPending}, domain.StatusConfirmed); err != nil {
		return err
	}
	fresh, err := s.orders.FindByID(ctx, o.ID)
	if err != nil {
		return err
	}
	if fresh != nil {
		o = fresh
	}
	if o.Status == domain.StatusCancelled {
		zlog.Warn().Str("order", o.OrderNumber).Msg("payment succeeded for a cancelled order")
	}

	paidAt := s.now()
	o.PaymentInfo.Status = domain.PaymentCompleted
	o.PaymentInfo.PaidAt = &paidAt
	if err := s.orders.UpdatePayment(ctx, o.ID, o.PaymentInfo, ""); err != nil {
		return err
	}

	zlog.Info().Str("order", o.OrderNumber).Msg("payment completed")
	go publishOrderEvent(s.publisher, domain.EventPaymentCompleted, o)
	return nil
}

// paymentFailed marks the payment failed and cancels the order. A failure
// that arrives after the payment completed, out of order or replayed, is
// ignored so a paid order is never flipped back.
func (s *PaymentService) paymentFailed(ctx context.Context, intentID string) error {
	o, err := s.orderForIntent(ctx, intentID)
	if err != nil || o == nil {
		return err
	}

	marked, err := s.orders.MarkPaymentFailed(ctx, o.ID)
	if err != nil {
		return err
	}
	if !marked {
		zlog.Warn().Str("order", o.OrderNumber).Msg("payment failure ignored, payment already completed")
		return nil
	}
	o.PaymentInfo.Status = domain.PaymentFailed

	cancelled, err := s.orders.TransitionStatus(ctx, o.ID, domain.CancellableStatuses, domain.StatusCancelled)
	if err != nil {
		return err
	}
	if cancelled {
		o.Status = domain.StatusCancelled
		restoreStock(context.WithoutCancel(ctx), s.products, o.Items, o.OrderNumber)
	}

	zlog.Info().Str("order", o.OrderNumber).Bool("cancelled", cancelled).Msg("payment failed")
	go publishOrderEvent(s.publisher, domain.EventPaymentFailed, o)
	return nil
}

func (s *PaymentService) orderForIntent(ctx context.Context, intentID string) (*domain.Order, error) {
	if intentID == "" {
		return nil, nil
	}
	o, err := s.orders.FindByPaymentIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		zlog.Warn().Str("payment_intent", intentID).Msg("no order for payment intent")
	}
	return o, nil
}
