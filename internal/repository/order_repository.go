package repository

import (
	"context"

	"greenmart/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, page, limit int) ([]domain.Order, int64, error)

	// TransitionStatus moves the order to status `to` only when its current
	// status is one of `from`. It reports false when no order matched.
	TransitionStatus(ctx context.Context, id string, from []domain.OrderStatus, to domain.OrderStatus) (bool, error)

	// UpdatePayment stores the payment info, and the order status too unless
	// status is empty.
	UpdatePayment(ctx context.Context, id string, payment domain.PaymentInfo, status domain.OrderStatus) error
	AddTrackingUpdate(ctx context.Context, id string, update domain.TrackingUpdate) error

	// MarkPaymentFailed sets the payment status to failed unless the payment
	// has already completed. It reports whether the order was written.
	MarkPaymentFailed(ctx context.Context, id string) (bool, error)
}

// SequenceRepository hands out monotonically increasing numbers per name.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
