package infra

import (
	"context"
	"io"
	"time"
)

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// WebhookEvent is a verified payment provider event reduced to what order
// reconciliation needs.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

type PaymentGatewayInterface interface {
	// CreatePaymentIntent charges amount in major currency units.
	CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string) (*PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) error
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type UploadedImage struct {
	URL      string
	PublicID string
}

type ImageGatewayInterface interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}

type CacheInterface interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// SetNX stores key only if absent and reports whether it did.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
