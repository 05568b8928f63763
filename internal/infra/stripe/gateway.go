package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"greenmart/internal/infra"
)

var ErrNotConfigured = errors.New("stripe is not configured")

type Gateway struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewGateway(secretKey, webhookSecret, currency string) *Gateway {
	g := &Gateway{webhookSecret: webhookSecret, currency: currency}
	if secretKey != "" {
		g.api = client.New(secretKey, nil)
	}
	return g
}

// MinorUnits converts an amount in major units to the provider's integer
// minor units, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string) (*infra.PaymentIntent, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(MinorUnits(amount)),
		Currency: stripeapi.String(g.currency),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &infra.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *Gateway) CancelPaymentIntent(ctx context.Context, id string) error {
	if g.api == nil {
		return ErrNotConfigured
	}
	params := &stripeapi.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.api.PaymentIntents.Cancel(id, params); err != nil {
		return fmt.Errorf("cancel payment intent %s: %w", id, err)
	}
	return nil
}

// ParseWebhook verifies the Stripe-Signature header against the raw body and
// extracts the payment intent the event refers to.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*infra.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &infra.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil && len(event.Data.Raw) > 0 {
		var obj struct {
			ID     string `json:"id"`
			Object string `json:"object"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("decode event object: %w", err)
		}
		if obj.Object == "payment_intent" {
			out.PaymentIntentID = obj.ID
		}
	}
	return out, nil
}

var _ infra.PaymentGatewayInterface = (*Gateway)(nil)
