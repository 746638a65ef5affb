package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"voiceguide-backend/internal/config"
)

var (
	ErrStripeNotConfigured  = errors.New("stripe: STRIPE_SECRET_KEY not configured")
	ErrWebhookSecretMissing = errors.New("stripe: STRIPE_WEBHOOK_SECRET not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)

type CheckoutSessionRequest struct {
	OrderID       uint
	AmountCents   int64
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// StripeSession is the subset of a Checkout Session object the webhook reads.
type StripeSession struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   *int64            `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type StripeEvent struct {
	ID      string
	Type    string
	Session *StripeSession
}

type StripeGateway interface {
	Enabled() bool
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*StripeEvent, error)
}

type stripeClientImpl struct {
	cfg      config.Stripe
	sessions *session.Client
}

func NewStripeClient(cfg *config.Stripe) StripeGateway {
	return &stripeClientImpl{
		cfg: *cfg,
		sessions: &session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.SecretKey,
		},
	}
}

func (c *stripeClientImpl) Enabled() bool {
	return c.cfg.Enabled()
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	if !c.cfg.Enabled() {
		return nil, ErrStripeNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(c.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"order_id": strconv.FormatUint(uint64(req.OrderID), 10),
		},
	}

	s, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	out := &CheckoutSession{ID: s.ID, URL: s.URL}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}

func (c *stripeClientImpl) ParseWebhook(payload []byte, signature string) (*StripeEvent, error) {
	if c.cfg.WebhookSecret == "" {
		return nil, ErrWebhookSecretMissing
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &StripeEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil && len(event.Data.Raw) > 0 {
		var s StripeSession
		if err := json.Unmarshal(event.Data.Raw, &s); err == nil {
			out.Session = &s
		}
	}
	return out, nil
}
