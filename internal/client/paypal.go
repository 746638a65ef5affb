package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"

	"voiceguide-backend/internal/config"
)

var ErrPaypalNotConfigured = errors.New("paypal: PAYPAL_CLIENT_ID/PAYPAL_CLIENT_SECRET not configured")

type PaypalOrderRequest struct {
	OrderID   uint
	Amount    string // EUR, two decimals
	ReturnURL string
	CancelURL string
}

type PaypalOrder struct {
	ID         string
	ApproveURL string
}

// PaypalCapture is the outcome of capturing an approved order. Amount sums every
// capture of every purchase unit and is nil when PayPal reported none.
type PaypalCapture struct {
	Status   string // COMPLETED on success
	Amount   *decimal.Decimal
	Currency string
}

type PaypalGateway interface {
	Enabled() bool
	CreateOrder(ctx context.Context, req *PaypalOrderRequest) (*PaypalOrder, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*PaypalCapture, error)
}

type paypalClientImpl struct {
	cfg config.Paypal

	mu     sync.Mutex
	client *paypal.Client
}

func NewPaypalClient(cfg *config.Paypal) PaypalGateway {
	return &paypalClientImpl{cfg: *cfg}
}

func (p *paypalClientImpl) Enabled() bool {
	return p.cfg.Enabled()
}

func (p *paypalClientImpl) apiBase() string {
	switch strings.ToLower(p.cfg.Environment) {
	case "live", "production":
		return paypal.APIBaseLive
	case "sandbox", "":
		return paypal.APIBaseSandBox
	default:
		// anything else is taken as a base URL
		return p.cfg.Environment
	}
}

// authorized returns a client holding an access token, created on first use.
func (p *paypalClientImpl) authorized(ctx context.Context) (*paypal.Client, error) {
	if !p.cfg.Enabled() {
		return nil, ErrPaypalNotConfigured
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	c, err := paypal.NewClient(p.cfg.ClientID, p.cfg.ClientSecret, p.apiBase())
	if err != nil {
		return nil, err
	}
	if _, err := c.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("paypal access token: %w", err)
	}
	p.client = c
	return c, nil
}

func (p *paypalClientImpl) CreateOrder(ctx context.Context, req *PaypalOrderRequest) (*PaypalOrder, error) {
	c, err := p.authorized(ctx)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatUint(uint64(req.OrderID), 10)
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: id,
			CustomID:    id,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: "EUR",
				Value:    req.Amount,
			},
			Description: "VoiceGuide AirLink order #" + id,
		},
	}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	}

	order, err := c.CreateOrder(ctx, "CAPTURE", units, nil, appCtx)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	for _, link := range order.Links {
		if link.Rel == "approve" {
			return &PaypalOrder{ID: order.ID, ApproveURL: link.Href}, nil
		}
	}
	return nil, fmt.Errorf("paypal order %s has no approve link", order.ID)
}

func (p *paypalClientImpl) CaptureOrder(ctx context.Context, paypalOrderID string) (*PaypalCapture, error) {
	c, err := p.authorized(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.CaptureOrder(ctx, paypalOrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}
	return capturedAmount(resp)
}

func capturedAmount(resp *paypal.CaptureOrderResponse) (*PaypalCapture, error) {
	out := &PaypalCapture{Status: resp.Status}
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			if capture.Amount == nil {
				continue
			}
			v, err := decimal.NewFromString(capture.Amount.Value)
			if err != nil {
				return nil, fmt.Errorf("paypal capture %s amount %q: %w", capture.ID, capture.Amount.Value, err)
			}
			total := v
			if out.Amount != nil {
				total = out.Amount.Add(v)
			}
			out.Amount = &total
			out.Currency = capture.Amount.Currency
		}
	}
	return out, nil
}
