package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
	"voiceguide-backend/internal/testutil"
)

// fakeLicenseAPI records every create call. Codes listed in taken answer with
// a collision; failAfter > 0 makes call number failAfter+1 fail.
type fakeLicenseAPI struct {
	mu        sync.Mutex
	calls     []client.CreateLicenseRequest
	taken     map[string]bool
	failAfter int
	err       error
}

func (f *fakeLicenseAPI) CreateLicense(_ context.Context, req *client.CreateLicenseRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, *req)
	if f.taken[req.Code] {
		return client.ErrLicenseCodeExists
	}
	if f.err != nil && len(f.calls) > f.failAfter {
		return f.err
	}
	return nil
}

type fakeStripe struct {
	enabled bool
	session *client.CheckoutSession
	err     error
	event   *client.StripeEvent
	lastReq *client.CheckoutSessionRequest
}

func (f *fakeStripe) Enabled() bool { return f.enabled }

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, req *client.CheckoutSessionRequest) (*client.CheckoutSession, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeStripe) ParseWebhook(_ []byte, signature string) (*client.StripeEvent, error) {
	switch signature {
	case "no-secret":
		return nil, client.ErrWebhookSecretMissing
	case "", "bad":
		return nil, fmt.Errorf("%w: %v", client.ErrInvalidSignature, errors.New("webhook has invalid signature"))
	}
	return f.event, nil
}

type fakePaypal struct {
	enabled       bool
	order         *client.PaypalOrder
	captureStatus string
	captureAmount string // EUR; empty means PayPal reported no amount
	captureErr    error
	lastReq       *client.PaypalOrderRequest
	captures      int
}

func (f *fakePaypal) Enabled() bool { return f.enabled }

func (f *fakePaypal) CreateOrder(_ context.Context, req *client.PaypalOrderRequest) (*client.PaypalOrder, error) {
	f.lastReq = req
	return f.order, nil
}

func (f *fakePaypal) CaptureOrder(context.Context, string) (*client.PaypalCapture, error) {
	f.captures++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	capture := &client.PaypalCapture{Status: f.captureStatus, Currency: "EUR"}
	if f.captureAmount != "" {
		amount := decimal.RequireFromString(f.captureAmount)
		capture.Amount = &amount
	}
	return capture, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []notification.PaymentConfirmed
	singles   []notification.SingleReceipt
	packages  []notification.PackageReceipt
	approved  []notification.PartnerApproved
	rejected  []string
	trials    []notification.TrialLicense
	err       error
}

func (n *recordingNotifier) PaymentConfirmed(_ context.Context, p notification.PaymentConfirmed) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, p)
	return n.err
}

func (n *recordingNotifier) SingleReceipt(_ context.Context, r notification.SingleReceipt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.singles = append(n.singles, r)
	return n.err
}

func (n *recordingNotifier) PackageReceipt(_ context.Context, r notification.PackageReceipt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.packages = append(n.packages, r)
	return n.err
}

func (n *recordingNotifier) PartnerApproved(_ context.Context, p notification.PartnerApproved) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, p)
	return n.err
}

func (n *recordingNotifier) PartnerRejected(_ context.Context, to, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, to)
	return n.err
}

func (n *recordingNotifier) TrialLicense(_ context.Context, t notification.TrialLicense) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trials = append(n.trials, t)
	return n.err
}

// env wires the repositories over one migrated sqlite database with the
// catalogue seeded.
type env struct {
	db          *gorm.DB
	packages    repository.PackageRepository
	orders      repository.OrderRepository
	licenses    repository.LicenseRepository
	partners    repository.PartnerRepository
	payouts     repository.PayoutRepository
	payments    repository.PaymentRepository
	partnerReqs repository.PartnerRequestRepository
	trialReqs   repository.TrialRequestRepository
	admins      repository.AdminRepository
	events      repository.WebhookEventRepository
	airlink     *fakeLicenseAPI
	notifier    *recordingNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	e := &env{
		db:          db,
		packages:    repository.NewPackageRepository(db),
		orders:      repository.NewOrderRepository(db),
		licenses:    repository.NewLicenseRepository(db),
		partners:    repository.NewPartnerRepository(db),
		payouts:     repository.NewPayoutRepository(db),
		payments:    repository.NewPaymentRepository(db),
		partnerReqs: repository.NewPartnerRequestRepository(db),
		trialReqs:   repository.NewTrialRequestRepository(db),
		admins:      repository.NewAdminRepository(db),
		events:      repository.NewWebhookEventRepository(db),
		airlink:     &fakeLicenseAPI{},
		notifier:    &recordingNotifier{},
	}
	require.NoError(t, e.packages.Seed(context.Background(), pricing.Catalog()))
	return e
}

func (e *env) fulfillment() FulfillmentService {
	return NewFulfillmentService(e.db, e.airlink, e.orders, e.licenses, e.partners, e.payouts, e.notifier)
}

func (e *env) partner(t *testing.T, code string, pct string) *model.Partner {
	t.Helper()
	p := &model.Partner{
		Name:          "Partner " + code,
		Email:         strings.ToLower(code) + "@partners.example.com",
		PartnerType:   model.PartnerTierBase,
		CommissionPct: decimal.RequireFromString(pct),
		ReferralCode:  code,
		IsActive:      true,
	}
	require.NoError(t, e.partners.Create(context.Background(), e.db, p))
	return p
}

// order stores an order for the catalogue package code with the given status.
func (e *env) order(t *testing.T, code string, status model.PaymentStatus, partner *model.Partner) *model.Order {
	t.Helper()
	ctx := context.Background()
	pkg, err := e.packages.FindActiveByCode(ctx, code)
	require.NoError(t, err)

	o := &model.Order{
		BuyerEmail:     "buyer@example.com",
		OrderType:      pkg.PackageType.OrderType(),
		PackageID:      &pkg.ID,
		Quantity:       pkg.NumLicenses,
		SubtotalAmount: pkg.Price,
		DiscountAmount: decimal.Zero,
		TotalAmount:    pkg.Price,
		PaymentMethod:  model.PaymentMethodStripe,
		PaymentStatus:  status,
	}
	if partner != nil {
		o.PartnerID = &partner.ID
		o.ReferralCode = &partner.ReferralCode
	}
	require.NoError(t, e.orders.Create(ctx, e.db, o))
	return o
}

func sequenceCodes(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%08d", prefix, n)
	}
}
