package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"voiceguide-backend/internal/auth"
	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/config"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
	"voiceguide-backend/internal/service"
	"voiceguide-backend/internal/testutil"
)

const (
	webhookSecret = "whsec_server_test"
	adminEmail    = "root@example.com"
	adminPassword = "correct horse"
)

type app struct {
	db      *gorm.DB
	srv     *Server
	tokens  *auth.Tokens
	airlink atomic.Int32
}

// newApp wires the real services over sqlite, a disabled mailer and a stub AirLink.
func newApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	a := &app{db: testutil.NewDB(t)}

	airlink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Secret") != "airlink-secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		a.airlink.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(airlink.Close)

	packageRepo := repository.NewPackageRepository(a.db)
	require.NoError(t, packageRepo.Seed(ctx, pricing.Catalog()))
	orderRepo := repository.NewOrderRepository(a.db)
	licenseRepo := repository.NewLicenseRepository(a.db)
	partnerRepo := repository.NewPartnerRepository(a.db)
	payoutRepo := repository.NewPayoutRepository(a.db)
	paymentRepo := repository.NewPaymentRepository(a.db)

	stripeClient := client.NewStripeClient(&config.Stripe{WebhookSecret: webhookSecret})
	paypalClient := client.NewPaypalClient(&config.Paypal{})
	licenseAPI := client.NewAirLinkClient(&config.AirLink{BaseURL: airlink.URL, AdminSecret: "airlink-secret", Timeout: 5 * time.Second})
	notifier := notification.NewNotifier(client.NewMailer(&config.Email{}))
	a.tokens = auth.NewTokens("server-test-secret", time.Hour)

	fulfillment := service.NewFulfillmentService(a.db, licenseAPI, orderRepo, licenseRepo, partnerRepo, payoutRepo, notifier)
	authService := service.NewAuthService(a.tokens, repository.NewAdminRepository(a.db), partnerRepo)
	_, err := authService.BootstrapAdmin(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	a.srv = NewServer(Services{
		Checkout:        service.NewCheckoutService(a.db, "https://voiceguide.example.com", "", stripeClient, paypalClient, packageRepo, partnerRepo, orderRepo),
		Payment:         service.NewPaymentService(a.db, "https://voiceguide.example.com", stripeClient, paypalClient, orderRepo, repository.NewWebhookEventRepository(a.db), fulfillment),
		Purchase:        service.NewPurchaseService(a.db, packageRepo, partnerRepo, orderRepo, fulfillment, notifier),
		PartnerRequests: service.NewPartnerRequestService(a.db, repository.NewPartnerRequestRepository(a.db), partnerRepo, notifier),
		TrialRequests:   service.NewTrialRequestService(a.db, licenseAPI, repository.NewTrialRequestRepository(a.db), licenseRepo, notifier),
		Licenses:        service.NewLicenseService(a.db, licenseAPI, licenseRepo, notifier),
		Partners:        service.NewPartnerService(a.db, partnerRepo),
		Portal:          service.NewPortalService(orderRepo, licenseRepo, payoutRepo, paymentRepo),
		Ledger:          service.NewLedgerService(partnerRepo, orderRepo, payoutRepo, paymentRepo),
		Reports:         service.NewReportService(orderRepo),
		Auth:            authService,
	}, []string{"http://localhost:5173"})
	return a
}

func (a *app) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.srv.Handler().ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (a *app) adminToken(t *testing.T) string {
	t.Helper()
	rec, body := a.do(t, http.MethodPost, "/admin/login", "", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bearer", body["token_type"])
	return body["access_token"].(string)
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	rec, body := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	rec, body = a.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["message"])
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	a := newApp(t)

	rec, body := a.do(t, http.MethodGet, "/admin/stats/overview", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", body["detail"])

	rec, _ = a.do(t, http.MethodGet, "/admin/stats/overview", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	partnerToken, err := a.tokens.IssuePartner(1)
	require.NoError(t, err)
	rec, _ = a.do(t, http.MethodGet, "/admin/stats/overview", partnerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/admin/login", "", map[string]string{"email": adminEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = a.do(t, http.MethodGet, "/admin/stats/overview", a.adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total_orders"])

	rec, _ = a.do(t, http.MethodGet, "/partners", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPartnerRequestToPortal(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)

	rec, body := a.do(t, http.MethodPost, "/partner-requests", "", map[string]string{"name": "Roma Tours", "email": "Hello@RomaTours.it"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := body["id"]

	rec, body = a.do(t, http.MethodPost, "/partner-requests", "", map[string]string{"name": "Roma Tours", "email": "hello@romatours.it"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A request for this email is already pending.", body["detail"])

	rec, body = a.do(t, http.MethodPost, fmt.Sprintf("/admin/partner-requests/%v/approve?tier=pro", id), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, "PRO", body["partner_tier"])

	rec, _ = a.do(t, http.MethodPost, fmt.Sprintf("/admin/partner-requests/%v/approve", id), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/admin/partner-requests/abc/approve", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var partner model.Partner
	require.NoError(t, a.db.Where("email = ?", "hello@romatours.it").First(&partner).Error)

	rec, body = a.do(t, http.MethodPost, "/partner/login", "", map[string]string{"email": partner.Email, "referral_code": partner.ReferralCode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := body["access_token"].(string)

	rec, body = a.do(t, http.MethodGet, "/partner/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PRO (15%)", body["partner_level"])

	rec, _ = a.do(t, http.MethodGet, "/partner/me", admin, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "admin tokens are not partner tokens")

	rec, body = a.do(t, http.MethodGet, "/partner/me/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total_orders"])
}

func TestPurchaseSingleIssuesLicenses(t *testing.T) {
	a := newApp(t)

	rec, body := a.do(t, http.MethodPost, "/purchase/single", "", map[string]interface{}{
		"buyer_email": "buyer@example.com",
		"max_guests":  10,
		"quantity":    2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PAID", body["payment_status"])
	assert.Len(t, body["license_codes"], 2)
	assert.Equal(t, int32(2), a.airlink.Load())

	rec, _ = a.do(t, http.MethodPost, "/purchase/single", "", map[string]interface{}{"buyer_email": "not-an-email", "max_guests": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/purchase/single", "", []byte("{broken"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// at most 100 licenses per single purchase
	rec, _ = a.do(t, http.MethodPost, "/purchase/single", "", map[string]interface{}{
		"buyer_email": "buyer@example.com",
		"max_guests":  10,
		"quantity":    101,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(2), a.airlink.Load())
}

func TestStripeWebhookFulfillsOrder(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	var pkg model.Package
	require.NoError(t, a.db.Where("code = ?", "SINGLE_25").First(&pkg).Error)
	order := &model.Order{
		BuyerEmail:     "buyer@example.com",
		OrderType:      model.OrderTypeSingle,
		PackageID:      &pkg.ID,
		Quantity:       1,
		SubtotalAmount: pkg.Price,
		DiscountAmount: decimal.Zero,
		TotalAmount:    pkg.Price,
		PaymentMethod:  model.PaymentMethodStripe,
		PaymentStatus:  model.PaymentStatusPending,
	}
	require.NoError(t, repository.NewOrderRepository(a.db).Create(ctx, a.db, order))

	event := fmt.Sprintf(`{
		"id": "evt_server_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_server_1",
			"object": "checkout.session",
			"payment_intent": "pi_server_1",
			"payment_status": "paid",
			"amount_total": 1499,
			"currency": "eur",
			"metadata": {"order_id": "%d"}
		}}
	}`, order.ID)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(event),
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	post := func(sig string) (*httptest.ResponseRecorder, map[string]interface{}) {
		req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewReader(signed.Payload))
		if sig != "" {
			req.Header.Set("Stripe-Signature", sig)
		}
		rec := httptest.NewRecorder()
		a.srv.Handler().ServeHTTP(rec, req)
		var out map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		return rec, out
	}

	rec, body := post("")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing Stripe-Signature header", body["detail"])

	rec, _ = post("t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = post(signed.Header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "PAID", body["status"])
	assert.Equal(t, false, body["was_already_paid"])
	assert.Equal(t, int32(1), a.airlink.Load())

	rec, body = post(signed.Header)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["was_already_paid"])
	assert.Equal(t, int32(1), a.airlink.Load(), "redelivery does not issue licenses again")

	admin := a.adminToken(t)
	rec, _ = a.do(t, http.MethodGet, fmt.Sprintf("/admin/licenses?order_id=%d", order.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var licenses []model.License
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &licenses))
	assert.Len(t, licenses, 1)

	rec, _ = a.do(t, http.MethodGet, "/admin/orders/export.xlsx", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestTrialRequestIssueOverHTTP(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)

	rec, _ := a.do(t, http.MethodPost, "/trial-requests", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := a.do(t, http.MethodPost, "/trial-requests", "", map[string]string{"email": "guide@example.com", "language": "en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := body["id"]

	rec, body = a.do(t, http.MethodGet, "/admin/trial-requests/count", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	rec, body = a.do(t, http.MethodPost, fmt.Sprintf("/admin/trial-requests/%v/issue", id), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ISSUED", body["new_status"])
	assert.NotEmpty(t, body["license_code"])

	rec, _ = a.do(t, http.MethodPost, "/admin/trial-requests/999/issue", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
