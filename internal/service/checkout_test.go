package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
)

const testSite = "https://voiceguide.example.com"

func (e *env) checkout(stripe *fakeStripe, paypal *fakePaypal) CheckoutService {
	return NewCheckoutService(e.db, testSite+"/", "https://api.example.com/paypal/return", stripe, paypal, e.packages, e.partners, e.orders)
}

func checkoutReq(product string) *dto.CheckoutRequest {
	return &dto.CheckoutRequest{
		Product:  product,
		Customer: dto.CheckoutCustomer{Email: " buyer@example.com "},
	}
}

func TestCheckoutWithStripeAndReferral(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	partner := e.partner(t, "VG-REF001", "10")
	stripe := &fakeStripe{enabled: true, session: &client.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1"}}

	req := checkoutReq("SINGLE_25")
	code := "VG-REF001"
	req.Customer.PartnerCode = &code
	req.Lang = "EN"

	resp, err := e.checkout(stripe, &fakePaypal{}).CreateOrder(ctx, req)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("14.99").Equal(resp.SubtotalAmount))
	assert.True(t, decimal.RequireFromString("0.75").Equal(resp.DiscountAmount))
	assert.True(t, decimal.RequireFromString("14.24").Equal(resp.TotalAmount))
	assert.Equal(t, 0.05, resp.DiscountApplied)
	assert.True(t, resp.ReferralApplied)
	assert.Equal(t, "STRIPE", resp.PaymentMethod)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_test_1", resp.CheckoutURL)

	require.NotNil(t, stripe.lastReq)
	assert.Equal(t, int64(1424), stripe.lastReq.AmountCents)
	assert.Equal(t, fmt.Sprintf("%s/en/checkout-success?order=%d", testSite, resp.OrderID), stripe.lastReq.SuccessURL)
	assert.Equal(t, fmt.Sprintf("%s/en/checkout-cancel?order=%d", testSite, resp.OrderID), stripe.lastReq.CancelURL)

	order, err := e.orders.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, model.PaymentMethodStripe, order.PaymentMethod)
	assert.Equal(t, "buyer@example.com", order.BuyerEmail)
	require.NotNil(t, order.StripeSessionID)
	assert.Equal(t, "cs_test_1", *order.StripeSessionID)
	require.NotNil(t, order.PartnerID)
	assert.Equal(t, partner.ID, *order.PartnerID)
	assert.Equal(t, 1, order.Quantity)
	assert.True(t, order.EstimatedAgoraCost.Valid)
}

func TestCheckoutWithoutGatewayFallsBackToSuccessPage(t *testing.T) {
	e := newEnv(t)

	resp, err := e.checkout(&fakeStripe{}, &fakePaypal{}).CreateOrder(context.Background(), checkoutReq("PACKAGE_TO_20"))
	require.NoError(t, err)

	assert.Equal(t, "OTHER", resp.PaymentMethod)
	assert.Equal(t, fmt.Sprintf("%s/it/checkout-success?order=%d", testSite, resp.OrderID), resp.CheckoutURL)
	assert.False(t, resp.ReferralApplied)
	assert.Zero(t, resp.DiscountApplied)
	assert.True(t, decimal.NewFromInt(225).Equal(resp.TotalAmount))
}

func TestCheckoutIgnoresInactivePartner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	partner := e.partner(t, "VG-OFF001", "10")
	require.NoError(t, e.partners.Update(ctx, partner.ID, map[string]interface{}{"is_active": false}))

	req := checkoutReq("SINGLE_10")
	req.Customer.PartnerCode = &partner.ReferralCode

	resp, err := e.checkout(&fakeStripe{}, &fakePaypal{}).CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.ReferralApplied)
	assert.True(t, decimal.Zero.Equal(resp.DiscountAmount))
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	e := newEnv(t)
	svc := e.checkout(&fakeStripe{}, &fakePaypal{})

	_, err := svc.CreateOrder(context.Background(), checkoutReq("NOPE"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.CreateOrder(context.Background(), checkoutReq(""))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCheckoutWithPaypal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	paypal := &fakePaypal{enabled: true, order: &client.PaypalOrder{ID: "PP-9", ApproveURL: "https://paypal.example.com/approve/PP-9"}}

	req := checkoutReq("SINGLE_10")
	req.PaymentProvider = "paypal"
	req.Lang = "de"

	resp, err := e.checkout(&fakeStripe{enabled: true}, paypal).CreateOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL", resp.PaymentMethod)
	assert.Equal(t, "https://paypal.example.com/approve/PP-9", resp.CheckoutURL)

	require.NotNil(t, paypal.lastReq)
	assert.Equal(t, "7.99", paypal.lastReq.Amount)
	assert.Equal(t, "https://api.example.com/paypal/return?lang=de", paypal.lastReq.ReturnURL)

	order, err := e.orders.FindByPaypalOrderID(ctx, "PP-9")
	require.NoError(t, err)
	assert.Equal(t, resp.OrderID, order.ID)
}

func TestCheckoutStoresInvoice(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	req := checkoutReq("SINGLE_10")
	req.Invoice = &dto.Invoice{
		Mode:  "VAT_IT",
		VatIT: &dto.InvoiceVatIT{Company: " ACME srl ", Vat: "IT01234567890", Sdi: "ABC1234"},
		Address: dto.InvoiceAddress{
			Line: "Via Roma 1",
			City: "Roma",
			Zip:  "00100",
		},
	}

	resp, err := e.checkout(&fakeStripe{}, &fakePaypal{}).CreateOrder(ctx, req)
	require.NoError(t, err)

	order, err := e.orders.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.BillingDetails)
	bd := order.BillingDetails
	assert.True(t, bd.RequestInvoice)
	assert.Equal(t, "IT", *bd.Country)
	assert.Equal(t, "ACME srl", *bd.CompanyName)
	assert.Equal(t, "IT01234567890", *bd.VatNumber)
	assert.Equal(t, "ABC1234", *bd.SdiCode)
	assert.Nil(t, bd.Pec)
	assert.Equal(t, "Roma", *bd.City)
}

func TestCheckoutGatewayFailure(t *testing.T) {
	e := newEnv(t)
	stripe := &fakeStripe{enabled: true, err: errors.New("stripe down")}

	_, err := e.checkout(stripe, &fakePaypal{}).CreateOrder(context.Background(), checkoutReq("SINGLE_10"))
	assert.ErrorIs(t, err, ErrUpstream)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Payment provider unavailable. Please retry.", svcErr.Detail)
}

func TestCheckoutIntent(t *testing.T) {
	e := newEnv(t)
	req := checkoutReq("SINGLE_10")
	req.SuccessURL = "https://shop.example.com/done?x=1"
	code := "ANY"
	req.Customer.PartnerCode = &code

	resp, err := e.checkout(&fakeStripe{}, &fakePaypal{}).Intent(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.OrderID, 36)
	assert.Equal(t, "https://shop.example.com/done?x=1&order="+resp.OrderID, resp.CheckoutURL)
	assert.Equal(t, 0.05, resp.DiscountApplied)
}

func TestCountryISO2(t *testing.T) {
	assert.Equal(t, "DE", *countryISO2(" de "))
	assert.Equal(t, "FR", *countryISO2("France"))
	assert.Nil(t, countryISO2("1"))
}
