package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

const (
	providerStripe = "stripe"
	providerPaypal = "paypal"

	eventSessionCompleted     = "checkout.session.completed"
	eventAsyncPaymentSucceded = "checkout.session.async_payment_succeeded"
	eventAsyncPaymentFailed   = "checkout.session.async_payment_failed"
)

// PaymentService confirms payments reported by the gateways and hands paid
// orders to fulfillment.
type PaymentService interface {
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (map[string]interface{}, error)
	HandlePaypalReturn(ctx context.Context, token, lang string) (string, error)
}

type paymentServiceImpl struct {
	db               *gorm.DB
	siteURL          string
	stripe           client.StripeGateway
	paypal           client.PaypalGateway
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	fulfillment      FulfillmentService
}

func NewPaymentService(
	db *gorm.DB,
	siteURL string,
	stripe client.StripeGateway,
	paypal client.PaypalGateway,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	fulfillment FulfillmentService,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		siteURL:          strings.TrimRight(siteURL, "/"),
		stripe:           stripe,
		paypal:           paypal,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		fulfillment:      fulfillment,
	}
}

func (s *paymentServiceImpl) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (map[string]interface{}, error) {
	event, err := s.stripe.ParseWebhook(payload, signature)
	switch {
	case errors.Is(err, client.ErrWebhookSecretMissing):
		return nil, newError(ErrInternal, "STRIPE_WEBHOOK_SECRET not configured")
	case err != nil && signature == "":
		return nil, invalid("Missing Stripe-Signature header")
	case err != nil:
		reason := strings.TrimPrefix(err.Error(), client.ErrInvalidSignature.Error()+": ")
		return nil, invalid("Invalid webhook signature: %s", reason)
	}

	slog.Info("stripe webhook received", "event_id", event.ID, "type", event.Type)

	var (
		result  map[string]interface{}
		orderID *uint
	)
	switch event.Type {
	case eventSessionCompleted, eventAsyncPaymentSucceded:
		result, orderID = s.handleSessionPaid(ctx, event.Session)
	case eventAsyncPaymentFailed:
		result, orderID, err = s.handleSessionFailed(ctx, event.Session)
		if err != nil {
			return nil, err
		}
	default:
		result = map[string]interface{}{"ok": true, "ignored": event.Type}
	}

	s.recordEvent(ctx, providerStripe, event.ID, event.Type, orderID)
	return result, nil
}

func (s *paymentServiceImpl) handleSessionPaid(ctx context.Context, sess *client.StripeSession) (map[string]interface{}, *uint) {
	if sess == nil {
		return map[string]interface{}{"ok": true, "ignored": "missing session object"}, nil
	}

	order := s.resolveStripeOrder(ctx, sess)
	if order == nil {
		slog.Warn("stripe session without matching order", "session_id", sess.ID)
		return map[string]interface{}{"ok": true, "ignored": "order not found"}, nil
	}

	if sess.PaymentStatus == "unpaid" {
		return map[string]interface{}{
			"ok":         true,
			"ignored":    "awaiting_payment",
			"order_id":   order.ID,
			"session_id": sess.ID,
		}, &order.ID
	}

	expected := pricing.ToCents(order.TotalAmount)
	if sess.AmountTotal != nil && *sess.AmountTotal != expected {
		slog.Warn("stripe amount mismatch", "order_id", order.ID, "expected_cents", expected, "amount_total", *sess.AmountTotal)
		return map[string]interface{}{
			"ok":                  true,
			"ignored":             "amount_mismatch",
			"order_id":            order.ID,
			"expected_cents":      expected,
			"stripe_amount_total": *sess.AmountTotal,
			"currency":            sess.Currency,
			"session_id":          sess.ID,
		}, &order.ID
	}

	wasAlreadyPaid, err := s.markPaid(ctx, order, repository.PaymentConfirmation{
		Method:                model.PaymentMethodStripe,
		PaidAt:                time.Now(),
		StripeSessionID:       sess.ID,
		StripePaymentIntentID: sess.PaymentIntent,
	})
	if err != nil {
		slog.Error("mark order paid", "order_id", order.ID, "err", err)
		return map[string]interface{}{"ok": false, "order_id": order.ID, "error": err.Error()}, &order.ID
	}

	return map[string]interface{}{
		"ok":               true,
		"order_id":         order.ID,
		"status":           model.PaymentStatusPaid,
		"was_already_paid": wasAlreadyPaid,
		"fulfillment":      s.fulfill(ctx, order.ID),
		"session_id":       sess.ID,
		"payment_intent":   sess.PaymentIntent,
	}, &order.ID
}

func (s *paymentServiceImpl) handleSessionFailed(ctx context.Context, sess *client.StripeSession) (map[string]interface{}, *uint, error) {
	if sess == nil {
		return map[string]interface{}{"ok": true, "ignored": "missing session object"}, nil, nil
	}
	order := s.resolveStripeOrder(ctx, sess)
	if order == nil {
		return map[string]interface{}{"ok": true, "ignored": "order not found"}, nil, nil
	}

	var failed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		failed, err = s.orderRepo.MarkFailed(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("mark order failed: %w", err)
	}

	status := order.PaymentStatus
	if failed {
		status = model.PaymentStatusFailed
		slog.Info("order payment failed", "order_id", order.ID)
	}
	return map[string]interface{}{
		"ok":         true,
		"order_id":   order.ID,
		"status":     status,
		"session_id": sess.ID,
	}, &order.ID, nil
}

// resolveStripeOrder tries metadata.order_id, then the stored session id, then
// the stored payment intent.
func (s *paymentServiceImpl) resolveStripeOrder(ctx context.Context, sess *client.StripeSession) *model.Order {
	if raw := strings.TrimSpace(sess.Metadata["order_id"]); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			if order, err := s.orderRepo.FindByID(ctx, uint(id)); err == nil {
				return order
			}
		}
	}
	if sess.ID != "" {
		if order, err := s.orderRepo.FindByStripeSessionID(ctx, sess.ID); err == nil {
			return order
		}
	}
	if sess.PaymentIntent != "" {
		if order, err := s.orderRepo.FindByStripePaymentIntentID(ctx, sess.PaymentIntent); err == nil {
			return order
		}
	}
	return nil
}

// markPaid moves a PENDING or FAILED order to PAID and reports whether the
// order had already been paid before this call.
func (s *paymentServiceImpl) markPaid(ctx context.Context, order *model.Order, conf repository.PaymentConfirmation) (bool, error) {
	if order.PaymentStatus == model.PaymentStatusPaid {
		return true, nil
	}
	if order.PaymentStatus != model.PaymentStatusPending && order.PaymentStatus != model.PaymentStatusFailed {
		return false, fmt.Errorf("order %d is %s", order.ID, order.PaymentStatus)
	}

	var transitioned bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transitioned, err = s.orderRepo.MarkPaid(ctx, tx, order.ID, conf)
		return err
	})
	if err != nil {
		return false, err
	}
	if transitioned {
		slog.Info("order paid", "order_id", order.ID, "payment_method", conf.Method)
		return false, nil
	}

	// lost a race with a concurrent confirmation
	current, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if current.PaymentStatus != model.PaymentStatusPaid {
		return false, fmt.Errorf("order %d is %s", order.ID, current.PaymentStatus)
	}
	return true, nil
}

func (s *paymentServiceImpl) fulfill(ctx context.Context, orderID uint) interface{} {
	res, err := s.fulfillment.Fulfill(ctx, orderID, FulfillOptions{})
	if err != nil {
		slog.Error("fulfillment failed", "order_id", orderID, "err", err)
		return map[string]interface{}{"ok": false, "error": err.Error()}
	}
	return res
}

func (s *paymentServiceImpl) recordEvent(ctx context.Context, provider, eventID, eventType string, orderID *uint) {
	if eventID == "" {
		return
	}
	first, err := s.webhookEventRepo.Record(ctx, &model.WebhookEvent{
		Provider:  provider,
		EventID:   eventID,
		EventType: eventType,
		OrderID:   orderID,
	})
	if err != nil {
		slog.Error("record webhook event", "provider", provider, "event_id", eventID, "err", err)
		return
	}
	if !first {
		slog.Info("webhook redelivery", "provider", provider, "event_id", eventID)
	}
}

// HandlePaypalReturn captures the approved PayPal order the buyer returned
// with and returns the success page to redirect to.
func (s *paymentServiceImpl) HandlePaypalReturn(ctx context.Context, token, lang string) (string, error) {
	if token == "" {
		return "", invalid("missing order token")
	}

	order, err := s.orderRepo.FindByPaypalOrderID(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", notFound("Order not found.")
	}
	if err != nil {
		return "", fmt.Errorf("find order: %w", err)
	}

	if order.PaymentStatus != model.PaymentStatusPaid {
		capture, err := s.paypal.CaptureOrder(ctx, token)
		if err != nil {
			slog.Error("paypal capture", "order_id", order.ID, "paypal_order_id", token, "err", err)
			return "", upstream(err, "PayPal capture failed. Please retry.")
		}
		if capture.Status != "COMPLETED" {
			return "", upstream(nil, "PayPal capture not completed (status %s).", capture.Status)
		}

		expected := pricing.ToCents(order.TotalAmount)
		if capture.Amount == nil || pricing.ToCents(*capture.Amount) != expected {
			slog.Warn("paypal amount mismatch", "order_id", order.ID, "paypal_order_id", token,
				"expected_cents", expected, "captured", capture.Amount, "currency", capture.Currency)
			return "", upstream(nil, "PayPal captured amount does not match the order total.")
		}

		if _, err := s.markPaid(ctx, order, repository.PaymentConfirmation{
			Method: model.PaymentMethodPaypal,
			PaidAt: time.Now(),
		}); err != nil {
			return "", fmt.Errorf("mark order paid: %w", err)
		}
		s.recordEvent(ctx, providerPaypal, token, "CHECKOUT.ORDER.CAPTURED", &order.ID)
	}

	s.fulfill(ctx, order.ID)

	return buildSuccessURL(s.siteURL, normalizeLang(lang), "", order.ID), nil
}
