package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

var supportedLangs = map[string]bool{"it": true, "en": true, "es": true, "fr": true, "de": true}

type CheckoutService interface {
	CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Intent(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutIntentResponse, error)
}

type checkoutServiceImpl struct {
	db              *gorm.DB
	siteURL         string
	paypalReturnURL string
	stripe          client.StripeGateway
	paypal          client.PaypalGateway
	packageRepo     repository.PackageRepository
	partnerRepo     repository.PartnerRepository
	orderRepo       repository.OrderRepository
}

func NewCheckoutService(
	db *gorm.DB,
	siteURL string,
	paypalReturnURL string,
	stripe client.StripeGateway,
	paypal client.PaypalGateway,
	packageRepo repository.PackageRepository,
	partnerRepo repository.PartnerRepository,
	orderRepo repository.OrderRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		db:              db,
		siteURL:         strings.TrimRight(siteURL, "/"),
		paypalReturnURL: paypalReturnURL,
		stripe:          stripe,
		paypal:          paypal,
		packageRepo:     packageRepo,
		partnerRepo:     partnerRepo,
		orderRepo:       orderRepo,
	}
}

func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	code := strings.TrimSpace(req.Product)
	if code == "" {
		return nil, invalid("Invalid product")
	}
	pkg, err := s.packageRepo.FindActiveByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("Invalid product")
	}
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}

	lang := normalizeLang(req.Lang)
	partner := resolvePartner(ctx, s.partnerRepo, req.Customer.PartnerCode)

	subtotal := pricing.Money2(pkg.Price)
	discount := pricing.PartnerDiscount(subtotal, partner != nil)
	total := pricing.Money2(subtotal.Sub(discount))

	order := &model.Order{
		BuyerEmail:         strings.TrimSpace(req.Customer.Email),
		BuyerWhatsapp:      trimmedPtr(req.Customer.Whatsapp),
		OrderType:          pkg.PackageType.OrderType(),
		PackageID:          &pkg.ID,
		Quantity:           pkg.NumLicenses,
		SubtotalAmount:     subtotal,
		DiscountAmount:     discount,
		TotalAmount:        total,
		EstimatedAgoraCost: decimal.NewNullDecimal(pricing.PackageCost(pkg.NumLicenses, pkg.MaxGuests)),
		PaymentMethod:      model.PaymentMethodOther,
		PaymentStatus:      model.PaymentStatusPending,
	}
	if partner != nil {
		order.PartnerID = &partner.ID
		order.ReferralCode = &partner.ReferralCode
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}
		if req.Invoice != nil {
			if err := s.orderRepo.CreateBillingDetails(ctx, tx, billingFromInvoice(order.ID, req.Invoice)); err != nil {
				return fmt.Errorf("store billing details in db: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	successURL := buildSuccessURL(s.siteURL, lang, req.SuccessURL, order.ID)
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = fmt.Sprintf("%s/%s/checkout-cancel?order=%d", s.siteURL, lang, order.ID)
	}

	resp := &dto.CheckoutResponse{
		OrderID:         order.ID,
		SubtotalAmount:  subtotal,
		DiscountAmount:  discount,
		TotalAmount:     total,
		ReferralApplied: partner != nil,
		PaymentMethod:   string(model.PaymentMethodOther),
		CheckoutURL:     successURL,
	}
	if partner != nil {
		resp.DiscountApplied = 0.05
	}

	switch {
	case req.PaymentProvider == "paypal" && s.paypal.Enabled():
		pp, err := s.paypal.CreateOrder(ctx, &client.PaypalOrderRequest{
			OrderID:   order.ID,
			Amount:    total.StringFixed(2),
			ReturnURL: withQuery(s.paypalReturnURL, "lang", lang),
			CancelURL: cancelURL,
		})
		if err != nil {
			slog.Error("paypal create order", "order_id", order.ID, "err", err)
			return nil, upstream(err, "Payment provider unavailable. Please retry.")
		}
		if err := s.orderRepo.AttachGateway(ctx, order.ID, map[string]interface{}{
			"payment_method":  model.PaymentMethodPaypal,
			"paypal_order_id": pp.ID,
		}); err != nil {
			return nil, fmt.Errorf("store paypal order id: %w", err)
		}
		resp.PaymentMethod = string(model.PaymentMethodPaypal)
		resp.CheckoutURL = pp.ApproveURL

	case req.PaymentProvider != "paypal" && s.stripe.Enabled():
		sess, err := s.stripe.CreateCheckoutSession(ctx, &client.CheckoutSessionRequest{
			OrderID:       order.ID,
			AmountCents:   pricing.ToCents(total),
			ProductName:   pkg.Name,
			CustomerEmail: order.BuyerEmail,
			SuccessURL:    successURL,
			CancelURL:     cancelURL,
		})
		if err != nil {
			slog.Error("stripe create checkout session", "order_id", order.ID, "err", err)
			return nil, upstream(err, "Payment provider unavailable. Please retry.")
		}
		fields := map[string]interface{}{
			"payment_method":    model.PaymentMethodStripe,
			"stripe_session_id": sess.ID,
		}
		if sess.PaymentIntentID != "" {
			fields["stripe_payment_intent_id"] = sess.PaymentIntentID
		}
		if err := s.orderRepo.AttachGateway(ctx, order.ID, fields); err != nil {
			return nil, fmt.Errorf("store stripe session id: %w", err)
		}
		resp.PaymentMethod = string(model.PaymentMethodStripe)
		resp.CheckoutURL = sess.URL
	}

	slog.Info("checkout order created", "order_id", order.ID, "product", pkg.Code, "payment_method", resp.PaymentMethod)
	return resp, nil
}

// Intent is the legacy mock checkout: nothing is stored.
func (s *checkoutServiceImpl) Intent(_ context.Context, req *dto.CheckoutRequest) (*dto.CheckoutIntentResponse, error) {
	if strings.TrimSpace(req.Product) == "" {
		return nil, invalid("Invalid product")
	}

	id := uuid.NewString()
	resp := &dto.CheckoutIntentResponse{
		OrderID:     id,
		CheckoutURL: buildSuccessURL(s.siteURL, normalizeLang(req.Lang), req.SuccessURL, id),
	}
	if req.Customer.PartnerCode != nil && *req.Customer.PartnerCode != "" {
		resp.DiscountApplied = 0.05
	}
	return resp, nil
}

// resolvePartner returns the active partner owning the referral code, or nil.
func resolvePartner(ctx context.Context, repo repository.PartnerRepository, code *string) *model.Partner {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil
	}
	partner, err := repo.FindActiveByReferralCode(ctx, strings.TrimSpace(*code))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("resolve referral code", "code", *code, "err", err)
		}
		return nil
	}
	return partner
}

func normalizeLang(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if supportedLangs[l] {
		return l
	}
	return "it"
}

func buildSuccessURL(siteURL, lang, successURL string, orderID interface{}) string {
	id := fmt.Sprint(orderID)
	if successURL != "" {
		sep := "?"
		if strings.Contains(successURL, "?") {
			sep = "&"
		}
		return successURL + sep + "order=" + id
	}
	return siteURL + "/" + lang + "/checkout-success?order=" + id
}

func withQuery(base, key, value string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + key + "=" + url.QueryEscape(value)
}
