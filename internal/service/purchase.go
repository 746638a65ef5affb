package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

const (
	whatsappBase = "https://wa.me/?text="
	supportEmail = "support@voiceguideapp.com"
)

// PurchaseService sells licenses straight from the price list. The order is
// recorded as already paid and fulfilled in the same request.
type PurchaseService interface {
	Single(ctx context.Context, req *dto.SinglePurchaseRequest) (*dto.SinglePurchaseResponse, error)
	Package(ctx context.Context, req *dto.PackagePurchaseRequest) (*dto.PackagePurchaseResponse, error)
}

type purchaseServiceImpl struct {
	db          *gorm.DB
	packageRepo repository.PackageRepository
	partnerRepo repository.PartnerRepository
	orderRepo   repository.OrderRepository
	fulfillment FulfillmentService
	notifier    Notifier
}

func NewPurchaseService(
	db *gorm.DB,
	packageRepo repository.PackageRepository,
	partnerRepo repository.PartnerRepository,
	orderRepo repository.OrderRepository,
	fulfillment FulfillmentService,
	notifier Notifier,
) PurchaseService {
	return &purchaseServiceImpl{
		db:          db,
		packageRepo: packageRepo,
		partnerRepo: partnerRepo,
		orderRepo:   orderRepo,
		fulfillment: fulfillment,
		notifier:    notifier,
	}
}

func (s *purchaseServiceImpl) Single(ctx context.Context, req *dto.SinglePurchaseRequest) (*dto.SinglePurchaseResponse, error) {
	price, ok := pricing.SingleLicensePrices[req.MaxGuests]
	if !ok {
		return nil, invalid("Invalid license type.")
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	pkg, err := s.catalogPackage(ctx, pricing.SingleCode(req.MaxGuests))
	if err != nil {
		return nil, err
	}

	order, err := s.placeOrder(ctx, placement{
		pkg:          pkg,
		email:        req.BuyerEmail,
		whatsapp:     req.BuyerWhatsapp,
		referralCode: req.ReferralCode,
		billing:      req.BillingDetails,
		quantity:     qty,
		subtotal:     pricing.Money2(price.Mul(decimal.NewFromInt(int64(qty)))),
	})
	if err != nil {
		return nil, err
	}

	codes, err := s.fulfill(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	first := ""
	if len(codes) > 0 {
		first = codes[0]
	}

	total := order.TotalAmount.StringFixed(2)
	if err := s.notifier.SingleReceipt(ctx, notification.SingleReceipt{
		To:          order.BuyerEmail,
		OrderID:     order.ID,
		Total:       total,
		LicenseCode: first,
		MaxGuests:   req.MaxGuests,
	}); err != nil {
		slog.Error("send single receipt email", "order_id", order.ID, "err", err)
	}

	text := fmt.Sprintf(`VoiceGuideApp ✅ Purchase completed

Order: #%d
Total: %s €
License: %s
Max guests: %d

Quick instructions:
1) Open the VoiceGuideApp
2) Enter the license code
3) Start the tour and share the PIN with your guests

Need help?
%s
`, order.ID, total, first, req.MaxGuests, supportEmail)

	return &dto.SinglePurchaseResponse{
		OrderID:         order.ID,
		SubtotalAmount:  order.SubtotalAmount,
		DiscountAmount:  order.DiscountAmount,
		TotalAmount:     order.TotalAmount,
		ReferralApplied: order.PartnerID != nil,
		PaymentStatus:   string(order.PaymentStatus),
		LicenseCode:     first,
		LicenseCodes:    codes,
		MaxGuests:       req.MaxGuests,
		WhatsappLink:    whatsappLink(text),
	}, nil
}

func (s *purchaseServiceImpl) Package(ctx context.Context, req *dto.PackagePurchaseRequest) (*dto.PackagePurchaseResponse, error) {
	var (
		prices map[int]decimal.Decimal
		code   string
	)
	packageType := strings.ToUpper(strings.TrimSpace(req.PackageType))
	switch model.PackageType(packageType) {
	case model.PackageTypeTO:
		prices, code = pricing.TOPackages, pricing.TOCode(req.BundleSize)
	case model.PackageTypeSchool:
		prices, code = pricing.SchoolPackages, pricing.SchoolCode(req.BundleSize)
	default:
		return nil, invalid("Invalid package_type.")
	}
	price, ok := prices[req.BundleSize]
	if !ok {
		return nil, invalid("Invalid bundle_size.")
	}

	pkg, err := s.catalogPackage(ctx, code)
	if err != nil {
		return nil, err
	}

	order, err := s.placeOrder(ctx, placement{
		pkg:          pkg,
		email:        req.BuyerEmail,
		whatsapp:     req.BuyerWhatsapp,
		referralCode: req.ReferralCode,
		billing:      req.BillingDetails,
		quantity:     req.BundleSize,
		subtotal:     pricing.Money2(price),
	})
	if err != nil {
		return nil, err
	}

	codes, err := s.fulfill(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	licenses := make([]dto.LicenseInfo, len(codes))
	lines := make([]notification.LicenseLine, len(codes))
	var listing strings.Builder
	for i, c := range codes {
		licenses[i] = dto.LicenseInfo{Code: c, MaxGuests: pkg.MaxGuests}
		lines[i] = notification.LicenseLine{Code: c, MaxGuests: pkg.MaxGuests}
		listing.WriteString("- " + c + "\n")
	}

	total := order.TotalAmount.StringFixed(2)
	if err := s.notifier.PackageReceipt(ctx, notification.PackageReceipt{
		To:          order.BuyerEmail,
		OrderID:     order.ID,
		Total:       total,
		PackageType: packageType,
		BundleSize:  req.BundleSize,
		Licenses:    lines,
	}); err != nil {
		slog.Error("send package receipt email", "order_id", order.ID, "err", err)
	}

	text := fmt.Sprintf(`VoiceGuideApp ✅ Purchase completed

Order: #%d
Total: %s €
Package: %s
Quantity: %d

License codes:
%s
Quick instructions:
1) Open the VoiceGuideApp
2) Enter one of the license codes
3) Start the tour and share the PIN with your guests

Need help?
%s
`, order.ID, total, packageType, req.BundleSize, listing.String(), supportEmail)

	return &dto.PackagePurchaseResponse{
		OrderID:         order.ID,
		SubtotalAmount:  order.SubtotalAmount,
		DiscountAmount:  order.DiscountAmount,
		TotalAmount:     order.TotalAmount,
		ReferralApplied: order.PartnerID != nil,
		PaymentStatus:   string(order.PaymentStatus),
		PackageType:     packageType,
		BundleSize:      req.BundleSize,
		Licenses:        licenses,
		WhatsappLink:    whatsappLink(text),
	}, nil
}

type placement struct {
	pkg          *model.Package
	email        string
	whatsapp     *string
	referralCode *string
	billing      *dto.BillingDetails
	quantity     int
	subtotal     decimal.Decimal
}

func (s *purchaseServiceImpl) placeOrder(ctx context.Context, p placement) (*model.Order, error) {
	partner := resolvePartner(ctx, s.partnerRepo, p.referralCode)
	discount := pricing.PartnerDiscount(p.subtotal, partner != nil)

	order := &model.Order{
		BuyerEmail:         strings.TrimSpace(p.email),
		BuyerWhatsapp:      trimmedPtr(p.whatsapp),
		OrderType:          p.pkg.PackageType.OrderType(),
		PackageID:          &p.pkg.ID,
		Quantity:           p.quantity,
		SubtotalAmount:     p.subtotal,
		DiscountAmount:     discount,
		TotalAmount:        pricing.Money2(p.subtotal.Sub(discount)),
		// every unit is a full tour, so the cost covers all of them
		EstimatedAgoraCost: decimal.NewNullDecimal(pricing.PackageCost(p.quantity, p.pkg.MaxGuests)),
		PaymentMethod:      model.PaymentMethodStripe,
		PaymentStatus:      model.PaymentStatusPaid,
	}
	if partner != nil {
		order.PartnerID = &partner.ID
		order.ReferralCode = &partner.ReferralCode
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}
		if bd := billingFromDetails(order.ID, p.billing); bd != nil {
			if err := s.orderRepo.CreateBillingDetails(ctx, tx, bd); err != nil {
				return fmt.Errorf("store billing details in db: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("purchase order created", "order_id", order.ID, "package", p.pkg.Code, "quantity", p.quantity)
	return order, nil
}

func (s *purchaseServiceImpl) fulfill(ctx context.Context, orderID uint) ([]string, error) {
	res, err := s.fulfillment.Fulfill(ctx, orderID, FulfillOptions{SkipEmail: true})
	if errors.Is(err, ErrUpstream) {
		return nil, upstream(err, "License sync to AirLink failed. No email was sent. Please retry.")
	}
	if err != nil {
		return nil, err
	}
	return res.Licenses, nil
}

func (s *purchaseServiceImpl) catalogPackage(ctx context.Context, code string) (*model.Package, error) {
	pkg, err := s.packageRepo.FindActiveByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrInternal, "Package %s is not in the catalogue.", code)
	}
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	return pkg, nil
}

func whatsappLink(text string) string {
	return whatsappBase + url.QueryEscape(text)
}
